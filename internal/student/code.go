package student

import (
	"context"
	"fmt"
	"time"

	"institute-service/common/metrics"

	"github.com/uptrace/bun"
)

// CodeSequence is the Postgres sequence student codes are drawn from.
const CodeSequence = "student_code_seq"

// CodeGenerator hands out codes that are unique across all owners.
type CodeGenerator struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewCodeGenerator(db bun.IDB, m *metrics.Metrics) *CodeGenerator {
	return &CodeGenerator{db: db, metrics: m}
}

func (g *CodeGenerator) Next(ctx context.Context) (string, error) {
	start := time.Now()
	var n int64
	err := g.db.NewSelect().ColumnExpr("nextval(?)", CodeSequence).Scan(ctx, &n)
	g.metrics.Database.RecordQuery(ctx, "nextval", CodeSequence, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("next student code: %w", err)
	}
	return FormatCode(n), nil
}

func FormatCode(n int64) string {
	return fmt.Sprintf("STU-%04d", n)
}
