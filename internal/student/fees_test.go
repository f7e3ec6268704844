package student

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending(t *testing.T) {
	s := &Student{FeeAmount: 5000, FeePaid: 3000}
	assert.Equal(t, 2000.0, Pending(s))
	assert.Equal(t, 60, PaidPercent(s))

	overpaid := &Student{FeeAmount: 3000, FeePaid: 5000}
	assert.Equal(t, -2000.0, Pending(overpaid))
	assert.Equal(t, 167, PaidPercent(overpaid))

	assert.Zero(t, PaidPercent(&Student{}))
	assert.Equal(t, 33, PaidPercent(&Student{FeeAmount: 3, FeePaid: 1}))
}

func TestPendingTop(t *testing.T) {
	row := func(name, status string, amount, paid float64) *Student {
		return &Student{ID: uuid.New(), Name: name, Status: status, FeeAmount: amount, FeePaid: paid}
	}
	rows := []*Student{
		row("paid up", StatusActive, 1000, 1000),
		row("overpaid", StatusActive, 1000, 1500),
		row("small", StatusActive, 1000, 900),
		row("large", StatusActive, 9000, 1000),
		row("inactive", "inactive", 9000, 0),
		row("medium", StatusActive, 5000, 3000),
	}

	top := PendingTop(rows, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "large", top[0].Name)
	assert.Equal(t, 8000.0, top[0].Pending)
	assert.Equal(t, "medium", top[1].Name)
	assert.Equal(t, 60, top[1].PaidPercent)
}

func TestPendingTop_CapsAtTen(t *testing.T) {
	rows := make([]*Student, 0, 15)
	for i := range 15 {
		rows = append(rows, &Student{Status: StatusActive, FeeAmount: float64(100 * (i + 1))})
	}
	top := PendingTop(rows, pendingTopN)
	assert.Len(t, top, 10)
	assert.Equal(t, 1500.0, top[0].Pending)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "STU-0001", FormatCode(1))
	assert.Equal(t, "STU-0042", FormatCode(42))
	assert.Equal(t, "STU-12345", FormatCode(12345))
}
