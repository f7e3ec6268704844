package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelsAndTablesAgree(t *testing.T) {
	assert.Len(t, Models(), len(Tables()))
	assert.Contains(t, Tables(), "fee_payments")
	assert.Contains(t, Statements()[0], "student_code_seq")
}
