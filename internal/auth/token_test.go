package auth

import (
	"testing"
	"time"

	"institute-service/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *Tokens {
	return NewTokens(config.JWTConfig{Secret: "test-secret-key-for-testing", Issuer: "institute-service"})
}

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := testTokens()
	account := uuid.New()
	sid := uuid.New()

	raw, expiresAt, err := tokens.Issue(account, sid, "owner@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 2*time.Second)

	p, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, account, p.UserID)
	assert.Equal(t, sid, p.SessionID)
	assert.Equal(t, "owner@example.com", p.Email)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := testTokens()
	issued := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issued }

	raw, _, err := tokens.Issue(uuid.New(), uuid.New(), "owner@example.com")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsForeignSecret(t *testing.T) {
	other := NewTokens(config.JWTConfig{Secret: "another-secret", Issuer: "institute-service"})
	raw, _, err := other.Issue(uuid.New(), uuid.New(), "owner@example.com")
	require.NoError(t, err)

	_, err = testTokens().Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
