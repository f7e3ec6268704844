package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"institute-service/common/logger"
	"institute-service/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	tokens := testTokens()
	revocations := session.NewRevocations()
	account := uuid.New()
	sid := uuid.New()

	raw, _, err := tokens.Issue(account, sid, "owner@example.com")
	require.NoError(t, err)

	var seen uuid.UUID
	handler := Middleware(tokens, revocations, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("BearerHeader", func(t *testing.T) {
		seen = uuid.Nil
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, account, seen)
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: raw})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("EndedSession", func(t *testing.T) {
		revocations.Apply(session.Ended{SessionID: sid, AccountID: account, Until: time.Now().Add(time.Minute)})

		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPrincipalFrom_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := PrincipalFrom(req.Context())
	assert.False(t, ok)

	_, ok = OwnerID(req.Context())
	assert.False(t, ok)
}
