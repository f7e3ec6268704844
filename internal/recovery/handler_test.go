package recovery_test

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"institute-service/internal/auth"
	"institute-service/internal/recovery"
	"institute-service/testing/testapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeInMail = regexp.MustCompile(`code is (\d{6})`)

func requestCode(t *testing.T, env *testapi.Env, email string) string {
	t.Helper()
	w := env.Do(t, http.MethodPost, "/api/auth/recovery/request", "", recovery.RequestCodeRequest{Email: email})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	msg, ok := env.Mail.Last()
	require.True(t, ok)
	assert.Equal(t, email, msg.To)
	m := codeInMail.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2, msg.Text)
	return m[1]
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestRecoveryIntegration(t *testing.T) {
	t.Run("FullReset", func(t *testing.T) {
		env := testapi.New(t)
		reg := env.Register(t, "forgot@example.com")
		code := requestCode(t, env, "forgot@example.com")

		w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "forgot@example.com", Code: wrongCode(code)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "forgot@example.com", Code: code})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var grant recovery.VerifyResponse
		testapi.Decode(t, w, &grant)
		require.NotEmpty(t, grant.RecoveryToken)

		w = env.Do(t, http.MethodPost, "/api/auth/recovery/password", "", recovery.ResetRequest{RecoveryToken: grant.RecoveryToken, Password: "123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"password must be at least 6 characters"}`, w.Body.String())

		w = env.Do(t, http.MethodPost, "/api/auth/recovery/password", "", recovery.ResetRequest{RecoveryToken: grant.RecoveryToken, Password: "brand-new"})
		assert.Equal(t, http.StatusNoContent, w.Code)

		// the grant is single use
		w = env.Do(t, http.MethodPost, "/api/auth/recovery/password", "", recovery.ResetRequest{RecoveryToken: grant.RecoveryToken, Password: "another1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// existing sessions end
		assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, "/api/session", reg.AccessToken, nil).Code)
		w = env.Do(t, http.MethodPost, "/api/auth/refresh", "", auth.RefreshRequest{RefreshToken: reg.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = env.Do(t, http.MethodPost, "/api/auth/login", "", auth.LoginRequest{Email: "forgot@example.com", Password: "secret123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w = env.Do(t, http.MethodPost, "/api/auth/login", "", auth.LoginRequest{Email: "forgot@example.com", Password: "brand-new"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("CodeVerifiesOnce", func(t *testing.T) {
		env := testapi.New(t)
		env.Register(t, "once@example.com")
		code := requestCode(t, env, "once@example.com")

		req := recovery.VerifyRequest{Email: "once@example.com", Code: code}
		w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		env := testapi.New(t)

		w := env.Do(t, http.MethodPost, "/api/auth/recovery/request", "", recovery.RequestCodeRequest{Email: "ghost@example.com"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, env.Mail.Sent())
	})

	t.Run("NewCodeReplacesOld", func(t *testing.T) {
		env := testapi.New(t)
		env.Register(t, "twice@example.com")
		first := requestCode(t, env, "twice@example.com")
		second := requestCode(t, env, "twice@example.com")

		if first != second {
			w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "twice@example.com", Code: first})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}
		w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "twice@example.com", Code: second})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("TooManyAttempts", func(t *testing.T) {
		env := testapi.New(t)
		env.Register(t, "guess@example.com")
		code := requestCode(t, env, "guess@example.com")

		for range 5 {
			w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "guess@example.com", Code: wrongCode(code)})
			require.Equal(t, http.StatusUnauthorized, w.Code)
		}
		w := env.Do(t, http.MethodPost, "/api/auth/recovery/verify", "", recovery.VerifyRequest{Email: "guess@example.com", Code: code})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MailFailure", func(t *testing.T) {
		env := testapi.New(t)
		env.Register(t, "nomail@example.com")
		env.Mail.Err = errors.New("smtp down")

		w := env.Do(t, http.MethodPost, "/api/auth/recovery/request", "", recovery.RequestCodeRequest{Email: "nomail@example.com"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("PurgeExpired", func(t *testing.T) {
		env := testapi.New(t)
		env.Register(t, "purge@example.com")
		requestCode(t, env, "purge@example.com")

		removed, err := env.Recovery.PurgeExpired(t.Context())
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
