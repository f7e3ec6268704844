// Package testapi mounts the full HTTP API on the shared test database.
package testapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"institute-service/common/logger"
	commonmetrics "institute-service/common/metrics"
	"institute-service/internal/announcement"
	"institute-service/internal/auth"
	"institute-service/internal/blog"
	"institute-service/internal/changefeed"
	"institute-service/internal/config"
	"institute-service/internal/fee"
	"institute-service/internal/mailer"
	appmetrics "institute-service/internal/metrics"
	"institute-service/internal/profile"
	"institute-service/internal/recovery"
	"institute-service/internal/session"
	"institute-service/internal/student"
	"institute-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// Options adjust the wiring. The zero value uses owner-scoped feeds and an in-memory mailer.
type Options struct {
	FeedScope string
	Feed      changefeed.Publisher
}

type Env struct {
	DB          *bun.DB
	Router      chi.Router
	Mail        *mailer.Memory
	Revocations *session.Revocations
	Auth        *auth.Service
	Recovery    *recovery.Service
}

// New truncates every table and returns a router serving /api.
func New(t *testing.T, opts ...Options) *Env {
	t.Helper()
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	pg := testdb.SetupSharedPostgres(t)
	testdb.CleanupTables(t, pg.DB)

	log := logger.Discard()
	infra := commonmetrics.NewMock()
	domain := appmetrics.NewMock()
	recorder := changefeed.NewRecorder(opt.Feed, domain)
	mail := &mailer.Memory{}
	revocations := session.NewRevocations()

	profiles := profile.NewService(profile.NewRepository(pg.DB, infra), recorder, log)
	tokens := auth.NewTokens(config.JWTConfig{Secret: "test-secret", Issuer: "institute-test", AccessTokenTTL: time.Hour})
	authService := auth.NewService(auth.NewRepository(pg.DB, infra), tokens, session.NewTerminator(revocations, nil, log), profiles, log, domain)
	recoveryService := recovery.NewService(recovery.NewRepository(pg.DB, infra), authService, mail, config.RecoveryConfig{}, domain, log)
	students := student.NewService(student.NewRepository(pg.DB, infra), student.NewCodeGenerator(pg.DB, infra), profiles, recorder, domain, log)
	fees := fee.NewService(fee.NewRepository(pg.DB, infra), students, recorder, domain, log)
	announcements := announcement.NewService(announcement.NewRepository(pg.DB, infra), opt.FeedScope, recorder, log)
	blogService := blog.NewService(pg.DB, infra, recorder, domain, log)

	authHandler := auth.NewHandler(authService, log)
	studentHandler := student.NewHandler(students, log)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		recovery.NewHandler(recoveryService, log).RegisterRoutes(r)
		studentHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens, revocations, log))
			authHandler.RegisterSessionRoutes(r)
			profile.NewHandler(profiles, log).RegisterRoutes(r)
			studentHandler.RegisterRoutes(r)
			fee.NewHandler(fees, log).RegisterRoutes(r)
			announcement.NewHandler(announcements, log).RegisterRoutes(r)
			blog.NewHandler(blogService, log).RegisterRoutes(r)
		})
	})

	return &Env{
		DB:          pg.DB,
		Router:      router,
		Mail:        mail,
		Revocations: revocations,
		Auth:        authService,
		Recovery:    recoveryService,
	}
}

// Do sends body as JSON. An empty token sends no Authorization header.
func (e *Env) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Register signs up an institute and returns its session.
func (e *Env) Register(t *testing.T, email string) *auth.AuthResponse {
	t.Helper()
	w := e.Do(t, http.MethodPost, "/api/auth/register", "", auth.RegisterRequest{
		Email:         email,
		Password:      "secret123",
		FullName:      "Owner of " + email,
		InstituteName: "Institute " + email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp auth.AuthResponse
	Decode(t, w, &resp)
	return &resp
}

// Decode unmarshals the recorded body into dst.
func Decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}
