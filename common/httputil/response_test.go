package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusNotFound, "no student found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"no student found"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	validate := validator.New()

	t.Run("Valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
		var req signIn
		require.NoError(t, DecodeJSON(r, validate, &req))
		assert.Equal(t, "a@b.co", req.Email)
	})

	t.Run("Malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		var req signIn
		assert.ErrorIs(t, DecodeJSON(r, validate, &req), ErrInvalidBody)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"123"}`))
		var req signIn
		err := DecodeJSON(r, validate, &req)
		assert.ErrorIs(t, err, ErrInvalidBody)
		assert.Contains(t, err.Error(), "Password failed min=6")
	})
}

func TestUUIDParam(t *testing.T) {
	router := chi.NewRouter()
	var got uuid.UUID
	var gotErr error
	router.Get("/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = UUIDParam(r, "id")
	})

	id := uuid.New()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/"+id.String(), nil))
	require.NoError(t, gotErr)
	assert.Equal(t, id, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/42", nil))
	assert.EqualError(t, gotErr, "invalid id")
}
