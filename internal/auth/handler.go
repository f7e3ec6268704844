package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"institute-service/common/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)
	router.Post("/auth/refresh", h.Refresh)
	router.Post("/auth/logout", h.Logout)
}

// RegisterSessionRoutes mounts the routes that need an authenticated principal.
func (h *Handler) RegisterSessionRoutes(router chi.Router) {
	router.Get("/session", h.CurrentSession)
	router.Delete("/session", h.EndSession)
}

// Register creates a new account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, h.validator, &req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid register request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	SetAuthCookie(w, resp.AccessToken, h.service.Tokens().AccessTTL())
	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login signs an account in
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, h.validator, &req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid login request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "account signed in", "account_id", resp.Account.ID)

	SetAuthCookie(w, resp.AccessToken, h.service.Tokens().AccessTTL())
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh rotates the refresh token and issues a new access token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.DecodeJSON(r, h.validator, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	SetAuthCookie(w, resp.AccessToken, h.service.Tokens().AccessTTL())
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout ends the session of the refresh token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.DecodeJSON(r, h.validator, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentSession returns the principal of the access token
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, p)
}

// EndSession signs out the caller's session without a refresh token
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
		return
	}
	if err := h.service.EndSession(r.Context(), p); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth request failed", "path", r.URL.Path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
