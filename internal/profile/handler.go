package profile

import (
	"log/slog"
	"net/http"

	"institute-service/common/httputil"
	"institute-service/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/profile", h.GetProfile)
	router.Put("/profile", h.UpdateProfile)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	profile, err := h.service.Get(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load profile", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	var req UpdateRequest
	if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.Update(r.Context(), p, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to update profile", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(r.Context(), "profile updated")
	httputil.RespondWithJSON(w, http.StatusOK, profile)
}
