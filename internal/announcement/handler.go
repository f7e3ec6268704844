package announcement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"institute-service/common/httputil"
	"institute-service/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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
	router.Get("/announcements", h.list(h.service.List))
	router.Get("/announcements/latest", h.list(h.service.Latest))
	router.Get("/announcements/feed", h.list(h.service.Feed))
	router.Post("/announcements", h.CreateAnnouncement)
	router.Delete("/announcements/{id}", h.DeleteAnnouncement)
}

type lister func(ctx context.Context, owner uuid.UUID) ([]*Announcement, error)

func (h *Handler) list(fetch lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := auth.OwnerID(r.Context())
		if !ok {
			httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
			return
		}

		rows, err := fetch(r.Context(), owner)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, rows)
	}
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	var req Request
	if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid announcement ID")
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrAnnouncementNotFound) {
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "announcement request failed", "path", r.URL.Path, "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
