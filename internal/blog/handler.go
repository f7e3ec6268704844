package blog

import (
	"errors"
	"log/slog"
	"net/http"

	"institute-service/common/httputil"
	"institute-service/internal/auth"
	"institute-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	mountSection(router, "/events", h.service.Events, h)
	mountSection(router, "/live-classes", h.service.LiveClasses, h)
	mountSection(router, "/toppers", h.service.Toppers, h)
	mountSingleton(router, "/institute", h.service.Institute, h)
	mountSingleton(router, "/student-summary", h.service.Summary, h)
}

func mountSection[E store.Record, R any](router chi.Router, path string, sec *Section[E, R], h *Handler) {
	router.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			owner, ok := auth.OwnerID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
				return
			}
			rows, err := sec.List(r.Context(), owner)
			if err != nil {
				h.handleServiceError(w, r, err)
				return
			}
			httputil.RespondWithJSON(w, http.StatusOK, rows)
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			owner, ok := auth.OwnerID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
				return
			}
			var req R
			if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
				httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			created, err := sec.Create(r.Context(), owner, req)
			if err != nil {
				h.handleServiceError(w, r, err)
				return
			}
			httputil.RespondWithJSON(w, http.StatusCreated, created)
		})

		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			owner, ok := auth.OwnerID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
				return
			}
			id, err := httputil.UUIDParam(r, "id")
			if err != nil {
				httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			var req R
			if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
				httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			updated, err := sec.Update(r.Context(), owner, id, req)
			if err != nil {
				h.handleServiceError(w, r, err)
				return
			}
			httputil.RespondWithJSON(w, http.StatusOK, updated)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			owner, ok := auth.OwnerID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
				return
			}
			id, err := httputil.UUIDParam(r, "id")
			if err != nil {
				httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := sec.Delete(r.Context(), owner, id); err != nil {
				h.handleServiceError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func mountSingleton[E store.Record, R any](router chi.Router, path string, single *Singleton[E, R], h *Handler) {
	router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		owner, ok := auth.OwnerID(r.Context())
		if !ok {
			httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
			return
		}
		row, err := single.Get(r.Context(), owner)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, row)
	})

	router.Put(path, func(w http.ResponseWriter, r *http.Request) {
		owner, ok := auth.OwnerID(r.Context())
		if !ok {
			httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
			return
		}
		var req R
		if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := single.Update(r.Context(), owner, req)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, updated)
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEventLimit), errors.Is(err, ErrTopperLimit):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "blog request failed", "path", r.URL.Path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
