package student

import (
	"errors"
	"log/slog"
	"net/http"

	"institute-service/common/httputil"
	"institute-service/internal/auth"
	"institute-service/internal/whatsapp"

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
	router.Route("/students", func(r chi.Router) {
		r.Get("/", h.ListStudents)
		r.Post("/", h.CreateStudent)
		r.Get("/batches", h.ListBatches)
		r.Get("/search", h.SearchStudent)
		r.Get("/pending", h.PendingFees)
		r.Get("/{id}", h.GetStudent)
		r.Put("/{id}", h.UpdateStudent)
		r.Delete("/{id}", h.DeleteStudent)
		r.Get("/{id}/whatsapp", h.WhatsAppLink)
	})
}

// RegisterPublicRoutes mounts the landing-page search, which needs no session.
func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/public/students/search", h.PublicSearch)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	students, err := h.service.List(r.Context(), owner, r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	st, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	var req Request
	if err := httputil.DecodeJSON(r, h.validate, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), owner, id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	batches, err := h.service.Batches(r.Context(), owner)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, batches)
}

func (h *Handler) SearchStudent(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	st, err := h.service.Search(r.Context(), owner, r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, st)
}

func (h *Handler) PublicSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PublicSearch(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) PendingFees(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	pending, err := h.service.PendingFees(r.Context(), owner)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, pending)
}

func (h *Handler) WhatsAppLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	link, err := h.service.WhatsAppLink(r.Context(), owner, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, LinkResponse{URL: link})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		h.logger.InfoContext(r.Context(), "student not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, ErrNoMatch):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, whatsapp.ErrNoContactNumber):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "student request failed", "path", r.URL.Path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
