package fee

import (
	"errors"
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
	router.Get("/fee-payments", h.ListPayments)
	router.Post("/fee-payments", h.CreatePayment)
	router.Get("/fee-payments/stats", h.GetStats)
	router.Delete("/fee-payments/{id}", h.DeletePayment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	payments, err := h.service.List(r.Context(), owner, r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, payments)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}
	id, err := httputil.UUIDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "fee request failed", "path", r.URL.Path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
