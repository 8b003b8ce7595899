package inquiry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/inquiry"
	"github.com/webnexa/studio-api/internal/validate"
)

type Handler struct {
	svc *inquiry.Service
}

func NewHandler(svc *inquiry.Service) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes: the unauthenticated contact funnel.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/", h.create)
}

// AdminRoutes: lead triage.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inquiry.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, inquiry.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "inquiry not found")
	default:
		slog.Error("inquiry operation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type createInquiryRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message" validate:"required"`
}

type inquiryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(inq *inquiry.Inquiry) inquiryResponse {
	return inquiryResponse{
		ID:        inq.ID,
		Name:      inq.Name,
		Email:     inq.Email,
		Phone:     inq.Phone,
		Service:   inq.Service,
		Message:   inq.Message,
		Status:    string(inq.Status),
		CreatedAt: inq.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	inq, err := h.svc.Create(r.Context(), inquiry.CreateParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Service: req.Service,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inq))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]inquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		out[i] = toResponse(inq)
	}

	respond.JSON(w, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, inquiry.Status(req.Status)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
