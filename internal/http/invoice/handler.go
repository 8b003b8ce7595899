package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/webnexa/studio-api/internal/http/middleware"
	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/invoice"
	"github.com/webnexa/studio-api/internal/user"
	"github.com/webnexa/studio-api/internal/validate"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

// AdminRoutes carries the full management surface.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}/approve", h.approve)
	r.Patch("/{id}/reject", h.reject)
	r.Delete("/{id}", h.delete)
}

// ClientRoutes carries the portal surface for invoice owners.
func (h *Handler) ClientRoutes(r chi.Router) {
	r.Get("/mine", h.listMine)
	r.Post("/{id}/pay", h.pay)
}

// SharedRoutes are reachable by the owner or any admin.
func (h *Handler) SharedRoutes(r chi.Router) {
	r.Get("/{id}/status", h.getStatus)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, invoice.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, invoice.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "invoice not found")
	case errors.Is(err, invoice.ErrDuplicateNumber):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("invoice operation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type itemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"min=1"`
	Rate        decimal.Decimal `json:"rate"`
}

func toItemParams(items []itemRequest) []invoice.ItemParams {
	params := make([]invoice.ItemParams, len(items))
	for i, it := range items {
		params[i] = invoice.ItemParams{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		}
	}

	return params
}

type createInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	ClientID      int64  `json:"client_id" validate:"required"`
	ClientName    string `json:"client_name"`
	// TotalAmount is accepted for wire compatibility but ignored; the
	// engine always recomputes totals from the items.
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     string          `json:"due_date" validate:"required"`
	Items       []itemRequest   `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	dueDate, err := time.Parse(time.DateOnly, req.DueDate)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		Number:     req.InvoiceNumber,
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		DueDate:    dueDate,
		Items:      toItemParams(req.Items),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

type updateInvoiceRequest struct {
	InvoiceNumber string        `json:"invoice_number" validate:"required"`
	ClientName    string        `json:"client_name"`
	Status        *string       `json:"status,omitempty"`
	DueDate       string        `json:"due_date" validate:"required"`
	Items         []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	dueDate, err := time.Parse(time.DateOnly, req.DueDate)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}

	params := invoice.UpdateParams{
		Number:     req.InvoiceNumber,
		ClientName: req.ClientName,
		DueDate:    dueDate,
		Items:      toItemParams(req.Items),
	}

	if req.Status != nil {
		status := invoice.Status(*req.Status)
		params.Status = &status
	}

	inv, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
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

	if err := h.svc.SetStatus(r.Context(), id, invoice.Status(req.Status)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type payRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.svc.SubmitPayment(r.Context(), id, claims.UserID, req.TransactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	inv, err := h.svc.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req rejectRequest
	if r.Body != nil {
		// Body is optional on reject.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	inv, err := h.svc.Reject(r.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
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

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	invoices, err := h.svc.ListByClient(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if claims.Role != user.RoleAdmin && inv.ClientID != claims.UserID {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
