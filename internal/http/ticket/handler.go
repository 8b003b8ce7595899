package ticket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webnexa/studio-api/internal/http/middleware"
	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/ticket"
	"github.com/webnexa/studio-api/internal/validate"
)

type Handler struct {
	svc *ticket.Service
}

func NewHandler(svc *ticket.Service) *Handler {
	return &Handler{svc: svc}
}

// ClientRoutes: raise and follow support tickets from the portal.
func (h *Handler) ClientRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/mine", h.listMine)
}

// AdminRoutes: the back-office ticket queue.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}/close", h.close)
}

// SharedRoutes are reachable by the owner or any admin.
func (h *Handler) SharedRoutes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Post("/{id}/replies", h.reply)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ticket.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ticket.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ticket.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "ticket not found")
	default:
		slog.Error("ticket operation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type replyResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ticketResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Subject   string          `json:"subject"`
	Message   string          `json:"message"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Replies   []replyResponse `json:"replies"`
}

func toResponse(t *ticket.Ticket) ticketResponse {
	replies := make([]replyResponse, len(t.Replies))
	for i, rep := range t.Replies {
		replies[i] = replyResponse{
			ID:        rep.ID,
			UserID:    rep.UserID,
			Message:   rep.Message,
			CreatedAt: rep.CreatedAt,
		}
	}

	return ticketResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		Replies:   replies,
	}
}

func toResponseList(tickets []*ticket.Ticket) []ticketResponse {
	out := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = toResponse(t)
	}

	return out
}

type createTicketRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Create(r.Context(), claims.UserID, req.Subject, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(t))
}

type replyRequest struct {
	Message string `json:"message" validate:"required"`
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
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

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.svc.Reply(r.Context(), id, claims.UserID, claims.Role, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, replyResponse{
		ID:        rep.ID,
		UserID:    rep.UserID,
		Message:   rep.Message,
		CreatedAt: rep.CreatedAt,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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

	t, err := h.svc.Get(r.Context(), id, claims.UserID, claims.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tickets))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tickets, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(tickets))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Close(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
