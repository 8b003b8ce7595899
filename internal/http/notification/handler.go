package notification

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webnexa/studio-api/internal/http/middleware"
	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/notification"
)

type Handler struct {
	svc *notification.Service
}

func NewHandler(svc *notification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{id}/read", h.markRead)
	r.Delete("/", h.clearAll)
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("list notifications failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	out := make([]notificationResponse, len(items))
	for i, n := range items {
		out[i] = notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.MarkRead(r.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "notification not found")
			return
		}

		slog.Error("mark notification read failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.ClearAll(r.Context(), claims.UserID); err != nil {
		slog.Error("clear notifications failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
