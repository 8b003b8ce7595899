package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/user"
	"github.com/webnexa/studio-api/internal/validate"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

// AdminRoutes: client account management.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/", h.createClient)
	r.Get("/clients", h.listClients)
}

type createClientRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.CreateClient(r.Context(), user.CreateClientParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			respond.Error(w, http.StatusConflict, err.Error())
			return
		}

		slog.Error("create client failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		slog.Error("list clients failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	out := make([]userResponse, len(clients))
	for i, u := range clients {
		out[i] = toResponse(u)
	}

	respond.JSON(w, http.StatusOK, out)
}
