package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webnexa/studio-api/internal/notification"
	"github.com/webnexa/studio-api/internal/user"
)

const (
	adminTicketsLink  = "/admin/tickets"
	portalTicketsLink = "/portal/tickets"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ticket
type Repository interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id int64) (*Ticket, error)
	ListTickets(ctx context.Context) ([]*Ticket, error)
	ListTicketsByUser(ctx context.Context, userID int64) ([]*Ticket, error)
	CreateReply(ctx context.Context, r *Reply) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

type AdminDirectory interface {
	ListAdmins(ctx context.Context) ([]*user.User, error)
}

type Notifier interface {
	Emit(ctx context.Context, userID int64, title, message string, typ notification.Type, link string) error
}

type Service struct {
	repo     Repository
	users    AdminDirectory
	notifier Notifier
}

func NewService(repo Repository, users AdminDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, notifier: notifier}
}

// Create opens a ticket for the calling client and notifies every admin.
func (s *Service) Create(ctx context.Context, userID int64, subject, message string) (*Ticket, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: subject and message are required", ErrValidation)
	}

	t := &Ticket{
		UserID:  userID,
		Subject: subject,
		Message: message,
		Status:  StatusOpen,
	}
	if err := s.repo.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, "New Support Ticket", fmt.Sprintf("A new ticket was opened: %s", t.Subject))

	return t, nil
}

// Reply appends to the thread. Clients may only reply on their own tickets;
// the other side of the conversation is notified.
func (s *Service) Reply(ctx context.Context, ticketID, actorID int64, actorRole user.Role, message string) (*Reply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	t, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if actorRole != user.RoleAdmin && t.UserID != actorID {
		return nil, ErrForbidden
	}

	r := &Reply{
		TicketID: ticketID,
		UserID:   actorID,
		Message:  message,
	}
	if err := s.repo.CreateReply(ctx, r); err != nil {
		return nil, err
	}

	if actorRole == user.RoleAdmin {
		s.notify(ctx, t.UserID,
			"Support Reply",
			fmt.Sprintf("Support replied on your ticket: %s", t.Subject),
			portalTicketsLink,
		)
	} else {
		s.notifyAdmins(ctx, "Ticket Updated", fmt.Sprintf("New reply on ticket: %s", t.Subject))
	}

	return r, nil
}

// Get enforces ownership: clients see only their own tickets.
func (s *Service) Get(ctx context.Context, id, actorID int64, actorRole user.Role) (*Ticket, error) {
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != user.RoleAdmin && t.UserID != actorID {
		return nil, ErrForbidden
	}

	return t, nil
}

func (s *Service) List(ctx context.Context) ([]*Ticket, error) {
	return s.repo.ListTickets(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Ticket, error) {
	return s.repo.ListTicketsByUser(ctx, userID)
}

func (s *Service) Close(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, StatusClosed)
}

func (s *Service) notify(ctx context.Context, userID int64, title, message, link string) {
	if err := s.notifier.Emit(ctx, userID, title, message, notification.TypeInfo, link); err != nil {
		slog.Error("failed to emit notification", "error", err, "user_id", userID, "title", title)
	}
}

func (s *Service) notifyAdmins(ctx context.Context, title, message string) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to resolve admin recipients", "error", err, "title", title)
		return
	}

	for _, admin := range admins {
		s.notify(ctx, admin.ID, title, message, adminTicketsLink)
	}
}
