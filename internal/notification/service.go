package notification

import (
	"context"
)

// maxFeedSize caps how many notifications a single list call returns.
const maxFeedSize = 50

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=notification
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	DeleteAll(ctx context.Context, userID int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Emit appends a notification to the recipient's feed. Callers treat this
// as best-effort: a returned error must never fail or roll back the domain
// operation that triggered it.
func (s *Service) Emit(ctx context.Context, userID int64, title, message string, typ Type, link string) error {
	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
		Link:    link,
	}

	return s.repo.CreateNotification(ctx, n)
}

// List returns the recipient's most recent notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]*Notification, error) {
	return s.repo.ListNotifications(ctx, userID, maxFeedSize)
}

// MarkRead flags one of the caller's notifications as read. Marking an
// already-read notification is a no-op success.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// ClearAll deletes every notification belonging to the caller.
func (s *Service) ClearAll(ctx context.Context, userID int64) error {
	return s.repo.DeleteAll(ctx, userID)
}
