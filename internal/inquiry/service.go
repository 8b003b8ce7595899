package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webnexa/studio-api/internal/notification"
	"github.com/webnexa/studio-api/internal/user"
)

const adminInquiriesLink = "/admin/inquiries"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=inquiry
type Repository interface {
	CreateInquiry(ctx context.Context, inq *Inquiry) error
	ListInquiries(ctx context.Context) ([]*Inquiry, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	DeleteInquiry(ctx context.Context, id int64) error
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

type CreateParams struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// Create records a lead from the public funnel and notifies every admin.
// Notification failures never fail the submission.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Inquiry, error) {
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.Email) == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	if strings.TrimSpace(params.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	inq := &Inquiry{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Service: params.Service,
		Message: params.Message,
		Status:  StatusNew,
	}
	if err := s.repo.CreateInquiry(ctx, inq); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx,
		"New Inquiry",
		fmt.Sprintf("%s sent an inquiry about %s.", inq.Name, serviceOrGeneral(inq.Service)),
	)

	return inq, nil
}

func serviceOrGeneral(service string) string {
	if service == "" {
		return "your services"
	}

	return service
}

func (s *Service) List(ctx context.Context) ([]*Inquiry, error) {
	return s.repo.ListInquiries(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteInquiry(ctx, id)
}

func (s *Service) notifyAdmins(ctx context.Context, title, message string) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to resolve admin recipients", "error", err, "title", title)
		return
	}

	for _, admin := range admins {
		if err := s.notifier.Emit(ctx, admin.ID, title, message, notification.TypeInfo, adminInquiriesLink); err != nil {
			slog.Error("failed to emit notification", "error", err, "user_id", admin.ID, "title", title)
		}
	}
}
