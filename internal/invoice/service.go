package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webnexa/studio-api/internal/notification"
	"github.com/webnexa/studio-api/internal/user"
)

// Deep links sent with payment notifications.
const (
	adminInvoicesLink  = "/admin/invoices"
	portalInvoicesLink = "/portal/invoices"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	ListInvoicesByClient(ctx context.Context, clientID int64) ([]*Invoice, error)
	ReplaceInvoice(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetPayment(ctx context.Context, id int64, transactionID string) error
	MarkPaid(ctx context.Context, id int64) error
	ClearPayment(ctx context.Context, id int64) error
	DeleteInvoice(ctx context.Context, id int64) error
}

// AdminDirectory resolves accounts for ownership checks and for the admin
// notification broadcast list.
type AdminDirectory interface {
	GetClient(ctx context.Context, id int64) (*user.User, error)
	ListAdmins(ctx context.Context) ([]*user.User, error)
}

// Notifier appends to a user's in-app feed. Emissions are best-effort: the
// service logs failures and never propagates them.
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

type ItemParams struct {
	Description string
	Quantity    int
	Rate        decimal.Decimal
}

type CreateParams struct {
	Number     string
	ClientID   int64
	ClientName string
	DueDate    time.Time
	Items      []ItemParams
}

type UpdateParams struct {
	Number     string
	ClientName string
	DueDate    time.Time
	Status     *Status
	Items      []ItemParams
}

// buildItems validates the line items and derives each amount plus the
// invoice total. Caller-supplied totals are never trusted.
func buildItems(params []ItemParams) ([]Item, decimal.Decimal, error) {
	if len(params) == 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	items := make([]Item, 0, len(params))
	total := decimal.Zero

	for i, p := range params {
		if strings.TrimSpace(p.Description) == "" {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d is missing a description", ErrValidation, i+1)
		}

		if p.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d quantity must be at least 1", ErrValidation, i+1)
		}

		if p.Rate.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: item %d rate must not be negative", ErrValidation, i+1)
		}

		amount := p.Rate.Mul(decimal.NewFromInt(int64(p.Quantity)))
		total = total.Add(amount)

		items = append(items, Item{
			Description: p.Description,
			Quantity:    p.Quantity,
			Rate:        p.Rate,
			Amount:      amount,
		})
	}

	return items, total, nil
}

// Create persists a new pending invoice with its items in one transaction.
// No notifications are emitted on creation.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if strings.TrimSpace(params.Number) == "" {
		return nil, fmt.Errorf("%w: invoice number is required", ErrValidation)
	}

	client, err := s.users.GetClient(ctx, params.ClientID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %d does not exist", ErrValidation, params.ClientID)
		}

		return nil, err
	}

	items, total, err := buildItems(params.Items)
	if err != nil {
		return nil, err
	}

	clientName := params.ClientName
	if clientName == "" {
		clientName = client.Name
	}

	inv := &Invoice{
		Number:      params.Number,
		ClientID:    params.ClientID,
		ClientName:  clientName,
		TotalAmount: total,
		Status:      StatusPending,
		DueDate:     params.DueDate,
		Items:       items,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// Update is a full replace: the header is overwritten, every existing item
// is dropped and the supplied set re-inserted, and the total recomputed.
// Status is preserved unless explicitly provided.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.Number) == "" {
		return nil, fmt.Errorf("%w: invoice number is required", ErrValidation)
	}

	items, total, err := buildItems(params.Items)
	if err != nil {
		return nil, err
	}

	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *params.Status)
		}

		inv.Status = *params.Status
	}

	inv.Number = params.Number
	inv.DueDate = params.DueDate
	inv.TotalAmount = total
	inv.Items = items

	if params.ClientName != "" {
		inv.ClientName = params.ClientName
	}

	if err := s.repo.ReplaceInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// SetStatus is the admin override, e.g. marking an invoice overdue. Any
// status may be set from any prior status; the workflow has always been
// permissive here and admin screens rely on it.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if _, err := s.repo.GetInvoice(ctx, id); err != nil {
		return err
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// SubmitPayment records the owning client's payment proof and moves the
// invoice under review, regardless of its prior status. Every admin is
// notified.
func (s *Service) SubmitPayment(ctx context.Context, id, actorID int64, transactionID string) (*Invoice, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", ErrValidation)
	}

	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.ClientID != actorID {
		return nil, ErrForbidden
	}

	if err := s.repo.SetPayment(ctx, id, transactionID); err != nil {
		return nil, err
	}

	inv.Status = StatusUnderReview
	inv.TransactionID = &transactionID

	s.notifyAdmins(ctx,
		"Payment Submitted",
		fmt.Sprintf("%s submitted payment for invoice %s (ref %s).", inv.ClientName, inv.Number, transactionID),
		notification.TypePayment,
		adminInvoicesLink,
	)

	return inv, nil
}

// Approve confirms the payment: status becomes paid unconditionally and the
// submitted transaction reference is retained. The client is notified.
func (s *Service) Approve(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return nil, err
	}

	inv.Status = StatusPaid

	s.notify(ctx, inv.ClientID,
		"Payment Confirmed",
		fmt.Sprintf("Your payment for invoice %s has been confirmed.", inv.Number),
		notification.TypeSuccess,
		portalInvoicesLink,
	)

	return inv, nil
}

// Reject sends the invoice back to pending and clears the payment proof.
// The client is notified, including the reason when one is given.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearPayment(ctx, id); err != nil {
		return nil, err
	}

	inv.Status = StatusPending
	inv.TransactionID = nil

	message := fmt.Sprintf("Your payment for invoice %s was rejected.", inv.Number)
	if reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, reason)
	}

	s.notify(ctx, inv.ClientID, "Payment Rejected", message, notification.TypeError, portalInvoicesLink)

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteInvoice(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) ListByClient(ctx context.Context, clientID int64) ([]*Invoice, error) {
	return s.repo.ListInvoicesByClient(ctx, clientID)
}

// notify emits a single notification. Failures are logged and swallowed so
// the primary transition never fails or rolls back over the feed.
func (s *Service) notify(ctx context.Context, userID int64, title, message string, typ notification.Type, link string) {
	if err := s.notifier.Emit(ctx, userID, title, message, typ, link); err != nil {
		slog.Error("failed to emit notification", "error", err, "user_id", userID, "title", title)
	}
}

// notifyAdmins fans out to the whole admin broadcast list.
func (s *Service) notifyAdmins(ctx context.Context, title, message string, typ notification.Type, link string) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to resolve admin recipients", "error", err, "title", title)
		return
	}

	for _, admin := range admins {
		s.notify(ctx, admin.ID, title, message, typ, link)
	}
}
