package invoice

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusPaid        Status = "paid"
	StatusOverdue     Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusPaid, StatusOverdue:
		return true
	}

	return false
}

var (
	ErrNotFound        = errors.New("invoice not found")
	ErrForbidden       = errors.New("not allowed to act on this invoice")
	ErrValidation      = errors.New("invalid invoice input")
	ErrDuplicateNumber = errors.New("invoice number already exists")
)

// Invoice is a billing record owned by one client. TotalAmount is always
// derived from the items; TransactionID holds the client's payment proof
// reference while the invoice is under review or after it was paid.
type Invoice struct {
	ID            int64
	Number        string
	ClientID      int64
	ClientName    string
	TotalAmount   decimal.Decimal
	Status        Status
	DueDate       time.Time
	TransactionID *string
	CreatedAt     time.Time
	Items         []Item
}

// Item belongs to exactly one invoice. Amount is derived as quantity×rate
// and never independently authoritative.
type Item struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    int
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}
