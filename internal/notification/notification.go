package notification

import (
	"errors"
	"time"
)

// Type is a presentation hint for the feed UI. It has no behavioral effect.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypePayment Type = "payment"
)

var ErrNotFound = errors.New("notification not found")

// Notification is a best-effort in-app message appended to a user's feed as
// a side effect of a domain event.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      Type
	Link      string
	Read      bool
	CreatedAt time.Time
}
