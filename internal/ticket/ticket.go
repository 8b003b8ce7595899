package ticket

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

var (
	ErrNotFound   = errors.New("ticket not found")
	ErrForbidden  = errors.New("not allowed to act on this ticket")
	ErrValidation = errors.New("invalid ticket input")
)

// Ticket is a support request raised by a client from the portal.
type Ticket struct {
	ID        int64
	UserID    int64
	Subject   string
	Message   string
	Status    Status
	CreatedAt time.Time
	Replies   []Reply
}

// Reply is a message on a ticket's thread, from either side.
type Reply struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Message   string
	CreatedAt time.Time
}
