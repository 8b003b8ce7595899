package inquiry

import (
	"errors"
	"time"
)

// Status tracks how far the team has taken a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusClosed:
		return true
	}

	return false
}

var (
	ErrNotFound   = errors.New("inquiry not found")
	ErrValidation = errors.New("invalid inquiry input")
)

// Inquiry is a lead submitted through the public contact funnel.
type Inquiry struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Service   string
	Message   string
	Status    Status
	CreatedAt time.Time
}
