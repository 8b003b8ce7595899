package user

import (
	"errors"
	"time"
)

// Role determines which back-office a user can reach.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
