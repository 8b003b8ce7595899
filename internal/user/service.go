package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateClientParams struct {
	Name     string
	Email    string
	Password string
}

// CreateClient provisions a portal account for a client. Only admins reach
// this through the router.
func (s *Service) CreateClient(ctx context.Context, params CreateClientParams) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         RoleClient,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) ListClients(ctx context.Context) ([]*User, error) {
	return s.repo.ListByRole(ctx, RoleClient)
}

// ListAdmins is the recipient set for admin-facing notifications. Every
// admin account receives domain events, not an arbitrary single one.
func (s *Service) ListAdmins(ctx context.Context) ([]*User, error) {
	return s.repo.ListByRole(ctx, RoleAdmin)
}

// GetClient resolves a client account, rejecting ids that belong to
// non-client users.
func (s *Service) GetClient(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Role != RoleClient {
		return nil, ErrNotFound
	}

	return u, nil
}
