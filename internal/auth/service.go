package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/webnexa/studio-api/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	repo   Repository
	tokens *TokenProvider
}

func NewService(repo Repository, tokens *TokenProvider) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login verifies the credentials and returns a signed bearer token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(u)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}
