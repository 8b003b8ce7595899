package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/webnexa/studio-api/internal/auth"
	"github.com/webnexa/studio-api/internal/user"
)

func hashOf(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func TestService_Login(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	type testCase struct {
		name      string
		email     string
		password  string
		setupMock func(m *auth.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			email:    "client@example.com",
			password: "s3cret",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "client@example.com").
					Return(&user.User{
						ID:           7,
						Name:         "Acme Corp",
						Email:        "client@example.com",
						PasswordHash: hashOf(t, "s3cret"),
						Role:         user.RoleClient,
					}, nil)
			},
		},
		{
			name:     "WrongPassword",
			email:    "client@example.com",
			password: "nope",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "client@example.com").
					Return(&user.User{
						ID:           7,
						Email:        "client@example.com",
						PasswordHash: hashOf(t, "s3cret"),
						Role:         user.RoleClient,
					}, nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "UnknownEmail",
			email:    "ghost@example.com",
			password: "whatever",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "ghost@example.com").
					Return(nil, user.ErrNotFound)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "RepoError",
			email:    "client@example.com",
			password: "s3cret",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "client@example.com").
					Return(nil, errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := auth.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := auth.NewService(repo, tokens)
			token, u, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, auth.ErrInvalidCredentials) {
					assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
				}

				assert.Empty(t, token)
				assert.Nil(t, u)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, u)
			assert.NotEmpty(t, token)

			claims, err := tokens.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
			assert.Equal(t, user.RoleClient, claims.Role)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestTokenProvider_RejectsTamperedToken(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)
	other := auth.NewTokenProvider("other-secret", time.Hour)

	signed, err := tokens.Sign(&user.User{ID: 1, Role: user.RoleAdmin})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestTokenProvider_RejectsExpiredToken(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", -time.Minute)

	signed, err := tokens.Sign(&user.User{ID: 1, Role: user.RoleClient})
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.Error(t, err)
}
