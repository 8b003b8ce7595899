package ticket_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/webnexa/studio-api/internal/notification"
	"github.com/webnexa/studio-api/internal/ticket"
	"github.com/webnexa/studio-api/internal/user"
)

type mocks struct {
	repo     *ticket.MockRepository
	users    *ticket.MockAdminDirectory
	notifier *ticket.MockNotifier
}

func newService(t *testing.T) (*ticket.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:     ticket.NewMockRepository(ctrl),
		users:    ticket.NewMockAdminDirectory(ctrl),
		notifier: ticket.NewMockNotifier(ctrl),
	}

	return ticket.NewService(m.repo, m.users, m.notifier), m
}

func TestService_Create(t *testing.T) {
	t.Run("NotifiesAdmins", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			CreateTicket(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tk *ticket.Ticket) error {
				assert.Equal(t, ticket.StatusOpen, tk.Status)
				tk.ID = 1
				return nil
			})
		m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2}}, nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(2), "New Support Ticket", gomock.Any(), notification.TypeInfo, "/admin/tickets").
			Return(nil)

		tk, err := svc.Create(context.Background(), 7, "Site down", "Our site is unreachable")
		require.NoError(t, err)
		assert.Equal(t, ticket.StatusOpen, tk.Status)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(context.Background(), 7, "", "message")
		assert.ErrorIs(t, err, ticket.ErrValidation)
	})
}

func TestService_Reply(t *testing.T) {
	open := func() *ticket.Ticket {
		return &ticket.Ticket{ID: 1, UserID: 7, Subject: "Site down", Status: ticket.StatusOpen}
	}

	t.Run("AdminReplyNotifiesOwner", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetTicket(gomock.Any(), int64(1)).Return(open(), nil)
		m.repo.EXPECT().CreateReply(gomock.Any(), gomock.Any()).Return(nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(7), "Support Reply", gomock.Any(), notification.TypeInfo, "/portal/tickets").
			Return(nil)

		r, err := svc.Reply(context.Background(), 1, 2, user.RoleAdmin, "Looking into it")
		require.NoError(t, err)
		assert.Equal(t, int64(2), r.UserID)
	})

	t.Run("ClientReplyNotifiesAdmins", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetTicket(gomock.Any(), int64(1)).Return(open(), nil)
		m.repo.EXPECT().CreateReply(gomock.Any(), gomock.Any()).Return(nil)
		m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2}}, nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(2), "Ticket Updated", gomock.Any(), notification.TypeInfo, "/admin/tickets").
			Return(nil)

		_, err := svc.Reply(context.Background(), 1, 7, user.RoleClient, "Still broken")
		require.NoError(t, err)
	})

	t.Run("NonOwnerClientForbidden", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetTicket(gomock.Any(), int64(1)).Return(open(), nil)

		_, err := svc.Reply(context.Background(), 1, 9, user.RoleClient, "hi")
		assert.ErrorIs(t, err, ticket.ErrForbidden)
	})
}

func TestService_Get_OwnershipCheck(t *testing.T) {
	svc, m := newService(t)

	m.repo.EXPECT().
		GetTicket(gomock.Any(), int64(1)).
		Return(&ticket.Ticket{ID: 1, UserID: 7}, nil).
		Times(3)

	_, err := svc.Get(context.Background(), 1, 7, user.RoleClient)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 1, 2, user.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 1, 9, user.RoleClient)
	assert.ErrorIs(t, err, ticket.ErrForbidden)
}

func TestService_Close(t *testing.T) {
	svc, m := newService(t)

	m.repo.EXPECT().UpdateStatus(gomock.Any(), int64(1), ticket.StatusClosed).Return(nil)

	require.NoError(t, svc.Close(context.Background(), 1))
}
