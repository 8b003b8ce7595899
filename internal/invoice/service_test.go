package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/webnexa/studio-api/internal/invoice"
	"github.com/webnexa/studio-api/internal/notification"
	"github.com/webnexa/studio-api/internal/user"
)

type mocks struct {
	repo     *invoice.MockRepository
	users    *invoice.MockAdminDirectory
	notifier *invoice.MockNotifier
}

func newService(t *testing.T) (*invoice.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:     invoice.NewMockRepository(ctrl),
		users:    invoice.NewMockAdminDirectory(ctrl),
		notifier: invoice.NewMockNotifier(ctrl),
	}

	return invoice.NewService(m.repo, m.users, m.notifier), m
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestService_Create(t *testing.T) {
	dueDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ComputesItemAmountsAndTotal", func(t *testing.T) {
		svc, m := newService(t)

		m.users.EXPECT().
			GetClient(gomock.Any(), int64(7)).
			Return(&user.User{ID: 7, Name: "Acme Corp", Role: user.RoleClient}, nil)
		m.repo.EXPECT().
			CreateInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
				inv.ID = 1
				inv.CreatedAt = time.Now()
				return nil
			})

		inv, err := svc.Create(context.Background(), invoice.CreateParams{
			Number:   "INV-101",
			ClientID: 7,
			DueDate:  dueDate,
			Items: []invoice.ItemParams{
				{Description: "Design", Quantity: 1, Rate: money(10000)},
				{Description: "Hosting", Quantity: 3, Rate: money(500)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, invoice.StatusPending, inv.Status)
		assert.Nil(t, inv.TransactionID)
		assert.Equal(t, "Acme Corp", inv.ClientName)
		require.Len(t, inv.Items, 2)
		assert.True(t, inv.Items[0].Amount.Equal(money(10000)), "got %s", inv.Items[0].Amount)
		assert.True(t, inv.Items[1].Amount.Equal(money(1500)), "got %s", inv.Items[1].Amount)
		assert.True(t, inv.TotalAmount.Equal(money(11500)), "got %s", inv.TotalAmount)
	})

	t.Run("ScenarioSingleItem", func(t *testing.T) {
		svc, m := newService(t)

		m.users.EXPECT().
			GetClient(gomock.Any(), int64(7)).
			Return(&user.User{ID: 7, Name: "Acme Corp", Role: user.RoleClient}, nil)
		m.repo.EXPECT().
			CreateInvoice(gomock.Any(), gomock.Any()).
			Return(nil)

		inv, err := svc.Create(context.Background(), invoice.CreateParams{
			Number:   "INV-101",
			ClientID: 7,
			DueDate:  dueDate,
			Items:    []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(10000)}},
		})
		require.NoError(t, err)
		assert.True(t, inv.TotalAmount.Equal(money(10000)))
		assert.Equal(t, invoice.StatusPending, inv.Status)
	})

	t.Run("UnknownClient", func(t *testing.T) {
		svc, m := newService(t)

		m.users.EXPECT().
			GetClient(gomock.Any(), int64(42)).
			Return(nil, user.ErrNotFound)

		_, err := svc.Create(context.Background(), invoice.CreateParams{
			Number:   "INV-102",
			ClientID: 42,
			DueDate:  dueDate,
			Items:    []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(100)}},
		})
		assert.ErrorIs(t, err, invoice.ErrValidation)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name   string
			params invoice.CreateParams
		}{
			{
				name: "MissingNumber",
				params: invoice.CreateParams{
					ClientID: 7,
					Items:    []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(100)}},
				},
			},
			{
				name:   "NoItems",
				params: invoice.CreateParams{Number: "INV-103", ClientID: 7},
			},
			{
				name: "ZeroQuantity",
				params: invoice.CreateParams{
					Number:   "INV-104",
					ClientID: 7,
					Items:    []invoice.ItemParams{{Description: "Design", Quantity: 0, Rate: money(100)}},
				},
			},
			{
				name: "NegativeRate",
				params: invoice.CreateParams{
					Number:   "INV-105",
					ClientID: 7,
					Items:    []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(-1)}},
				},
			},
			{
				name: "BlankDescription",
				params: invoice.CreateParams{
					Number:   "INV-106",
					ClientID: 7,
					Items:    []invoice.ItemParams{{Description: "  ", Quantity: 1, Rate: money(100)}},
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, m := newService(t)

				m.users.EXPECT().
					GetClient(gomock.Any(), int64(7)).
					Return(&user.User{ID: 7, Role: user.RoleClient}, nil).
					AnyTimes()

				_, err := svc.Create(context.Background(), tt.params)
				assert.ErrorIs(t, err, invoice.ErrValidation)
			})
		}
	})

	t.Run("DuplicateNumber", func(t *testing.T) {
		svc, m := newService(t)

		m.users.EXPECT().
			GetClient(gomock.Any(), int64(7)).
			Return(&user.User{ID: 7, Role: user.RoleClient}, nil)
		m.repo.EXPECT().
			CreateInvoice(gomock.Any(), gomock.Any()).
			Return(invoice.ErrDuplicateNumber)

		_, err := svc.Create(context.Background(), invoice.CreateParams{
			Number:   "INV-101",
			ClientID: 7,
			DueDate:  dueDate,
			Items:    []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(100)}},
		})
		assert.ErrorIs(t, err, invoice.ErrDuplicateNumber)
	})
}

func TestService_Update(t *testing.T) {
	dueDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	existing := func() *invoice.Invoice {
		return &invoice.Invoice{
			ID:          1,
			Number:      "INV-101",
			ClientID:    7,
			ClientName:  "Acme Corp",
			Status:      invoice.StatusUnderReview,
			TotalAmount: money(10000),
			Items:       []invoice.Item{{ID: 5, InvoiceID: 1, Description: "Design", Quantity: 1, Rate: money(10000), Amount: money(10000)}},
		}
	}

	t.Run("RecomputesTotalAndPreservesStatus", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(existing(), nil)
		m.repo.EXPECT().
			ReplaceInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
				assert.True(t, inv.TotalAmount.Equal(money(2400)), "got %s", inv.TotalAmount)
				assert.Equal(t, invoice.StatusUnderReview, inv.Status)
				assert.Len(t, inv.Items, 2)
				return nil
			})

		inv, err := svc.Update(context.Background(), 1, invoice.UpdateParams{
			Number:  "INV-101",
			DueDate: dueDate,
			Items: []invoice.ItemParams{
				{Description: "Design", Quantity: 2, Rate: money(1000)},
				{Description: "Copywriting", Quantity: 1, Rate: money(400)},
			},
		})
		require.NoError(t, err)
		assert.True(t, inv.TotalAmount.Equal(money(2400)))
	})

	t.Run("ExplicitStatusOverride", func(t *testing.T) {
		svc, m := newService(t)

		overdue := invoice.StatusOverdue

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(existing(), nil)
		m.repo.EXPECT().ReplaceInvoice(gomock.Any(), gomock.Any()).Return(nil)

		inv, err := svc.Update(context.Background(), 1, invoice.UpdateParams{
			Number:  "INV-101",
			DueDate: dueDate,
			Status:  &overdue,
			Items:   []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(10000)}},
		})
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusOverdue, inv.Status)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc, m := newService(t)

		bogus := invoice.Status("archived")

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(existing(), nil)

		_, err := svc.Update(context.Background(), 1, invoice.UpdateParams{
			Number:  "INV-101",
			DueDate: dueDate,
			Status:  &bogus,
			Items:   []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(10000)}},
		})
		assert.ErrorIs(t, err, invoice.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(99)).Return(nil, invoice.ErrNotFound)

		_, err := svc.Update(context.Background(), 99, invoice.UpdateParams{
			Number: "INV-999",
			Items:  []invoice.ItemParams{{Description: "Design", Quantity: 1, Rate: money(100)}},
		})
		assert.ErrorIs(t, err, invoice.ErrNotFound)
	})
}

func TestService_SetStatus(t *testing.T) {
	t.Run("AnyStatusFromAnyStatus", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(&invoice.Invoice{ID: 1, Status: invoice.StatusPaid}, nil)
		m.repo.EXPECT().UpdateStatus(gomock.Any(), int64(1), invoice.StatusOverdue).Return(nil)

		err := svc.SetStatus(context.Background(), 1, invoice.StatusOverdue)
		require.NoError(t, err)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.SetStatus(context.Background(), 1, invoice.Status("archived"))
		assert.ErrorIs(t, err, invoice.ErrValidation)
	})
}

func TestService_SubmitPayment(t *testing.T) {
	owned := func() *invoice.Invoice {
		return &invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, ClientName: "Acme Corp", Status: invoice.StatusPending}
	}

	t.Run("OwnerSubmits", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(owned(), nil)
		m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR123").Return(nil)
		m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2, Role: user.RoleAdmin}}, nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(2), "Payment Submitted", gomock.Any(), notification.TypePayment, "/admin/invoices").
			Return(nil)

		inv, err := svc.SubmitPayment(context.Background(), 1, 7, "UTR123")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusUnderReview, inv.Status)
		require.NotNil(t, inv.TransactionID)
		assert.Equal(t, "UTR123", *inv.TransactionID)
	})

	t.Run("FansOutToEveryAdmin", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(owned(), nil)
		m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR123").Return(nil)
		m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2}, {ID: 3}, {ID: 4}}, nil)
		m.notifier.EXPECT().Emit(gomock.Any(), int64(2), gomock.Any(), gomock.Any(), notification.TypePayment, "/admin/invoices").Return(nil)
		m.notifier.EXPECT().Emit(gomock.Any(), int64(3), gomock.Any(), gomock.Any(), notification.TypePayment, "/admin/invoices").Return(nil)
		m.notifier.EXPECT().Emit(gomock.Any(), int64(4), gomock.Any(), gomock.Any(), notification.TypePayment, "/admin/invoices").Return(nil)

		_, err := svc.SubmitPayment(context.Background(), 1, 7, "UTR123")
		require.NoError(t, err)
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(owned(), nil)

		_, err := svc.SubmitPayment(context.Background(), 1, 9, "X")
		assert.ErrorIs(t, err, invoice.ErrForbidden)
	})

	t.Run("MissingTransactionID", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.SubmitPayment(context.Background(), 1, 7, "   ")
		assert.ErrorIs(t, err, invoice.ErrValidation)
	})

	t.Run("ResubmitAfterPaidIsAllowed", func(t *testing.T) {
		svc, m := newService(t)

		paid := owned()
		paid.Status = invoice.StatusPaid

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(paid, nil)
		m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR456").Return(nil)
		m.users.EXPECT().ListAdmins(gomock.Any()).Return(nil, nil)

		inv, err := svc.SubmitPayment(context.Background(), 1, 7, "UTR456")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusUnderReview, inv.Status)
	})

	t.Run("NotifierFailureIsSwallowed", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(owned(), nil)
		m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR123").Return(nil)
		m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2}}, nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(2), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("feed down"))

		inv, err := svc.SubmitPayment(context.Background(), 1, 7, "UTR123")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusUnderReview, inv.Status)
	})
}

func TestService_Approve(t *testing.T) {
	txn := "UTR123"

	t.Run("AlwaysYieldsPaid", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			GetInvoice(gomock.Any(), int64(1)).
			Return(&invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, Status: invoice.StatusUnderReview, TransactionID: &txn}, nil)
		m.repo.EXPECT().MarkPaid(gomock.Any(), int64(1)).Return(nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(7), "Payment Confirmed", gomock.Any(), notification.TypeSuccess, "/portal/invoices").
			Return(nil)

		inv, err := svc.Approve(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, inv.Status)
		require.NotNil(t, inv.TransactionID)
		assert.Equal(t, "UTR123", *inv.TransactionID)
	})

	t.Run("ApproveFromPendingIsAllowed", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			GetInvoice(gomock.Any(), int64(1)).
			Return(&invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, Status: invoice.StatusPending}, nil)
		m.repo.EXPECT().MarkPaid(gomock.Any(), int64(1)).Return(nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(7), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		inv, err := svc.Approve(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, inv.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetInvoice(gomock.Any(), int64(99)).Return(nil, invoice.ErrNotFound)

		_, err := svc.Approve(context.Background(), 99)
		assert.ErrorIs(t, err, invoice.ErrNotFound)
	})
}

func TestService_Reject(t *testing.T) {
	txn := "UTR123"

	t.Run("ClearsPaymentAndIncludesReason", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			GetInvoice(gomock.Any(), int64(1)).
			Return(&invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, Status: invoice.StatusUnderReview, TransactionID: &txn}, nil)
		m.repo.EXPECT().ClearPayment(gomock.Any(), int64(1)).Return(nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(7), "Payment Rejected", gomock.Any(), notification.TypeError, "/portal/invoices").
			DoAndReturn(func(_ context.Context, _ int64, _, message string, _ notification.Type, _ string) error {
				assert.Contains(t, message, "wrong amount")
				return nil
			})

		inv, err := svc.Reject(context.Background(), 1, "wrong amount")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, inv.Status)
		assert.Nil(t, inv.TransactionID)
	})

	t.Run("NoReason", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			GetInvoice(gomock.Any(), int64(1)).
			Return(&invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, Status: invoice.StatusUnderReview, TransactionID: &txn}, nil)
		m.repo.EXPECT().ClearPayment(gomock.Any(), int64(1)).Return(nil)
		m.notifier.EXPECT().
			Emit(gomock.Any(), int64(7), gomock.Any(), gomock.Any(), notification.TypeError, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, _, message string, _ notification.Type, _ string) error {
				assert.NotContains(t, message, "Reason:")
				return nil
			})

		inv, err := svc.Reject(context.Background(), 1, "")
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, inv.Status)
	})
}

func TestService_Delete(t *testing.T) {
	svc, m := newService(t)

	m.repo.EXPECT().DeleteInvoice(gomock.Any(), int64(1)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
}

// Full lifecycle: create, pay, reject, pay again, approve.
func TestService_PaymentLifecycle(t *testing.T) {
	svc, m := newService(t)

	inv := &invoice.Invoice{ID: 1, Number: "INV-101", ClientID: 7, ClientName: "Acme Corp", Status: invoice.StatusPending}

	m.repo.EXPECT().GetInvoice(gomock.Any(), int64(1)).Return(inv, nil).AnyTimes()
	m.users.EXPECT().ListAdmins(gomock.Any()).Return([]*user.User{{ID: 2}}, nil).AnyTimes()
	m.notifier.EXPECT().
		Emit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR123").Return(nil)
	got, err := svc.SubmitPayment(context.Background(), 1, 7, "UTR123")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusUnderReview, got.Status)

	m.repo.EXPECT().ClearPayment(gomock.Any(), int64(1)).Return(nil)
	got, err = svc.Reject(context.Background(), 1, "wrong amount")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPending, got.Status)
	assert.Nil(t, got.TransactionID)

	m.repo.EXPECT().SetPayment(gomock.Any(), int64(1), "UTR456").Return(nil)
	got, err = svc.SubmitPayment(context.Background(), 1, 7, "UTR456")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusUnderReview, got.Status)

	m.repo.EXPECT().MarkPaid(gomock.Any(), int64(1)).Return(nil)
	got, err = svc.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, got.Status)
}
