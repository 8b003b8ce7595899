package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/webnexa/studio-api/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, invoice_number, client_id, client_name, total_amount, status, due_date, transaction_id, created_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var transactionID sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.ClientID, &inv.ClientName, &inv.TotalAmount,
		&statusStr, &inv.DueDate, &transactionID, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)

	if transactionID.Valid {
		inv.TransactionID = &transactionID.String
	}

	return &inv, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateInvoice inserts the header and all items in one transaction so a
// failure cannot leave a partially written invoice.
func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (invoice_number, client_id, client_name, total_amount, status, due_date, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.Number, inv.ClientID, inv.ClientName, inv.TotalAmount, inv.Status, inv.DueDate,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return invoice.ErrDuplicateNumber
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoice_items (invoice_id, description, quantity, rate, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID

		err := dbTx.QueryRowContext(ctx, query,
			inv.ID, item.Description, item.Quantity, item.Rate, item.Amount,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("creating invoice item: %w", err)
		}
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.loadItems(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) loadItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		SELECT id, invoice_id, description, quantity, rate, amount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, inv.ID)
	if err != nil {
		return fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item invoice.Item

		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.Rate, &item.Amount); err != nil {
			return fmt.Errorf("scanning invoice item: %w", err)
		}

		inv.Items = append(inv.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating invoice item rows: %w", err)
	}

	return nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices ORDER BY created_at DESC, id DESC`

	return s.listInvoices(ctx, query)
}

func (s *Store) ListInvoicesByClient(ctx context.Context, clientID int64) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE client_id = $1 ORDER BY created_at DESC, id DESC`

	return s.listInvoices(ctx, query, clientID)
}

func (s *Store) listInvoices(ctx context.Context, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	for _, inv := range invoices {
		if err := s.loadItems(ctx, inv); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

// ReplaceInvoice overwrites the header and replaces the full item set in
// one transaction. Items are not diffed; callers send the complete list.
func (s *Store) ReplaceInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE invoices
		SET invoice_number = $1, client_name = $2, total_amount = $3, status = $4, due_date = $5
		WHERE id = $6
	`

	res, err := dbTx.ExecContext(ctx, query,
		inv.Number, inv.ClientName, inv.TotalAmount, inv.Status, inv.DueDate, inv.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return invoice.ErrDuplicateNumber
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice update: %w", err)
	}

	return nil
}

func (s *Store) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status invoice.Status) error {
	return s.updateOne(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, status, id)
}

func (s *Store) SetPayment(ctx context.Context, id int64, transactionID string) error {
	query := `UPDATE invoices SET status = $1, transaction_id = $2 WHERE id = $3`

	return s.updateOne(ctx, query, invoice.StatusUnderReview, transactionID, id)
}

func (s *Store) MarkPaid(ctx context.Context, id int64) error {
	// The transaction reference is retained as the payment record.
	return s.updateOne(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, invoice.StatusPaid, id)
}

func (s *Store) ClearPayment(ctx context.Context, id int64) error {
	query := `UPDATE invoices SET status = $1, transaction_id = NULL WHERE id = $2`

	return s.updateOne(ctx, query, invoice.StatusPending, id)
}

// DeleteInvoice removes the header; items go with it via the FK cascade.
func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	return nil
}
