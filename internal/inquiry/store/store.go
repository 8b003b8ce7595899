package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/webnexa/studio-api/internal/inquiry"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateInquiry(ctx context.Context, inq *inquiry.Inquiry) error {
	query := `
		INSERT INTO inquiries (name, email, phone, service, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inq.Name, inq.Email, inq.Phone, inq.Service, inq.Message, inq.Status,
	).Scan(&inq.ID, &inq.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating inquiry: %w", err)
	}

	return nil
}

func (s *Store) ListInquiries(ctx context.Context) ([]*inquiry.Inquiry, error) {
	query := `
		SELECT id, name, email, phone, service, message, status, created_at
		FROM inquiries
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []*inquiry.Inquiry

	for rows.Next() {
		var inq inquiry.Inquiry

		var statusStr string

		if err := rows.Scan(&inq.ID, &inq.Name, &inq.Email, &inq.Phone, &inq.Service, &inq.Message, &statusStr, &inq.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning inquiry: %w", err)
		}

		inq.Status = inquiry.Status(statusStr)

		inquiries = append(inquiries, &inq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inquiry rows: %w", err)
	}

	return inquiries, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status inquiry.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE inquiries SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating inquiry status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}

	if affected == 0 {
		return inquiry.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteInquiry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting inquiry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}

	if affected == 0 {
		return inquiry.ErrNotFound
	}

	return nil
}
