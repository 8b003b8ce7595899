package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/webnexa/studio-api/internal/ticket"
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

func scanTicket(s scanner) (*ticket.Ticket, error) {
	var t ticket.Ticket

	var statusStr string

	if err := s.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &statusStr, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Status = ticket.Status(statusStr)

	return &t, nil
}

const selectTicketColumns = `id, user_id, subject, message, status, created_at`

func (s *Store) CreateTicket(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, t.UserID, t.Subject, t.Message, t.Status).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating ticket: %w", err)
	}

	return nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*ticket.Ticket, error) {
	query := `SELECT ` + selectTicketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ticket.ErrNotFound
		}

		return nil, fmt.Errorf("getting ticket: %w", err)
	}

	if err := s.loadReplies(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Store) loadReplies(ctx context.Context, t *ticket.Ticket) error {
	query := `
		SELECT id, ticket_id, user_id, message, created_at
		FROM ticket_replies
		WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("listing ticket replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r ticket.Reply

		if err := rows.Scan(&r.ID, &r.TicketID, &r.UserID, &r.Message, &r.CreatedAt); err != nil {
			return fmt.Errorf("scanning ticket reply: %w", err)
		}

		t.Replies = append(t.Replies, r)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating ticket reply rows: %w", err)
	}

	return nil
}

func (s *Store) ListTickets(ctx context.Context) ([]*ticket.Ticket, error) {
	query := `SELECT ` + selectTicketColumns + ` FROM tickets ORDER BY created_at DESC, id DESC`

	return s.listTickets(ctx, query)
}

func (s *Store) ListTicketsByUser(ctx context.Context, userID int64) ([]*ticket.Ticket, error) {
	query := `SELECT ` + selectTicketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	return s.listTickets(ctx, query, userID)
}

func (s *Store) listTickets(ctx context.Context, query string, args ...any) ([]*ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*ticket.Ticket

	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}

		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ticket rows: %w", err)
	}

	return tickets, nil
}

func (s *Store) CreateReply(ctx context.Context, r *ticket.Reply) error {
	query := `
		INSERT INTO ticket_replies (ticket_id, user_id, message, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, r.TicketID, r.UserID, r.Message).
		Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating ticket reply: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status ticket.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tickets SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating ticket status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}

	if affected == 0 {
		return ticket.ErrNotFound
	}

	return nil
}
