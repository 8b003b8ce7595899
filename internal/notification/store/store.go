package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/webnexa/studio-api/internal/notification"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type, link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Message, n.Type, n.Link).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, link, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification

	for rows.Next() {
		var n notification.Notification

		var typeStr string

		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typeStr, &n.Link, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}

		n.Type = notification.Type(typeStr)

		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}

	return notifications, nil
}

// MarkRead is scoped to the owning user. Updating an already-read row still
// counts as a match, so repeat calls stay no-op successes.
func (s *Store) MarkRead(ctx context.Context, userID, id int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking marked rows: %w", err)
	}

	if affected == 0 {
		return notification.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteAll(ctx context.Context, userID int64) error {
	query := `DELETE FROM notifications WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	return nil
}
