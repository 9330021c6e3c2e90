package repository

//go:generate mockgen -source=message_repository.go -destination=mock/message_repository.go -package=mock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"relay/backend/internal/model"
	"relay/backend/internal/snowflake"
)

// timeLayout is fixed-width so that created_at sorts lexically in sqlite.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MessageRepository defines the interface for message storage.
type MessageRepository interface {
	// Create stores a new message and returns the stored record.
	Create(ctx context.Context, text string) (model.Message, error)
	// Latest returns up to limit messages, newest first.
	Latest(ctx context.Context, limit int) ([]model.Message, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// StoreError is returned when a remote store answers with a non-success status.
// Body holds the store's response text verbatim.
type StoreError struct {
	Status int
	Body   string
}

func (e *StoreError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("store returned status %d", e.Status)
	}
	return e.Body
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a message repository backed by the local sqlite database.
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, text string) (model.Message, error) {
	msg := model.Message{
		ID:        snowflake.NextID(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, message, created_at) VALUES (?, ?, ?)
	`, msg.ID, msg.Text, msg.CreatedAt.Format(timeLayout))
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

func (r *messageRepository) Latest(ctx context.Context, limit int) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message, created_at FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Text, &createdAt); err != nil {
			return nil, err
		}
		t, _ := time.Parse(timeLayout, createdAt)
		m.CreatedAt = t
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
