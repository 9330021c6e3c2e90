package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"relay/backend/internal/model"
)

type postgresMessageRepository struct {
	db    *sql.DB
	table string
}

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresMessageRepository reads and writes the same messages table the hosted REST
// backend exposes, directly over the Postgres protocol. The table must have a
// message column and a created_at column defaulting to now().
func NewPostgresMessageRepository(db *sql.DB, table string) MessageRepository {
	return &postgresMessageRepository{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *postgresMessageRepository) Create(ctx context.Context, text string) (model.Message, error) {
	query := `INSERT INTO ` + r.table + ` (message) VALUES ($1) RETURNING id, message, created_at`

	var m model.Message
	if err := r.db.QueryRowContext(ctx, query, text).Scan(&m.ID, &m.Text, &m.CreatedAt); err != nil {
		return model.Message{}, err
	}
	return m, nil
}

func (r *postgresMessageRepository) Latest(ctx context.Context, limit int) ([]model.Message, error) {
	query := `SELECT id, message, created_at FROM ` + r.table + ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *postgresMessageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
