package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"relay/backend/internal/model"
	"relay/backend/internal/snowflake"
)

type redisMessageRepository struct {
	rdb *redis.Client
	key string
}

type redisRecord struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisClient creates a client and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisMessageRepository keeps messages as JSON records on a list, newest at the head.
func NewRedisMessageRepository(rdb *redis.Client, key string) MessageRepository {
	return &redisMessageRepository{rdb: rdb, key: key}
}

func (r *redisMessageRepository) Create(ctx context.Context, text string) (model.Message, error) {
	rec := redisRecord{
		ID:        snowflake.NextID(),
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return model.Message{}, err
	}
	if err := r.rdb.LPush(ctx, r.key, data).Err(); err != nil {
		return model.Message{}, err
	}
	return model.Message{ID: rec.ID, Text: rec.Message, CreatedAt: rec.CreatedAt}, nil
}

func (r *redisMessageRepository) Latest(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	items, err := r.rdb.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(items))
	for _, item := range items {
		var rec redisRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, model.Message{ID: rec.ID, Text: rec.Message, CreatedAt: rec.CreatedAt})
	}
	return messages, nil
}

func (r *redisMessageRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
