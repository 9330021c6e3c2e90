package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"relay/backend/internal/logger"
	"relay/backend/internal/metrics"
	"relay/backend/internal/model"
	"relay/backend/internal/repository"
)

const (
	// responseLimit is how many of the newest messages a response covers.
	responseLimit = 1
	// maxConcurrentTranslations bounds provider calls within one response.
	maxConcurrentTranslations = 4
	// DefaultStoreTimeout bounds a single store call.
	DefaultStoreTimeout = 10 * time.Second
)

type MessageService interface {
	// Receive stores body as a new message.
	Receive(ctx context.Context, body string) (model.Message, error)
	// Respond translates the newest messages.
	Respond(ctx context.Context) ([]model.TranslationResult, error)
	// Ping checks the store.
	Ping(ctx context.Context) error
}

type messageService struct {
	messages     repository.MessageRepository
	pipeline     *Pipeline
	storeTimeout time.Duration
}

func NewMessageService(messages repository.MessageRepository, pipeline *Pipeline, storeTimeout time.Duration) MessageService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &messageService{messages: messages, pipeline: pipeline, storeTimeout: storeTimeout}
}

func (s *messageService) Receive(ctx context.Context, body string) (model.Message, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		logger.Warn("message rejected", "module", "service", "action", "create", "resource", "message", "result", "failed", "error", ErrEmptyInput)
		return model.Message{}, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	msg, err := s.messages.Create(ctx, text)
	if err != nil {
		metrics.RecordStore(false)
		logger.Error("message store failed", "module", "service", "action", "create", "resource", "message", "result", "failed", "error", err)
		return model.Message{}, &StoreFailure{Op: "create", Err: err}
	}
	metrics.RecordStore(true)
	logger.Info("message stored", "module", "service", "action", "create", "resource", "message", "result", "ok", "message_id", msg.ID, "preview", logger.Preview(text, 50))
	return msg, nil
}

func (s *messageService) Respond(ctx context.Context) ([]model.TranslationResult, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	messages, err := s.messages.Latest(storeCtx, responseLimit)
	cancel()
	if err != nil {
		logger.Error("message fetch failed", "module", "service", "action", "fetch", "resource", "message", "result", "failed", "error", err)
		return nil, &StoreFailure{Op: "latest", Err: err}
	}

	if len(messages) == 0 {
		logger.Info("no messages found", "module", "service", "action", "fetch", "resource", "message", "result", "ok")
		return []model.TranslationResult{{Response: MsgNoMessagesFound, OriginalLanguage: UnknownLanguage}}, nil
	}

	results := make([]model.TranslationResult, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTranslations)
	for i, msg := range messages {
		g.Go(func() error {
			results[i] = s.translate(gctx, msg)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// translate converts one stored message into a result. Failures are folded into the
// result text so the remaining messages are still answered.
func (s *messageService) translate(ctx context.Context, msg model.Message) model.TranslationResult {
	if strings.TrimSpace(msg.Text) == "" {
		logger.Warn("empty message retrieved", "module", "service", "action", "fetch", "resource", "message", "result", "failed", "message_id", msg.ID)
		return model.TranslationResult{Response: MsgEmptyMessage, OriginalLanguage: UnknownLanguage}
	}

	result, err := s.pipeline.Process(ctx, msg.Text)
	if err != nil {
		var translateErr *TranslationError
		if errors.As(err, &translateErr) {
			result.Response = TranslationFailedTag + msg.Text
		}
	}
	return result
}

func (s *messageService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.messages.Ping(ctx); err != nil {
		return &StoreFailure{Op: "ping", Err: err}
	}
	return nil
}
