// Package translate holds the translation provider clients.
package translate

//go:generate mockgen -source=provider.go -destination=mock/provider.go -package=mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider translates text between two ISO 639-1 codes.
type Provider interface {
	// Name returns the provider name.
	Name() string
	// Translate returns text translated from source to target.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Config holds the configuration for a translation provider.
type Config struct {
	Provider string // mymemory, openai, anthropic, google
	APIKey   string
	BaseURL  string // optional for every provider
	Email    string // mymemory only, raises the free quota
	Model    string // required for openai and anthropic
	Timeout  time.Duration
}

// ProviderType constants
const (
	ProviderMyMemory  = "mymemory"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
	ErrMissingModel    = errors.New("model is required")
	ErrEmptyResult     = errors.New("provider returned an empty translation")
)

// StatusError reports a non-success answer from a provider.
type StatusError struct {
	Provider string
	Status   int
	Details  string
}

func (e *StatusError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Details)
}

// NewProvider creates a translation provider based on the config. client is used by
// the providers that speak plain HTTP; the Google client manages its own transport.
func NewProvider(ctx context.Context, cfg Config, client *http.Client) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderMyMemory:
		return NewMyMemoryProvider(cfg.BaseURL, cfg.APIKey, cfg.Email, client), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		if cfg.Model == "" {
			return nil, ErrMissingModel
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		if cfg.Model == "" {
			return nil, ErrMissingModel
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, client), nil
	case ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGoogleProvider(ctx, cfg.APIKey, cfg.BaseURL)
	default:
		return nil, ErrInvalidProvider
	}
}
