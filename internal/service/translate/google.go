package translate

import (
	"context"
	"fmt"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider with the Cloud Translation v2 API.
type GoogleProvider struct {
	client *gtranslate.Client
}

// NewGoogleProvider creates the Cloud Translation client once; call Close on shutdown.
func NewGoogleProvider(ctx context.Context, apiKey, baseURL string) (*GoogleProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}

	client, err := gtranslate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create google translate client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	targetTag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language: %w", err)
	}
	sourceTag, err := language.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid source language: %w", err)
	}

	translations, err := p.client.Translate(ctx, []string{text}, targetTag, &gtranslate.Options{
		Source: sourceTag,
		Format: gtranslate.Text,
	})
	if err != nil {
		return "", err
	}
	if len(translations) == 0 || translations[0].Text == "" {
		return "", ErrEmptyResult
	}
	return translations[0].Text, nil
}

// Close releases the underlying client.
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}
