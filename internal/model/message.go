package model

import "time"

// Message is a stored inbound message. Records are never updated or deleted.
type Message struct {
	ID        int64
	Text      string
	CreatedAt time.Time
}

// TranslationResult is the per-message payload of the response endpoint.
type TranslationResult struct {
	Response         string `json:"response"`
	OriginalLanguage string `json:"original_language"`
}
