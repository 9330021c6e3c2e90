package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput       = errors.New("empty input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDetection        = errors.New("language detection failed")
	ErrTranslation      = errors.New("translation failed")
)

// Fixed response texts.
const (
	MsgNoMessageProvided = "No message provided"
	MsgStored            = "Message stored"
	MsgNoMessagesFound   = "No messages found"
	MsgEmptyMessage      = "Empty message"
	TranslationFailedTag = "[Translation failed] "
	UnknownLanguage      = "unknown"
)

// StoreFailure is returned when the message store rejects or cannot serve a request.
// Its message is the store's own error text.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string {
	if e.Err == nil {
		return ErrStoreUnavailable.Error()
	}
	return e.Err.Error()
}

func (e *StoreFailure) Unwrap() error {
	return e.Err
}

func (e *StoreFailure) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// TranslationError is returned when the provider call for one message fails.
type TranslationError struct {
	Provider string
	Source   string
	Target   string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s->%s via %s: %v", e.Source, e.Target, e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslation
}
