package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"relay/backend/internal/logger"
	"relay/backend/internal/metrics"
	"relay/backend/internal/model"
	"relay/backend/internal/service/detect"
	"relay/backend/internal/service/translate"
)

// DefaultTranslateTimeout bounds a single provider call.
const DefaultTranslateTimeout = 10 * time.Second

// Pipeline detects the language of a message and translates it into a fixed target.
// It never fails outright: every step degrades to the original text.
type Pipeline struct {
	detector     detect.Detector
	detectorName string
	overrides    detect.Overrides
	provider     translate.Provider
	target       string
	timeout      time.Duration
}

func NewPipeline(detector detect.Detector, overrides detect.Overrides, provider translate.Provider, target string, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTranslateTimeout
	}
	normalized := detect.NormalizeCode(target)
	if normalized == "" {
		normalized = "en"
	}
	return &Pipeline{
		detector:     detector,
		detectorName: detect.NameOf(detector),
		overrides:    overrides,
		provider:     provider,
		target:       normalized,
		timeout:      timeout,
	}
}

// Target returns the normalized target language.
func (p *Pipeline) Target() string {
	return p.target
}

// Detect returns the two-letter source language of text after overrides, or "unknown".
func (p *Pipeline) Detect(text string) string {
	raw := p.detector.Detect(text)
	code, row := p.overrides.Apply(text, detect.NormalizeCode(raw))
	if row != nil {
		metrics.RecordOverride(row.Rule)
		logger.Debug("detection overridden", "module", "service", "action", "detect", "resource", "language", "result", "ok", "rule", row.Rule, "detected", raw, "language", code)
	}
	if code == "" {
		logger.Warn("detection undecided", "module", "service", "action", "detect", "resource", "language", "result", "failed", "detector", p.detectorName, "detected", raw, "error", ErrDetection)
		code = UnknownLanguage
	}
	metrics.RecordDetection(p.detectorName, code)
	return code
}

// Process returns the translation of text and its source language. On a provider
// failure the original text is returned together with a *TranslationError.
func (p *Pipeline) Process(ctx context.Context, text string) (model.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return model.TranslationResult{Response: text, OriginalLanguage: UnknownLanguage}, nil
	}

	source := p.Detect(text)
	result := model.TranslationResult{Response: text, OriginalLanguage: source}
	if source == UnknownLanguage || source == p.target {
		metrics.RecordTranslation(p.provider.Name(), metrics.ResultSkipped, 0)
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	translated, err := p.provider.Translate(ctx, text, source, p.target)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordTranslation(p.provider.Name(), metrics.ResultError, duration)
		timedOut := errors.Is(err, context.DeadlineExceeded)
		logger.Warn("translation failed", "module", "service", "action", "translate", "resource", "message", "result", "failed", "provider", p.provider.Name(), "language", source, "timeout", timedOut, "duration_ms", duration.Milliseconds(), "error", err)
		return result, &TranslationError{Provider: p.provider.Name(), Source: source, Target: p.target, Err: err}
	}

	metrics.RecordTranslation(p.provider.Name(), metrics.ResultOK, duration)
	logger.Debug("translation done", "module", "service", "action", "translate", "resource", "message", "result", "ok", "provider", p.provider.Name(), "language", source, "duration_ms", duration.Milliseconds())
	result.Response = translated
	return result, nil
}
