package detect

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"relay/backend/internal/logger"
)

// LinguaDetector is the statistical detector. Models are loaded lazily on first use.
type LinguaDetector struct {
	detector lingua.LanguageDetector
	fallback Detector
}

// languages bounds what lingua may report. Short informal text scored against every
// language lingua knows tends to land on a small one (Afrikaans, Latin), which then
// becomes the source language of the translation request.
var languages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Polish,
	lingua.Swedish,
	lingua.Danish,
	lingua.Russian,
	lingua.Ukrainian,
	lingua.Turkish,
	lingua.Arabic,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.Somali,
}

// NewLinguaDetector builds a detector over the languages above.
// fallback answers when lingua cannot decide or fails; it may be nil.
func NewLinguaDetector(lowAccuracy bool, fallback Detector) *LinguaDetector {
	builder := lingua.NewLanguageDetectorBuilder().FromLanguages(languages...)
	if lowAccuracy {
		builder = builder.WithLowAccuracyMode()
	}
	return &LinguaDetector{detector: builder.Build(), fallback: fallback}
}

func (d *LinguaDetector) Name() string {
	return EngineLingua
}

func (d *LinguaDetector) Detect(text string) (code string) {
	if text == "" {
		return d.fallbackDetect(text)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("language detection failed", "module", "detect", "action", "detect", "resource", "language", "result", "failed", "detector", EngineLingua, "error", r)
			code = d.fallbackDetect(text)
		}
	}()

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return d.fallbackDetect(text)
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func (d *LinguaDetector) fallbackDetect(text string) string {
	if d.fallback == nil {
		return ""
	}
	return d.fallback.Detect(text)
}
