// Package detect guesses the language of short, informal messages.
package detect

import (
	"strings"
	"unicode/utf8"
)

// Unknown is reported when no usable language code could be determined.
const Unknown = "unknown"

// Detector returns a best-guess language code for text.
// Implementations never fail: an undecidable input yields a fallback code or "".
type Detector interface {
	Detect(text string) string
}

// Engine names
const (
	EngineLingua  = "lingua"
	EngineKeyword = "keyword"
)

// New builds the detector for engine. The statistical engine delegates to the
// keyword heuristic whenever it cannot decide.
func New(engine string, lowAccuracy bool) Detector {
	keyword := NewKeywordDetector()
	if engine == EngineKeyword {
		return keyword
	}
	return NewLinguaDetector(lowAccuracy, keyword)
}

// NameOf returns the engine name of d for logs and metrics.
func NameOf(d Detector) string {
	if n, ok := d.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}

// NormalizeCode lowercases code and truncates it to two characters.
// Codes shorter than two characters are returned as "".
func NormalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if utf8.RuneCountInString(code) < 2 {
		return ""
	}
	return string([]rune(code)[:2])
}
