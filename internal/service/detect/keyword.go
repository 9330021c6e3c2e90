package detect

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Common function words. German is checked first so mixed text leans German.
var (
	germanIndicators  = wordSet("ich", "und", "nicht", "ist", "das", "der", "ein", "eine", "bin", "sehr", "mit", "auf", "auch", "wir", "sie")
	englishIndicators = wordSet("the", "and", "is", "are", "you", "not", "this", "that", "with", "have", "i", "am")
)

// KeywordDetector matches text against small sets of German and English function words.
type KeywordDetector struct{}

func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{}
}

func (d *KeywordDetector) Name() string {
	return EngineKeyword
}

// Detect returns "de" when any German indicator is present, "en" when any English
// indicator is present, and "de" otherwise.
func (d *KeywordDetector) Detect(text string) string {
	words := Words(text)
	if containsAny(words, germanIndicators) {
		return "de"
	}
	if containsAny(words, englishIndicators) {
		return "en"
	}
	return "de"
}

// HasGermanIndicator reports whether text contains a common German function word.
func HasGermanIndicator(text string) bool {
	return containsAny(Words(text), germanIndicators)
}

// Words splits text into NFC-normalized lowercase words.
func Words(text string) []string {
	// A Caser is stateful and must not be shared between goroutines.
	text = cases.Lower(language.Und).String(norm.NFC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func containsAny(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
