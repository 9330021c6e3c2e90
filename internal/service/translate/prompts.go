package translate

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const translatePromptTemplate = `You are a translation engine.
Translate the user's message from %s to %s.
Reply with the translation only: no quotes, notes, or explanations.
Keep emoji, names, and URLs unchanged.`

// GetTranslatePrompt returns the system prompt for LLM-backed translation.
func GetTranslatePrompt(source, target string) string {
	return fmt.Sprintf(translatePromptTemplate, languageName(source), languageName(target))
}

// languageName returns the English name for an ISO code, or the code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
