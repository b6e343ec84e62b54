package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/shijin/IDALSCustomerCareAgent/ai/core/llm"
)

// Language tags used for analytics. Detection is a lightweight
// heuristic, good enough for reporting, not a linguistic claim.
const (
	LanguageEnglish  = "english"
	LanguageHinglish = "hinglish"
)

// DetectLanguage tags the query for analytics and normalization.
// Any non-ASCII rune marks the text as hinglish.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return LanguageHinglish
		}
	}
	return LanguageEnglish
}

// phraseShortcuts maps common Hinglish course questions straight to
// their English search form, skipping the translation call. The keys
// are romanized, so they match pure-ASCII queries that DetectLanguage
// tags as english.
var phraseShortcuts = map[string]string{
	"kya sikh":        "What will I learn in this course?",
	"kya seekh":       "What will I learn in this course?",
	"kya milega":      "What will I learn in this course?",
	"kuch milega":     "What will I learn in this course?",
	"course mein kya": "What will I learn in this course?",
}

// ShortcutQuery returns the English search form for a query containing
// a known romanized phrase, regardless of the query's language tag.
func ShortcutQuery(query string) (string, bool) {
	lower := strings.ToLower(query)
	for phrase, english := range phraseShortcuts {
		if strings.Contains(lower, phrase) {
			return english, true
		}
	}
	return "", false
}

const translatePrompt = `Convert the following question into clear English.
Do NOT add new meaning. Keep it factual.

Question:
%s`

// Normalizer converts Hindi/Hinglish queries into English proxies for
// FAQ search. Translation is best-effort only: any failure passes the
// original query through unchanged.
type Normalizer struct {
	llmService llm.Service
}

// NewNormalizer creates a language normalizer. A nil LLM service is
// allowed; the normalizer then applies only the phrase shortcuts.
func NewNormalizer(llmService llm.Service) *Normalizer {
	return &Normalizer{llmService: llmService}
}

// ToEnglish produces an English search query for non-English input.
// The result is used only for retrieval; synthesis always sees the
// user's original words.
func (n *Normalizer) ToEnglish(ctx context.Context, query string) string {
	if english, ok := ShortcutQuery(query); ok {
		return english
	}

	if n.llmService == nil {
		return query
	}

	translated, _, err := n.llmService.Chat(ctx, []llm.Message{
		llm.UserMessage(fmt.Sprintf(translatePrompt, query)),
	})
	if err != nil {
		slog.Warn("query translation failed, using original", "error", err)
		return query
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return query
	}
	return translated
}
