package routing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/core/llm"
)

// ErrUnrecognizedIntent is returned when the model reply cannot be
// parsed into one of the closed intent labels. Callers recover by
// treating the query as OUT_OF_SCOPE.
var ErrUnrecognizedIntent = errors.New("unrecognized intent label")

// intentSystemPrompt is the fixed classification instruction. The model
// must answer with exactly one label.
const intentSystemPrompt = `You are an intent classifier for the IDALS Customer Care Agent.

Classify the user's question into ONE of the following intents:

1. PROGRAM_INFO
   - course structure
   - duration
   - certification
   - instructors
   - schedule

2. FEES_ENROLLMENT
   - fees
   - payment
   - enrollment
   - registration

3. LEARNING_EXPERIENCE
   - recorded or live classes
   - doubt clearing
   - feedback
   - practice
   - YouTube content

4. OUT_OF_SCOPE
   - refunds (if not mentioned)
   - guarantees
   - legal / policy questions
   - anything not clearly in FAQ

Respond with ONLY the intent name.`

// LLMClassifier classifies queries with a single model call.
// Each call is independent; the classifier keeps no history.
type LLMClassifier struct {
	llmService llm.Service
}

// NewLLMClassifier creates a new LLM-backed intent classifier.
func NewLLMClassifier(llmService llm.Service) *LLMClassifier {
	return &LLMClassifier{llmService: llmService}
}

// Classify sends the query with the fixed instruction and parses the
// single-line reply into an intent. A model transport failure
// propagates; a malformed label returns ErrUnrecognizedIntent.
func (c *LLMClassifier) Classify(ctx context.Context, query string) (Intent, error) {
	start := time.Now()

	content, _, err := c.llmService.Chat(ctx, []llm.Message{
		llm.SystemPrompt(intentSystemPrompt),
		llm.UserMessage(query),
	})
	if err != nil {
		return "", errors.Wrap(err, "intent classification call failed")
	}

	intent, err := ParseIntentLabel(content)
	if err != nil {
		slog.Warn("intent label not parseable",
			"reply", truncate(content, 50),
			"latency_ms", time.Since(start).Milliseconds())
		return "", err
	}

	slog.Debug("intent classified",
		"query", truncate(query, 50),
		"intent", intent,
		"latency_ms", time.Since(start).Milliseconds())
	return intent, nil
}

// ParseIntentLabel extracts one of the four closed labels from a model
// reply. The reply must consist of exactly one label, tolerating only
// surrounding whitespace and case differences.
func ParseIntentLabel(reply string) (Intent, error) {
	label := strings.ToUpper(strings.TrimSpace(reply))
	switch Intent(label) {
	case IntentProgramInfo, IntentFeesEnrollment, IntentLearningExperience, IntentOutOfScope:
		return Intent(label), nil
	default:
		return "", errors.Wrapf(ErrUnrecognizedIntent, "got %q", truncate(reply, 80))
	}
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
