package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/core/llm"
	"github.com/shijin/IDALSCustomerCareAgent/ai/knowledge"
)

// snippetSourceTag marks retrieved passages as authoritative program
// content inside the synthesis prompt.
const snippetSourceTag = "IDALS Official Info:"

// synthesisPromptFormat embeds the domain framing, the retrieved
// passages verbatim, and the user's original query. Groundedness is
// enforced at the prompt level; the rules here are business
// requirements, not style preferences.
const synthesisPromptFormat = `You are an IDALS customer support agent for an Indian based dance education platform.

Important Context:
- All fees mentioned are in Indian Rupees (INR / ₹)
- Do NOT convert fees to dollars
- Always mention ₹ when talking about price or fees

CRITICAL RULES (NON-NEGOTIABLE):
- Answer ONLY using the provided IDALS information
- Do NOT invent offers, discounts, promotions, or guarantees
- If discounts are not explicitly mentioned, clearly say:
  "IDALS does not offer any discounts on the current fee structure."
- NEVER speculate or suggest future offers
- NEVER add examples that are not in the source
- There are no installment options for fees payment
- For any new batch related questions, the user should be directed to our calling number or email
- All course details needs to be shared when asked on course or program details
- While responding about certification, please mention about registered company and ISO certified company as well

Answer the user's question clearly and conversationally,
using ONLY the information provided below.

Rules:
- Do NOT mention FAQ, sources, or internal notes
- Do NOT repeat the question
- Do NOT include Q/A formatting
- Give a direct, friendly answer
- Use simple bullet points if helpful (max 4)

User question:
%s

IDALS program information:
%s`

// Synthesizer produces the final grounded answer from retrieved
// passages with a single model call.
type Synthesizer struct {
	llmService llm.Service
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(llmService llm.Service) *Synthesizer {
	return &Synthesizer{llmService: llmService}
}

// Synthesize builds the grounded prompt and returns the stripped model
// reply. Callers must never invoke it with an empty retrieval result;
// the router's no-match bypass handles that case.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, snippets []knowledge.Snippet) (string, error) {
	if len(snippets) == 0 {
		return "", errors.New("synthesize called with empty retrieval result")
	}

	prompt := fmt.Sprintf(synthesisPromptFormat, query, formatSnippets(snippets))
	content, _, err := s.llmService.Chat(ctx, []llm.Message{llm.UserMessage(prompt)})
	if err != nil {
		return "", errors.Wrap(err, "answer synthesis call failed")
	}
	return strings.TrimSpace(content), nil
}

func formatSnippets(snippets []knowledge.Snippet) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = snippetSourceTag + "\n" + s.Content
	}
	return strings.Join(parts, "\n\n")
}
