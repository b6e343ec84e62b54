package agent

import (
	"strings"

	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
)

// FormatFAQAnswer converts raw FAQ passage text into a conversational
// bullet answer without a model call. Used as the degraded-mode
// fallback when the synthesis LLM is unavailable.
func FormatFAQAnswer(raw string, intent routing.Intent) string {
	if strings.TrimSpace(raw) == "" {
		return NoMatchResponse
	}

	var points []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•"))
		if line == "" {
			continue
		}
		if strings.Contains(line, "Q:") || strings.Contains(line, "A:") {
			continue
		}
		points = append(points, line)
		if len(points) == 3 {
			break
		}
	}
	if len(points) == 0 {
		return NoMatchResponse
	}

	var intro string
	switch intent {
	case routing.IntentLearningExperience:
		intro = "Here's what you'll learn in the IDALS program:"
	case routing.IntentProgramInfo:
		intro = "Here's how the IDALS program works:"
	case routing.IntentFeesEnrollment:
		intro = "Here are the enrollment and fee details:"
	default:
		intro = "Here's what we found in the IDALS program details:"
	}

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	for i, point := range points {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(point)
	}
	return b.String()
}
