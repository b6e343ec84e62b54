package agent

import (
	"strings"
	"testing"

	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
)

func TestFormatFAQAnswer(t *testing.T) {
	raw := "Q: What will I learn?\n" +
		"A: The course covers several tools.\n" +
		"Excel for data handling\n" +
		"SQL for querying\n" +
		"Python for analysis\n" +
		"Power BI for dashboards\n"

	got := FormatFAQAnswer(raw, routing.IntentLearningExperience)

	if !strings.HasPrefix(got, "Here's what you'll learn in the IDALS program:") {
		t.Errorf("intro missing: %q", got)
	}
	if strings.Contains(got, "Q:") || strings.Contains(got, "A:") {
		t.Error("Q/A framing must be stripped")
	}
	if n := strings.Count(got, "• "); n != 3 {
		t.Errorf("bullet count = %d, want 3", n)
	}
	if strings.Contains(got, "Power BI") {
		t.Error("points beyond the third should be dropped")
	}
}

func TestFormatFAQAnswerIntros(t *testing.T) {
	tests := []struct {
		intent routing.Intent
		intro  string
	}{
		{routing.IntentProgramInfo, "Here's how the IDALS program works:"},
		{routing.IntentFeesEnrollment, "Here are the enrollment and fee details:"},
		{routing.IntentOutOfScope, "Here's what we found in the IDALS program details:"},
	}
	for _, tt := range tests {
		got := FormatFAQAnswer("some detail line", tt.intent)
		if !strings.HasPrefix(got, tt.intro) {
			t.Errorf("intent %s: got %q", tt.intent, got)
		}
	}
}

func TestFormatFAQAnswerEmpty(t *testing.T) {
	for _, raw := range []string{"", "  \n ", "Q: only\nA: framing"} {
		if got := FormatFAQAnswer(raw, routing.IntentProgramInfo); got != NoMatchResponse {
			t.Errorf("FormatFAQAnswer(%q) = %q, want no-match reply", raw, got)
		}
	}
}
