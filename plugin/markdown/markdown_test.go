package markdown

import (
	"strings"
	"testing"
)

func TestToPlainText(t *testing.T) {
	s := NewService()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "plain text unchanged",
			source: "The fee is INR 49999.",
			want:   "The fee is INR 49999.",
		},
		{
			name:   "bold stripped",
			source: "📞 **WhatsApp / Phone:** +91 9136249295",
			want:   "📞 WhatsApp / Phone: +91 9136249295",
		},
		{
			name:   "list items prefixed",
			source: "Modules:\n\n- Excel\n- SQL\n- Python",
			want:   "Modules:\n- Excel\n- SQL\n- Python",
		},
		{
			name:   "empty input",
			source: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ToPlainText(tt.source); got != tt.want {
				t.Errorf("ToPlainText(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestToPlainTextEscalationTemplate(t *testing.T) {
	s := NewService()
	source := "I'd be happy to connect you with our team.\n\n" +
		"📞 **WhatsApp / Phone:** +91 9136249295\n" +
		"📧 **Email:** connect@theidals.com"

	got := s.ToPlainText(source)
	if strings.Contains(got, "**") {
		t.Errorf("markdown emphasis left in plain text: %q", got)
	}
	for _, want := range []string{"+91 9136249295", "connect@theidals.com"} {
		if !strings.Contains(got, want) {
			t.Errorf("plain text lost %q: %q", want, got)
		}
	}
}
