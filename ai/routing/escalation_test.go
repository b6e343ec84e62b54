package routing

import "testing"

func TestWantsHumanHelp(t *testing.T) {
	detector := NewEscalationDetector(DetectorConfig{})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"explicit human request", "I want to talk to a human", true},
		{"case insensitive", "Please CALL me back", true},
		{"substring match", "whatsapp number please", true},
		{"contact keyword", "how do I contact the team", true},
		{"plain program question", "what is the course duration", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.WantsHumanHelp(tt.text); got != tt.want {
				t.Errorf("WantsHumanHelp(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveQuery(t *testing.T) {
	detector := NewEscalationDetector(DetectorConfig{})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"refund", "can I get a refund if I drop out", true},
		{"guarantee precedes classification", "Do you guarantee job placement?", true},
		{"guarantee uppercase", "Is placement GUARANTEED?", true},
		{"money back", "do you have a money back policy", true},
		{"legal", "is this legal in my state", true},
		{"fees question is not sensitive", "what is the program fee", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.IsSensitiveQuery(tt.text); got != tt.want {
				t.Errorf("IsSensitiveQuery(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCustomTriggersReplaceDefaults(t *testing.T) {
	detector := NewEscalationDetector(DetectorConfig{
		SensitiveTriggers: []string{"chargeback"},
	})

	if !detector.IsSensitiveQuery("I will raise a chargeback") {
		t.Error("custom trigger not matched")
	}
	if detector.IsSensitiveQuery("can I get a refund") {
		t.Error("default trigger should be replaced by custom set")
	}
	// Human triggers were not overridden and keep their defaults.
	if !detector.WantsHumanHelp("talk to someone please") {
		t.Error("default human triggers should survive a sensitive-only override")
	}
}
