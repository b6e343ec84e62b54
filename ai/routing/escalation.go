package routing

import "strings"

// DetectorConfig carries the trigger keyword sets for the escalation
// detectors. The sets are configuration data, not scattered literals,
// so deployments can tune them without code changes.
type DetectorConfig struct {
	// HumanTriggers are substrings that indicate an explicit request
	// to reach a person.
	HumanTriggers []string

	// SensitiveTriggers are substrings that indicate policy- or
	// promise-sensitive phrasing that must not be answered by the model.
	SensitiveTriggers []string
}

// DefaultDetectorConfig returns the stock trigger sets.
// Both detectors bias toward escalation: a false positive costs one
// human handoff, a false negative risks an invented promise.
// The sensitive detector runs before intent classification, so a query
// matching a trigger here (e.g. "guarantee") terminates as
// SENSITIVE_ESCALATION even when the classifier would have labelled it
// OUT_OF_SCOPE.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		HumanTriggers: []string{
			"human",
			"talk to someone",
			"customer care",
			"support",
			"whatsapp",
			"phone",
			"call",
			"email",
			"contact",
		},
		SensitiveTriggers: []string{
			"guarantee",
			"guaranteed",
			"refund",
			"money back",
			"job placement",
			"placement assurance",
			"legal",
			"lawsuit",
			"compensation",
			"promise",
		},
	}
}

// EscalationDetector runs the two deterministic escalation predicates.
// It is pure and synchronous; no model call, no side effects.
type EscalationDetector struct {
	humanTriggers     []string
	sensitiveTriggers []string
}

// NewEscalationDetector creates a detector from config. Empty trigger
// lists fall back to the defaults.
func NewEscalationDetector(cfg DetectorConfig) *EscalationDetector {
	defaults := DefaultDetectorConfig()
	if len(cfg.HumanTriggers) == 0 {
		cfg.HumanTriggers = defaults.HumanTriggers
	}
	if len(cfg.SensitiveTriggers) == 0 {
		cfg.SensitiveTriggers = defaults.SensitiveTriggers
	}
	return &EscalationDetector{
		humanTriggers:     lowerAll(cfg.HumanTriggers),
		sensitiveTriggers: lowerAll(cfg.SensitiveTriggers),
	}
}

// WantsHumanHelp reports whether the text contains an explicit request
// for a person.
func (d *EscalationDetector) WantsHumanHelp(text string) bool {
	return containsAny(strings.ToLower(text), d.humanTriggers)
}

// IsSensitiveQuery reports whether the text matches policy- or
// promise-sensitive phrasing.
func (d *EscalationDetector) IsSensitiveQuery(text string) bool {
	return containsAny(strings.ToLower(text), d.sensitiveTriggers)
}

func lowerAll(items []string) []string {
	lowered := make([]string, len(items))
	for i, s := range items {
		lowered[i] = strings.ToLower(s)
	}
	return lowered
}

// containsAny checks if s contains any of the patterns.
func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
