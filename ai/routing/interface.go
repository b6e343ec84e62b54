// Package routing provides intent classification and escalation
// detection for the customer care agent.
package routing

import "context"

// Intent represents the category of information a query seeks.
type Intent string

const (
	IntentProgramInfo        Intent = "PROGRAM_INFO"
	IntentFeesEnrollment     Intent = "FEES_ENROLLMENT"
	IntentLearningExperience Intent = "LEARNING_EXPERIENCE"
	IntentOutOfScope         Intent = "OUT_OF_SCOPE"

	// Synthetic intent labels used only in analytics events for the
	// detector short-circuit branches.
	IntentHumanRequest   Intent = "HUMAN_REQUEST"
	IntentSensitiveQuery Intent = "SENSITIVE_QUERY"
)

// Answerable reports whether the intent can be answered from the FAQ
// knowledge base.
func (i Intent) Answerable() bool {
	switch i {
	case IntentProgramInfo, IntentFeesEnrollment, IntentLearningExperience:
		return true
	default:
		return false
	}
}

// Classifier maps a query to one of the closed intent categories.
type Classifier interface {
	Classify(ctx context.Context, query string) (Intent, error)
}

// Decision is the terminal classification of a query.
type Decision string

const (
	DecisionHumanEscalation     Decision = "HUMAN_ESCALATION"
	DecisionSensitiveEscalation Decision = "SENSITIVE_ESCALATION"
	DecisionAnswered            Decision = "ANSWERED"
	DecisionNoMatch             Decision = "NO_MATCH"
	DecisionOutOfScope          Decision = "OUT_OF_SCOPE"
)

// Reason codes recorded in analytics for each terminal branch.
const (
	ReasonExplicitUserRequest    = "explicit_user_request"
	ReasonPolicyOrPromiseRelated = "policy_or_promise_related"
	ReasonNoFAQMatch             = "no_faq_match"
	ReasonNotInFAQ               = "not_in_faq"
)

// Hallucination risk labels. Fixed templates carry no risk; anything
// touching the model or retrieval is labelled low.
const (
	RiskNone = "none"
	RiskLow  = "low"
)
