// Package agent implements the routed customer care agent: escalation
// detection, intent classification, FAQ retrieval, and grounded answer
// synthesis, orchestrated as a fixed-order decision pipeline.
package agent

import "fmt"

// ContactInfo is the human-support contact surface rendered into the
// escalation templates.
type ContactInfo struct {
	Phone string
	Email string
}

// DefaultContactInfo returns the IDALS support contact details.
func DefaultContactInfo() ContactInfo {
	return ContactInfo{
		Phone: "+91 9136249295",
		Email: "connect@theidals.com",
	}
}

// NoMatchResponse is the fixed reply when retrieval finds nothing.
// Returning this instead of synthesizing an answer is the primary
// anti-hallucination safeguard; never route empty retrieval into the
// synthesizer.
const NoMatchResponse = "This information is not specified in the IDALS program details."

// EmptyInputResponse is the reply for blank queries, which are rejected
// before the pipeline runs.
const EmptyInputResponse = "Empty input received. Please type a question about the IDALS program."

// Templates renders the fixed escalation responses.
type Templates struct {
	contact ContactInfo
}

// NewTemplates creates a template set. Zero-value contact fields fall
// back to the defaults.
func NewTemplates(contact ContactInfo) *Templates {
	defaults := DefaultContactInfo()
	if contact.Phone == "" {
		contact.Phone = defaults.Phone
	}
	if contact.Email == "" {
		contact.Email = defaults.Email
	}
	return &Templates{contact: contact}
}

// HumanEscalation is the reply for an explicit request to reach a person.
func (t *Templates) HumanEscalation() string {
	return fmt.Sprintf(
		"I'd be happy to connect you with our team for personalized assistance.\n\n"+
			"📞 **WhatsApp / Phone:** %s\n"+
			"📧 **Email:** %s\n\n"+
			"Our IDALS support team will guide you further.",
		t.contact.Phone, t.contact.Email)
}

// SensitiveEscalation is the reply for policy- or promise-sensitive queries.
func (t *Templates) SensitiveEscalation() string {
	return fmt.Sprintf(
		"To ensure you receive accurate and responsible guidance, this query requires human assistance.\n\n"+
			"Please connect with our IDALS team:\n"+
			"📞 **WhatsApp / Phone:** %s\n"+
			"📧 **Email:** %s",
		t.contact.Phone, t.contact.Email)
}

// OutOfScope is the reply for queries outside the FAQ domain.
func (t *Templates) OutOfScope() string {
	return fmt.Sprintf(
		"This information is not specified in the IDALS program details.\n\n"+
			"For further clarification, please reach out to our team:\n"+
			"📞 **WhatsApp / Phone:** %s\n"+
			"📧 **Email:** %s",
		t.contact.Phone, t.contact.Email)
}

// InternalFailure is the user-visible reply for any unhandled internal
// failure. Raw error text must never reach the end user.
func (t *Templates) InternalFailure() string {
	return fmt.Sprintf(
		"I'm unable to answer right now. Our team will be glad to help you directly:\n\n"+
			"📞 **WhatsApp / Phone:** %s\n"+
			"📧 **Email:** %s",
		t.contact.Phone, t.contact.Email)
}
