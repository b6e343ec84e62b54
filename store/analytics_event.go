package store

import (
	"context"
	"time"
)

// AnalyticsEvent is the immutable record of one completed routing
// decision. Events are append-only; the agent core never reads them
// back or mutates them.
type AnalyticsEvent struct {
	ID                int64
	Timestamp         time.Time // request-received time, UTC
	Question          string
	Intent            string
	Escalation        bool
	Reason            *string // nullable: ANSWERED events carry no reason
	Language          string
	HallucinationRisk string
	ResponseLength    int // character count of the final response
}

// CSVHeader is the fixed column order for any tabular export of
// analytics events. Unknown/missing fields serialize as empty, never
// omitted.
var CSVHeader = []string{
	"timestamp",
	"question",
	"intent",
	"escalation",
	"reason",
	"language",
	"hallucination_risk",
	"response_length",
}

// FindAnalyticsEvent filters event listings.
type FindAnalyticsEvent struct {
	Intent     *string
	Escalation *bool
	Since      *time.Time
	Limit      int
}

// AnalyticsSummary is the aggregate view served to the dashboard.
type AnalyticsSummary struct {
	TotalEvents     int64
	EscalationCount int64
	ByIntent        map[string]int64
	ByReason        map[string]int64
}

// AnalyticsEventStore defines the persistence interface for analytics
// events.
type AnalyticsEventStore interface {
	// CreateAnalyticsEvent appends one event.
	CreateAnalyticsEvent(ctx context.Context, create *AnalyticsEvent) (*AnalyticsEvent, error)

	// ListAnalyticsEvents retrieves events, newest first.
	ListAnalyticsEvents(ctx context.Context, find *FindAnalyticsEvent) ([]*AnalyticsEvent, error)

	// GetAnalyticsSummary aggregates counts by intent, reason, and
	// escalation flag since the given time.
	GetAnalyticsSummary(ctx context.Context, since time.Time) (*AnalyticsSummary, error)
}
