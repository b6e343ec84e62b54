package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/store"
)

type analyticsEventStore struct {
	db *sql.DB
}

func (s *analyticsEventStore) CreateAnalyticsEvent(ctx context.Context, create *store.AnalyticsEvent) (*store.AnalyticsEvent, error) {
	stmt := `
		INSERT INTO analytics_event (timestamp, question, intent, escalation, reason, language, hallucination_risk, response_length)
		VALUES (` + placeholders(8) + `)
		RETURNING id
	`
	var reason sql.NullString
	if create.Reason != nil {
		reason = sql.NullString{String: *create.Reason, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, stmt,
		create.Timestamp.UTC(),
		create.Question,
		create.Intent,
		create.Escalation,
		reason,
		create.Language,
		create.HallucinationRisk,
		create.ResponseLength,
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create analytics event")
	}
	return create, nil
}

func (s *analyticsEventStore) ListAnalyticsEvents(ctx context.Context, find *store.FindAnalyticsEvent) ([]*store.AnalyticsEvent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.Intent != nil {
		where, args = append(where, "intent = "+placeholder(len(args)+1)), append(args, *find.Intent)
	}
	if find.Escalation != nil {
		where, args = append(where, "escalation = "+placeholder(len(args)+1)), append(args, *find.Escalation)
	}
	if find.Since != nil {
		where, args = append(where, "timestamp >= "+placeholder(len(args)+1)), append(args, find.Since.UTC())
	}

	query := `
		SELECT id, timestamp, question, intent, escalation, reason, language, hallucination_risk, response_length
		FROM analytics_event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY timestamp DESC
	`
	if find.Limit > 0 {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, find.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analytics events")
	}
	defer rows.Close()

	var events []*store.AnalyticsEvent
	for rows.Next() {
		var event store.AnalyticsEvent
		var reason sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Question,
			&event.Intent,
			&event.Escalation,
			&reason,
			&event.Language,
			&event.HallucinationRisk,
			&event.ResponseLength,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan analytics event")
		}
		if reason.Valid {
			event.Reason = &reason.String
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (s *analyticsEventStore) GetAnalyticsSummary(ctx context.Context, since time.Time) (*store.AnalyticsSummary, error) {
	summary := &store.AnalyticsSummary{
		ByIntent: map[string]int64{},
		ByReason: map[string]int64{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE escalation)
		FROM analytics_event WHERE timestamp >= $1
	`, since.UTC()).Scan(&summary.TotalEvents, &summary.EscalationCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate analytics events")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*) FROM analytics_event
		WHERE timestamp >= $1 GROUP BY intent
	`, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate intents")
	}
	defer rows.Close()
	for rows.Next() {
		var intent string
		var count int64
		if err := rows.Scan(&intent, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan intent aggregate")
		}
		summary.ByIntent[intent] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reasonRows, err := s.db.QueryContext(ctx, `
		SELECT reason, COUNT(*) FROM analytics_event
		WHERE timestamp >= $1 AND reason IS NOT NULL GROUP BY reason
	`, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate reasons")
	}
	defer reasonRows.Close()
	for reasonRows.Next() {
		var reason string
		var count int64
		if err := reasonRows.Scan(&reason, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan reason aggregate")
		}
		summary.ByReason[reason] = count
	}
	return summary, reasonRows.Err()
}
