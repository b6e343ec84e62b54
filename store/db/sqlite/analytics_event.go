package sqlite

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

// CreateAnalyticsEvent appends one routing event. Timestamps are
// stored as UTC ISO-8601 text.
func (s *analyticsEventStore) CreateAnalyticsEvent(ctx context.Context, create *store.AnalyticsEvent) (*store.AnalyticsEvent, error) {
	stmt := `
		INSERT INTO analytics_event (timestamp, question, intent, escalation, reason, language, hallucination_risk, response_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	var reason sql.NullString
	if create.Reason != nil {
		reason = sql.NullString{String: *create.Reason, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, stmt,
		create.Timestamp.UTC().Format(time.RFC3339Nano),
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
		where, args = append(where, "intent = ?"), append(args, *find.Intent)
	}
	if find.Escalation != nil {
		where, args = append(where, "escalation = ?"), append(args, *find.Escalation)
	}
	if find.Since != nil {
		where, args = append(where, "timestamp >= ?"), append(args, find.Since.UTC().Format(time.RFC3339Nano))
	}

	query := `SELECT id, timestamp, question, intent, escalation, reason, language, hallucination_risk, response_length
		FROM analytics_event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY timestamp DESC`
	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analytics events")
	}
	defer rows.Close()

	var events []*store.AnalyticsEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *analyticsEventStore) GetAnalyticsSummary(ctx context.Context, since time.Time) (*store.AnalyticsSummary, error) {
	summary := &store.AnalyticsSummary{
		ByIntent: map[string]int64{},
		ByReason: map[string]int64{},
	}
	sinceArg := since.UTC().Format(time.RFC3339Nano)

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(escalation), 0)
		FROM analytics_event WHERE timestamp >= ?
	`, sinceArg).Scan(&summary.TotalEvents, &summary.EscalationCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate analytics events")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*) FROM analytics_event
		WHERE timestamp >= ? GROUP BY intent
	`, sinceArg)
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
		WHERE timestamp >= ? AND reason IS NOT NULL GROUP BY reason
	`, sinceArg)
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

func scanEvent(rows *sql.Rows) (*store.AnalyticsEvent, error) {
	var event store.AnalyticsEvent
	var timestamp string
	var reason sql.NullString
	if err := rows.Scan(
		&event.ID,
		&timestamp,
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
	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timestamp %q", timestamp)
	}
	event.Timestamp = ts
	if reason.Valid {
		event.Reason = &reason.String
	}
	return &event, nil
}
