package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shijin/IDALSCustomerCareAgent/store"
)

const defaultEventLimit = 200

// analyticsSummary serves aggregate counts for the dashboard.
// Supports ?since=2026-01-01T00:00:00Z; defaults to the last 30 days.
func (s *Server) analyticsSummary(c echo.Context) error {
	ctx := c.Request().Context()

	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be RFC 3339")
		}
		since = parsed
	}

	summary, err := s.store.GetAnalyticsSummary(ctx, since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load summary")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"since":            since,
		"total_events":     summary.TotalEvents,
		"escalation_count": summary.EscalationCount,
		"by_intent":        summary.ByIntent,
		"by_reason":        summary.ByReason,
	})
}

// analyticsEvents lists recent events, newest first.
// Filters: ?intent=, ?escalation=true|false, ?limit=.
func (s *Server) analyticsEvents(c echo.Context) error {
	ctx := c.Request().Context()

	find, err := eventFilterFromQuery(c)
	if err != nil {
		return err
	}

	events, err := s.store.ListAnalyticsEvents(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	rows := make([]map[string]any, 0, len(events))
	for _, event := range events {
		row := map[string]any{
			"timestamp":          event.Timestamp,
			"question":           event.Question,
			"intent":             event.Intent,
			"escalation":         event.Escalation,
			"reason":             event.Reason,
			"language":           event.Language,
			"hallucination_risk": event.HallucinationRisk,
			"response_length":    event.ResponseLength,
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}

// analyticsExport streams events as CSV in the fixed column order.
func (s *Server) analyticsExport(c echo.Context) error {
	ctx := c.Request().Context()

	find, err := eventFilterFromQuery(c)
	if err != nil {
		return err
	}

	events, err := s.store.ListAnalyticsEvents(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="idals_analytics.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(store.CSVHeader); err != nil {
		return err
	}
	for _, event := range events {
		reason := ""
		if event.Reason != nil {
			reason = *event.Reason
		}
		record := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.Question,
			event.Intent,
			strconv.FormatBool(event.Escalation),
			reason,
			event.Language,
			event.HallucinationRisk,
			strconv.Itoa(event.ResponseLength),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func eventFilterFromQuery(c echo.Context) (*store.FindAnalyticsEvent, error) {
	find := &store.FindAnalyticsEvent{Limit: defaultEventLimit}

	if intent := c.QueryParam("intent"); intent != "" {
		find.Intent = &intent
	}
	if raw := c.QueryParam("escalation"); raw != "" {
		escalation, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "escalation must be a boolean")
		}
		find.Escalation = &escalation
	}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "since must be RFC 3339")
		}
		find.Since = &since
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
		}
		find.Limit = limit
	}
	return find, nil
}
