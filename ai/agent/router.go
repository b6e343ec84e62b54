package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/knowledge"
	"github.com/shijin/IDALSCustomerCareAgent/ai/metrics"
	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
	"github.com/shijin/IDALSCustomerCareAgent/store"
)

// ErrEmptyInput is returned for blank queries, which are rejected
// before the pipeline runs. No model call is made and no analytics
// event is recorded for them.
var ErrEmptyInput = errors.New("empty input")

// Query is one inbound user question. Immutable once received.
type Query struct {
	Text   string
	UserID string // optional caller/session identifier
}

// Response is the terminal routing decision plus the reply text.
type Response struct {
	Decision          routing.Decision
	Intent            routing.Intent
	Text              string
	Escalation        bool
	Reason            string // empty for ANSWERED
	HallucinationRisk string
	Language          string
}

// KnowledgeRetriever is the retrieval capability consumed by the
// router. *knowledge.Base implements it.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]knowledge.Snippet, error)
}

// AnswerSynthesizer produces the grounded final answer.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query string, snippets []knowledge.Snippet) (string, error)
}

// AnalyticsSink records one event per handled query. *store.Store
// implements it. The sink is append-only from the router's view.
type AnalyticsSink interface {
	CreateAnalyticsEvent(ctx context.Context, create *store.AnalyticsEvent) (*store.AnalyticsEvent, error)
}

// Router sequences escalation detection, intent classification,
// retrieval, and synthesis into the per-query decision pipeline.
// Stateless between requests; safe for concurrent use.
type Router struct {
	detector    *routing.EscalationDetector
	classifier  routing.Classifier
	retriever   KnowledgeRetriever
	synthesizer AnswerSynthesizer
	templates   *Templates
	sink        AnalyticsSink
	exporter    *metrics.Exporter
	topK        int
}

// Config wires the router's collaborators.
type Config struct {
	Detector    *routing.EscalationDetector
	Classifier  routing.Classifier
	Retriever   KnowledgeRetriever
	Synthesizer AnswerSynthesizer
	Templates   *Templates
	Sink        AnalyticsSink
	Exporter    *metrics.Exporter // optional
	TopK        int               // default knowledge.DefaultTopK
}

// NewRouter creates the decision-pipeline router.
func NewRouter(cfg Config) *Router {
	if cfg.Templates == nil {
		cfg.Templates = NewTemplates(ContactInfo{})
	}
	if cfg.TopK <= 0 {
		cfg.TopK = knowledge.DefaultTopK
	}
	return &Router{
		detector:    cfg.Detector,
		classifier:  cfg.Classifier,
		retriever:   cfg.Retriever,
		synthesizer: cfg.Synthesizer,
		templates:   cfg.Templates,
		sink:        cfg.Sink,
		exporter:    cfg.Exporter,
		topK:        cfg.TopK,
	}
}

// Templates exposes the response templates, for callers that must
// render a safe message when Handle itself fails.
func (r *Router) Templates() *Templates {
	return r.templates
}

// Handle runs the full decision pipeline for one query. The transition
// order is fixed: the detectors always take precedence over
// classification and retrieval, even when the query would match a
// knowledge answer. Exactly one analytics event is recorded per
// terminal branch. Classification and retrieval failures propagate to
// the caller; a synthesis-only failure degrades to the no-model
// formatter over the retrieved passages.
func (r *Router) Handle(ctx context.Context, query Query) (*Response, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	received := time.Now().UTC()
	language := knowledge.DetectLanguage(query.Text)

	// 1. Explicit human-help request.
	if r.detector.WantsHumanHelp(query.Text) {
		return r.finish(ctx, query, received, start, &Response{
			Decision:          routing.DecisionHumanEscalation,
			Intent:            routing.IntentHumanRequest,
			Text:              r.templates.HumanEscalation(),
			Escalation:        true,
			Reason:            routing.ReasonExplicitUserRequest,
			HallucinationRisk: routing.RiskNone,
			Language:          language,
		}), nil
	}

	// 2. Sensitive query. The classifier is never invoked on this branch.
	if r.detector.IsSensitiveQuery(query.Text) {
		return r.finish(ctx, query, received, start, &Response{
			Decision:          routing.DecisionSensitiveEscalation,
			Intent:            routing.IntentSensitiveQuery,
			Text:              r.templates.SensitiveEscalation(),
			Escalation:        true,
			Reason:            routing.ReasonPolicyOrPromiseRelated,
			HallucinationRisk: routing.RiskNone,
			Language:          language,
		}), nil
	}

	// 3. Intent classification. An unparseable label fails toward the
	// most conservative, human-directing behavior.
	intent, err := r.classifier.Classify(ctx, query.Text)
	if err != nil {
		if !errors.Is(err, routing.ErrUnrecognizedIntent) {
			return nil, errors.Wrap(err, "intent classification failed")
		}
		slog.Warn("unparseable intent label, treating as out of scope",
			"query", truncate(query.Text, 50))
		intent = routing.IntentOutOfScope
	}

	// 4. Out-of-scope intents escalate to the team.
	if !intent.Answerable() {
		return r.finish(ctx, query, received, start, &Response{
			Decision:          routing.DecisionOutOfScope,
			Intent:            routing.IntentOutOfScope,
			Text:              r.templates.OutOfScope(),
			Escalation:        true,
			Reason:            routing.ReasonNotInFAQ,
			HallucinationRisk: routing.RiskLow,
			Language:          language,
		}), nil
	}

	// 5. Grounding retrieval.
	snippets, err := r.retriever.Retrieve(ctx, query.Text, r.topK)
	if err != nil {
		return nil, errors.Wrap(err, "knowledge retrieval failed")
	}
	if r.exporter != nil {
		r.exporter.ObserveRetrieval(len(snippets))
	}

	// Empty retrieval returns the fixed no-match reply. This bypass is
	// a hard business rule: the synthesizer must never see an empty
	// retrieval result.
	if len(snippets) == 0 {
		return r.finish(ctx, query, received, start, &Response{
			Decision:          routing.DecisionNoMatch,
			Intent:            intent,
			Text:              NoMatchResponse,
			Escalation:        false,
			Reason:            routing.ReasonNoFAQMatch,
			HallucinationRisk: routing.RiskLow,
			Language:          language,
		}), nil
	}

	// 6. Grounded synthesis. At this point retrieval has already
	// grounded the content, so a failed model call degrades to the
	// formatted passages instead of failing the query.
	answer, err := r.synthesizer.Synthesize(ctx, query.Text, snippets)
	if err != nil {
		slog.Warn("answer synthesis failed, using formatted snippets",
			"intent", intent,
			"error", err)
		answer = FormatFAQAnswer(snippetText(snippets), intent)
	}

	return r.finish(ctx, query, received, start, &Response{
		Decision:          routing.DecisionAnswered,
		Intent:            intent,
		Text:              answer,
		Escalation:        false,
		HallucinationRisk: routing.RiskLow,
		Language:          language,
	}), nil
}

// finish records the analytics event and metrics for a terminal branch.
// A sink failure never fails the user response.
func (r *Router) finish(ctx context.Context, query Query, received time.Time, start time.Time, resp *Response) *Response {
	event := &store.AnalyticsEvent{
		Timestamp:         received,
		Question:          query.Text,
		Intent:            string(resp.Intent),
		Escalation:        resp.Escalation,
		Language:          resp.Language,
		HallucinationRisk: resp.HallucinationRisk,
		ResponseLength:    len([]rune(resp.Text)),
	}
	if resp.Reason != "" {
		reason := resp.Reason
		event.Reason = &reason
	}

	if r.sink != nil {
		if _, err := r.sink.CreateAnalyticsEvent(ctx, event); err != nil {
			slog.Warn("failed to record analytics event",
				"decision", resp.Decision,
				"error", err)
		}
	}

	if r.exporter != nil {
		r.exporter.ObserveDecision(string(resp.Decision), string(resp.Intent), time.Since(start))
	}

	slog.Debug("query routed",
		"decision", resp.Decision,
		"intent", resp.Intent,
		"language", resp.Language,
		"latency_ms", time.Since(start).Milliseconds())
	return resp
}

func snippetText(snippets []knowledge.Snippet) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = s.Content
	}
	return strings.Join(parts, "\n")
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
