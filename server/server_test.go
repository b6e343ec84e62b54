package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/shijin/IDALSCustomerCareAgent/ai/agent"
	"github.com/shijin/IDALSCustomerCareAgent/ai/knowledge"
	"github.com/shijin/IDALSCustomerCareAgent/ai/metrics"
	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
	"github.com/shijin/IDALSCustomerCareAgent/store"
	"github.com/shijin/IDALSCustomerCareAgent/store/db/sqlite"
)

type stubClassifier struct {
	intent routing.Intent
	err    error
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (routing.Intent, error) {
	return s.intent, s.err
}

type stubRetriever struct {
	snippets []knowledge.Snippet
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _ int) ([]knowledge.Snippet, error) {
	return s.snippets, nil
}

type stubSynthesizer struct {
	answer string
	err    error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string, _ []knowledge.Snippet) (string, error) {
	return s.answer, s.err
}

func testServer(t *testing.T, classifier routing.Classifier, retriever agent.KnowledgeRetriever, synthesizer agent.AnswerSynthesizer) *Server {
	t.Helper()

	testProfile := &profile.Profile{
		Mode: "dev",
		DSN:  filepath.Join(t.TempDir(), "idals_test.db"),
	}
	driver, err := sqlite.NewDB(testProfile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	storeInstance := store.New(driver, testProfile)
	require.NoError(t, storeInstance.Migrate(context.Background()))

	agentRouter := agent.NewRouter(agent.Config{
		Detector:    routing.NewEscalationDetector(routing.DetectorConfig{}),
		Classifier:  classifier,
		Retriever:   retriever,
		Synthesizer: synthesizer,
		Sink:        storeInstance,
	})

	s, err := NewServer(context.Background(), testProfile, storeInstance, agentRouter,
		metrics.NewExporter(metrics.Config{}), channels.NewChannelRouter())
	require.NoError(t, err)
	return s
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestChatAnswered(t *testing.T) {
	s := testServer(t,
		&stubClassifier{intent: routing.IntentProgramInfo},
		&stubRetriever{snippets: []knowledge.Snippet{{Content: "Q: How long?\nA: Six months."}}},
		&stubSynthesizer{answer: "The program runs for six months."},
	)

	rec := postChat(t, s, `{"message": "How long is the program?", "user_id": "u-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "The program runs for six months.", resp.Reply)
	require.Equal(t, string(routing.DecisionAnswered), resp.Decision)
	require.False(t, resp.Escalation)
	require.Equal(t, "u-1", resp.UserID)
}

func TestChatEscalation(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	rec := postChat(t, s, `{"message": "I want to talk to a human"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(routing.DecisionHumanEscalation), resp.Decision)
	require.True(t, resp.Escalation)
	require.Contains(t, resp.Reply, "+91 9136249295")
	// Anonymous callers get a correlatable session id.
	require.True(t, strings.HasPrefix(resp.UserID, "web-"))
}

func TestChatEmptyMessage(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	rec := postChat(t, s, `{"message": "   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, agent.EmptyInputResponse, resp.Reply)
}

func TestChatInternalFailureIsMasked(t *testing.T) {
	s := testServer(t,
		&stubClassifier{err: errors.New("model gateway exploded: secret dsn inside")},
		&stubRetriever{}, &stubSynthesizer{})

	rec := postChat(t, s, `{"message": "How long is the program?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Escalation)
	require.NotContains(t, rec.Body.String(), "exploded")
	require.NotContains(t, rec.Body.String(), "secret")
	require.Contains(t, resp.Reply, "+91 9136249295")
}

func TestHealthz(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnalyticsSummaryAndExport(t *testing.T) {
	s := testServer(t,
		&stubClassifier{intent: routing.IntentProgramInfo},
		&stubRetriever{snippets: []knowledge.Snippet{{Content: "doc"}}},
		&stubSynthesizer{answer: "Grounded answer."},
	)

	// Drive two queries through the real pipeline so events exist.
	require.Equal(t, http.StatusOK, postChat(t, s, `{"message": "How long is the program?"}`).Code)
	require.Equal(t, http.StatusOK, postChat(t, s, `{"message": "talk to a human please"}`).Code)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		TotalEvents     int64            `json:"total_events"`
		EscalationCount int64            `json:"escalation_count"`
		ByIntent        map[string]int64 `json:"by_intent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, int64(2), summary.TotalEvents)
	require.Equal(t, int64(1), summary.EscalationCount)
	require.Equal(t, int64(1), summary.ByIntent["PROGRAM_INFO"])

	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 events
	require.Equal(t, store.CSVHeader, records[0])

	// Newest first: the human escalation is listed before the answer.
	require.Equal(t, "HUMAN_REQUEST", records[1][2])
	require.Equal(t, "true", records[1][3])
	require.Equal(t, "explicit_user_request", records[1][4])
	require.Equal(t, "PROGRAM_INFO", records[2][2])
	require.Equal(t, "", records[2][4])
}

func TestAnalyticsBadQueryParams(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	for _, target := range []string{
		"/api/v1/analytics/summary?since=yesterday",
		"/api/v1/analytics/events?escalation=maybe",
		"/api/v1/analytics/events?limit=0",
	} {
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t,
		&stubClassifier{intent: routing.IntentProgramInfo},
		&stubRetriever{snippets: []knowledge.Snippet{{Content: "doc"}}},
		&stubSynthesizer{answer: "answer"},
	)
	require.Equal(t, http.StatusOK, postChat(t, s, `{"message": "How long?"}`).Code)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "idals_server_chat_requests_total")
}

type stubChannel struct {
	name        string
	validateErr error
	sent        []*chatapps.OutgoingMessage
}

func (s *stubChannel) Name() chatapps.Platform { return chatapps.Platform(s.name) }

func (s *stubChannel) ValidateWebhook(_ context.Context, _ string, _ map[string]string, _ map[string]string) error {
	return s.validateErr
}

func (s *stubChannel) ParseMessage(_ context.Context, payload []byte) (*chatapps.IncomingMessage, error) {
	if len(payload) == 0 {
		return nil, channels.ErrInvalidPayload
	}
	return &chatapps.IncomingMessage{
		Platform:       chatapps.Platform(s.name),
		PlatformUserID: "42",
		PlatformChatID: "42",
		Content:        string(payload),
	}, nil
}

func (s *stubChannel) SendMessage(_ context.Context, msg *chatapps.OutgoingMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func (s *stubChannel) Close() error { return nil }

func TestWebhookRoundTrip(t *testing.T) {
	s := testServer(t,
		&stubClassifier{intent: routing.IntentProgramInfo},
		&stubRetriever{snippets: []knowledge.Snippet{{Content: "doc"}}},
		&stubSynthesizer{answer: "Grounded answer."},
	)
	channel := &stubChannel{name: "telegram"}
	s.channelRouter.Register(channel)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader("How long is the program?"))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, channel.sent, 1)
	require.Equal(t, "Grounded answer.", channel.sent[0].Content)
	require.Equal(t, "42", channel.sent[0].ChatID)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})
	channel := &stubChannel{name: "telegram", validateErr: errors.New("signature mismatch")}
	s.channelRouter.Register(channel)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, channel.sent)
}

func TestWebhookUnknownPlatform(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/carrier-pigeon", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdownIsIdempotentOnChannels(t *testing.T) {
	s := testServer(t, &stubClassifier{}, &stubRetriever{}, &stubSynthesizer{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Shutdown(ctx)
}
