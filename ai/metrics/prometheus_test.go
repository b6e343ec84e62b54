package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, e *Exporter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestExporterObserveDecision(t *testing.T) {
	e := NewExporter(Config{})

	e.ObserveDecision("ANSWERED", "PROGRAM_INFO", 120*time.Millisecond)
	e.ObserveDecision("ANSWERED", "PROGRAM_INFO", 80*time.Millisecond)
	e.ObserveDecision("HUMAN_ESCALATION", "HUMAN_REQUEST", 1*time.Millisecond)

	body := scrape(t, e)
	if !strings.Contains(body, `idals_router_decisions_total{decision="ANSWERED",intent="PROGRAM_INFO"} 2`) {
		t.Errorf("missing answered counter:\n%s", body)
	}
	if !strings.Contains(body, `idals_router_decisions_total{decision="HUMAN_ESCALATION",intent="HUMAN_REQUEST"} 1`) {
		t.Errorf("missing escalation counter:\n%s", body)
	}
	if !strings.Contains(body, `idals_router_decision_duration_seconds_count{decision="ANSWERED"} 2`) {
		t.Errorf("missing latency histogram:\n%s", body)
	}
}

func TestExporterChatAndRetrieval(t *testing.T) {
	e := NewExporter(Config{})

	e.CountChatRequest("ok")
	e.CountChatRequest("ok")
	e.CountChatRequest("error")
	e.ObserveRetrieval(3)

	body := scrape(t, e)
	if !strings.Contains(body, `idals_server_chat_requests_total{status="ok"} 2`) {
		t.Errorf("missing ok counter:\n%s", body)
	}
	if !strings.Contains(body, `idals_server_chat_requests_total{status="error"} 1`) {
		t.Errorf("missing error counter:\n%s", body)
	}
	if !strings.Contains(body, `idals_knowledge_retrieval_hits_count 1`) {
		t.Errorf("missing retrieval histogram:\n%s", body)
	}
}
