package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/agent"
	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the reply payload. Routing metadata is included so the
// web widget can badge escalations without parsing the text.
type ChatResponse struct {
	Reply      string `json:"reply"`
	Decision   string `json:"decision"`
	Intent     string `json:"intent"`
	Escalation bool   `json:"escalation"`
	UserID     string `json:"user_id"`
}

func (s *Server) chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		// Anonymous web sessions get a short id so followups correlate.
		userID = "web-" + shortuuid.New()
	}

	resp, err := s.agentRouter.Handle(ctx, agent.Query{Text: req.Message, UserID: userID})
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInput) {
			s.exporter.CountChatRequest("rejected")
			return c.JSON(http.StatusBadRequest, ChatResponse{
				Reply:  agent.EmptyInputResponse,
				UserID: userID,
			})
		}
		// Never leak internals to the user. The reply degrades to the
		// human escalation path and the error goes to the log only.
		slog.Error("chat pipeline failed", "user", userID, "error", err)
		s.exporter.CountChatRequest("error")
		return c.JSON(http.StatusOK, ChatResponse{
			Reply:      s.agentRouter.Templates().InternalFailure(),
			Decision:   string(routing.DecisionHumanEscalation),
			Escalation: true,
			UserID:     userID,
		})
	}

	s.exporter.CountChatRequest("ok")
	return c.JSON(http.StatusOK, ChatResponse{
		Reply:      resp.Text,
		Decision:   string(resp.Decision),
		Intent:     string(resp.Intent),
		Escalation: resp.Escalation,
		UserID:     userID,
	})
}
