package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shijin/IDALSCustomerCareAgent/ai/agent"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps"
)

// platformWebhook receives push deliveries from chat platforms
// (POST /webhooks/:platform), runs the agent, and replies through the
// same channel. Platform delivery retries are defused by always
// acking with 200 once the payload is parsed.
func (s *Server) platformWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	platform := chatapps.Platform(c.Param("platform"))
	channel, ok := s.channelRouter.GetChannel(platform)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown platform")
	}

	// The body is read once; signature validation and message parsing
	// both work from the same bytes.
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}

	headers := map[string]string{}
	for name := range c.Request().Header {
		headers[name] = c.Request().Header.Get(name)
	}
	form := map[string]string{}
	if strings.Contains(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		if values, err := url.ParseQuery(string(payload)); err == nil {
			for key := range values {
				form[key] = values.Get(key)
			}
		}
	}
	requestURL := c.Scheme() + "://" + c.Request().Host + c.Request().RequestURI
	if err := channel.ValidateWebhook(ctx, requestURL, headers, form); err != nil {
		slog.Warn("webhook validation failed", "platform", platform, "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "invalid webhook signature")
	}
	msg, err := channel.ParseMessage(ctx, payload)
	if err != nil {
		slog.Warn("webhook payload rejected", "platform", platform, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "unrecognized payload")
	}

	reply := s.replyFor(c, msg)

	// Reply delivery happens before the ack so Twilio-style synchronous
	// webhooks see a consistent ordering. Failures are logged, not
	// surfaced: re-delivery would duplicate the analytics event.
	if err := channel.SendMessage(ctx, &chatapps.OutgoingMessage{
		Platform: platform,
		ChatID:   msg.PlatformChatID,
		Content:  reply,
	}); err != nil {
		slog.Error("failed to send platform reply", "platform", platform, "chat", msg.PlatformChatID, "error", err)
	}
	return c.NoContent(http.StatusOK)
}

// replyFor runs one platform message through the agent and renders the
// answer for chat transports, which want plain text rather than markdown.
func (s *Server) replyFor(c echo.Context, msg *chatapps.IncomingMessage) string {
	ctx := c.Request().Context()

	resp, err := s.agentRouter.Handle(ctx, agent.Query{
		Text:   msg.Content,
		UserID: string(msg.Platform) + ":" + msg.PlatformUserID,
	})
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInput) {
			s.exporter.CountChatRequest("rejected")
			return agent.EmptyInputResponse
		}
		slog.Error("chat pipeline failed", "platform", msg.Platform, "error", err)
		s.exporter.CountChatRequest("error")
		return s.agentRouter.Templates().InternalFailure()
	}
	s.exporter.CountChatRequest("ok")

	// WhatsApp has no markdown rendering; strip formatting there.
	if msg.Platform == chatapps.PlatformWhatsApp {
		return s.markdown.ToPlainText(resp.Text)
	}
	return resp.Text
}
