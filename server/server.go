// Package server exposes the agent over HTTP: the chat endpoint, the
// analytics dashboard backend, platform webhooks, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/shijin/IDALSCustomerCareAgent/ai/agent"
	"github.com/shijin/IDALSCustomerCareAgent/ai/metrics"
	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/internal/version"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/markdown"
	"github.com/shijin/IDALSCustomerCareAgent/store"
)

// Server hosts the HTTP surface of the customer care agent.
type Server struct {
	e *echo.Echo

	profile       *profile.Profile
	store         *store.Store
	agentRouter   *agent.Router
	exporter      *metrics.Exporter
	channelRouter *channels.ChannelRouter
	markdown      markdown.Service
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, agentRouter *agent.Router, exporter *metrics.Exporter, channelRouter *channels.ChannelRouter) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:             e,
		profile:       profile,
		store:         store,
		agentRouter:   agentRouter,
		exporter:      exporter,
		channelRouter: channelRouter,
		markdown:      markdown.NewService(),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	// Per-client rate limit on the public surface. Chat traffic is
	// human-paced; 5 rps with a small burst is generous.
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(5),
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		},
	)))

	e.GET("/healthz", s.healthCheck)
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	apiV1 := e.Group("/api/v1")
	apiV1.POST("/chat", s.chat)
	apiV1.GET("/analytics/summary", s.analyticsSummary)
	apiV1.GET("/analytics/events", s.analyticsEvents)
	apiV1.GET("/analytics/export", s.analyticsExport)

	e.POST("/webhooks/:platform", s.platformWebhook)

	return s, nil
}

// Start begins serving. Blocks until the listener fails or is closed.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server listening", "addr", addr, "version", version.String())
	return s.e.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if s.channelRouter != nil {
		if err := s.channelRouter.Close(); err != nil {
			slog.Error("failed to close chat channels", "error", err)
		}
	}
	slog.Info("server stopped")
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "IDALS Agent",
		"version": version.String(),
	})
}
