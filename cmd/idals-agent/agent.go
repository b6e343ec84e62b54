package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/shijin/IDALSCustomerCareAgent/ai/agent"
	"github.com/shijin/IDALSCustomerCareAgent/ai/core/embedding"
	"github.com/shijin/IDALSCustomerCareAgent/ai/core/llm"
	"github.com/shijin/IDALSCustomerCareAgent/ai/knowledge"
	"github.com/shijin/IDALSCustomerCareAgent/ai/metrics"
	"github.com/shijin/IDALSCustomerCareAgent/ai/routing"
	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels/telegram"
	"github.com/shijin/IDALSCustomerCareAgent/plugin/chatapps/channels/whatsapp"
	"github.com/shijin/IDALSCustomerCareAgent/store"
	"github.com/shijin/IDALSCustomerCareAgent/store/db/postgres"
)

// buildAgent assembles the decision pipeline from the profile: LLM and
// embedding clients, the FAQ knowledge base, and the router.
func buildAgent(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store, dbDriver store.Driver) (*agent.Router, *metrics.Exporter, error) {
	llmService, err := llm.NewService(&llm.Config{
		Provider: instanceProfile.LLMProvider,
		Model:    instanceProfile.LLMModel,
		APIKey:   instanceProfile.LLMAPIKey,
		BaseURL:  instanceProfile.LLMBaseURL,
		Timeout:  instanceProfile.LLMTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	// Cut first-request latency by establishing the connection early.
	go llmService.Warmup(ctx)

	embedder, err := embedding.NewProvider(&embedding.Config{
		Provider:   instanceProfile.EmbeddingProvider,
		Model:      instanceProfile.EmbeddingModel,
		APIKey:     instanceProfile.EmbeddingAPIKey,
		BaseURL:    instanceProfile.EmbeddingBaseURL,
		Dimensions: instanceProfile.EmbeddingDimensions,
	})
	if err != nil {
		return nil, nil, err
	}

	entries, err := knowledge.LoadFAQCSV(instanceProfile.DatasetPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("loaded FAQ dataset", "path", instanceProfile.DatasetPath, "entries", len(entries))

	// Postgres installs keep FAQ vectors in pgvector so the index
	// survives restarts; sqlite keeps them in memory and rebuilds on
	// first query.
	var index knowledge.Index = knowledge.NewMemoryIndex()
	if instanceProfile.Driver == "postgres" {
		index = postgres.NewFAQIndex(dbDriver.GetDB())
	}

	base := knowledge.NewBase(entries, index, embedder, knowledge.NewNormalizer(llmService))

	exporter := metrics.NewExporter(metrics.DefaultConfig())

	agentRouter := agent.NewRouter(agent.Config{
		Detector: routing.NewEscalationDetector(routing.DetectorConfig{
			SensitiveTriggers: instanceProfile.SensitiveTriggers,
		}),
		Classifier:  routing.NewLLMClassifier(llmService),
		Retriever:   base,
		Synthesizer: agent.NewSynthesizer(llmService),
		Templates: agent.NewTemplates(agent.ContactInfo{
			Phone: instanceProfile.ContactPhone,
			Email: instanceProfile.ContactEmail,
		}),
		Sink:     storeInstance,
		Exporter: exporter,
	})

	// Pre-build the vector index in the background so the first user
	// question does not pay the embedding cost.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if _, err := base.Retrieve(warmCtx, "warmup", 1); err != nil {
			slog.Warn("knowledge index warmup failed", "error", err)
		}
	}()

	return agentRouter, exporter, nil
}

// buildChannels registers every chat platform the profile has
// credentials for. Missing credentials skip the platform quietly.
func buildChannels(instanceProfile *profile.Profile) *channels.ChannelRouter {
	channelRouter := channels.NewChannelRouter()

	if instanceProfile.TelegramBotToken != "" {
		channel, err := telegram.NewChannel(telegram.Config{
			BotToken: instanceProfile.TelegramBotToken,
		})
		if err != nil {
			slog.Warn("telegram channel disabled", "error", err)
		} else {
			channelRouter.Register(channel)
			slog.Info("telegram channel registered")
		}
	}

	if instanceProfile.TwilioAccountSID != "" {
		channel, err := whatsapp.NewChannel(whatsapp.Config{
			AccountSID: instanceProfile.TwilioAccountSID,
			AuthToken:  instanceProfile.TwilioAuthToken,
			From:       instanceProfile.TwilioWhatsAppFrom,
		})
		if err != nil {
			slog.Warn("whatsapp channel disabled", "error", err)
		} else {
			channelRouter.Register(channel)
			slog.Info("whatsapp channel registered")
		}
	}

	return channelRouter
}
