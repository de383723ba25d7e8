package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foreveruup/wp-bot/internal/config"
	"github.com/foreveruup/wp-bot/internal/conversation"
	"github.com/foreveruup/wp-bot/internal/greenapi"
	"github.com/foreveruup/wp-bot/internal/leads"
	"github.com/foreveruup/wp-bot/internal/observability/metrics"
	"github.com/foreveruup/wp-bot/internal/ops"
	"github.com/foreveruup/wp-bot/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting wp-bot",
		"model", cfg.OpenAIModel,
		"ops_addr", cfg.OpsAddr,
	)

	gateway, err := greenapi.New(greenapi.Config{
		BaseURL:    cfg.GreenAPIBaseURL,
		InstanceID: cfg.InstanceID,
		Token:      cfg.InstanceToken,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger.Logger,
	})
	if err != nil {
		logger.Error("failed to create gateway client", "error", err)
		os.Exit(1)
	}

	// Best-effort startup housekeeping: ask the gateway to deliver incoming
	// message webhooks and report whether the instance is linked to WhatsApp.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := gateway.SetSettings(startupCtx, greenapi.Settings{
		IncomingWebhook:    "yes",
		PollMessageWebhook: "yes",
	}); err != nil {
		logger.Warn("failed to apply gateway settings", "error", err)
	}
	if state, err := gateway.GetStateInstance(startupCtx); err != nil {
		logger.Warn("failed to read gateway state", "error", err)
	} else if state != greenapi.StateAuthorized {
		logger.Warn("gateway instance is not authorized", "state", state)
	} else {
		logger.Info("gateway instance authorized")
	}
	startupCancel()

	openaiClient, err := conversation.NewOpenAILLMClient(cfg.OpenAIAPIKey)
	if err != nil {
		logger.Error("failed to create openai client", "error", err)
		os.Exit(1)
	}

	var llm conversation.LLMClient = openaiClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := conversation.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini fallback unavailable", "error", err)
		} else {
			defer gemini.Close()
			llm = conversation.NewFallbackLLMClient(openaiClient, gemini, logger)
			logger.Info("gemini fallback enabled", "model", cfg.GeminiModel)
		}
	}

	store, err := leads.NewBoltStore(cfg.LeadsDBPath)
	if err != nil {
		logger.Error("failed to open lead store", "error", err, "path", cfg.LeadsDBPath)
		os.Exit(1)
	}
	defer store.Close()

	botMetrics := metrics.NewBotMetrics(nil)

	opsServer := &http.Server{
		Addr: cfg.OpsAddr,
		Handler: ops.New(&ops.Config{
			Logger:         logger,
			MetricsHandler: promhttp.Handler(),
			StateProber:    gateway,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("ops server listening", "addr", opsServer.Addr)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	history := conversation.NewHistoryStore(0)
	generator := conversation.NewGenerator(llm, history, cfg.OpenAIModel, logger)
	processor := conversation.NewProcessor(gateway, history, store, generator, logger,
		conversation.WithAdminNumbers(cfg.AdminNumbers),
		conversation.WithMetrics(botMetrics),
	)
	poller := conversation.NewPoller(gateway, processor, cfg.PollIdleDelay, cfg.PollErrorDelay, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := poller.Run(ctx); err != nil {
		logger.Error("poller exited with error", "error", err)
	}

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server forced to shutdown", "error", err)
	}
	logger.Info("bot stopped")
}
