package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/domain/ports/adapter"
	ai "ai-chat-relay/internal/infra/adapters/ai"
	"ai-chat-relay/internal/infra/logging"
	"ai-chat-relay/internal/infra/memstore"
	"ai-chat-relay/internal/infra/metrics"
	"ai-chat-relay/internal/infra/sched"
	"ai-chat-relay/internal/infra/web"
	"ai-chat-relay/internal/session"
	"ai-chat-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop-friendly validation)")
	flag.Parse()

	// .env is optional; real secrets come from the environment in prod
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Stores ----
	credRepo := memstore.NewCredentialRepo()
	sessions := session.NewManager()

	// ---- Completion relay ----
	var relay adapter.CompletionAdapter
	switch cfg.AI.Provider {
	case "gemini":
		relay, err = ai.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("completion relay: gemini")
	case "noop":
		relay = ai.NewNoopAdapter()
		logger.Info().Msg("completion relay: noop")
	default:
		if cfg.AI.Endpoint == "" && cfg.Runtime.Dev {
			relay = ai.NewNoopAdapter()
			logger.Info().Msg("completion relay: noop (no endpoint configured)")
			break
		}
		relay, err = ai.NewOpenAIAdapter(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("endpoint", cfg.AI.Endpoint).Str("model", cfg.AI.Model).Msg("completion relay: openai-compatible")
	}
	relay = ai.NewLimitedCompletion(relay, cfg.AI.ConcurrentLimit)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(credRepo, sessions, logger)
	chatUC := usecase.NewChatUseCase(relay, cfg.AI.Provider, cfg.AI.Timeout, cfg.Chat.HistoryLimit, logger)

	// ---- Background loops ----
	sweeper := sched.NewIdleSweeper(cfg.Auth.SweepInterval, cfg.Auth.IdleTTL, sessions, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Gateway ----
	auth := web.NewAuthManager(cfg.Auth.HMACSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.TokenTTL)
	srv := web.NewServer(userUC, chatUC, auth, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
