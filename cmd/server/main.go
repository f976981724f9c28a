package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doccheck/internal/api"
	"github.com/dgallion1/doccheck/internal/config"
	"github.com/dgallion1/doccheck/internal/fetch"
	"github.com/dgallion1/doccheck/internal/pipeline"
	"github.com/dgallion1/doccheck/internal/retry"
	"github.com/dgallion1/doccheck/internal/semantic"
	"github.com/dgallion1/doccheck/internal/structure"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.Load()
	log := newLogger(cfg)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	cookies, err := fetch.LoadCookies(cfg.FetchCookiesFile)
	if err != nil {
		log.Error("failed to load cookies", "error", err)
		os.Exit(1)
	}
	fetcher := fetch.NewClient(fetch.Options{
		Timeout:          cfg.FetchTimeout,
		MinContentLength: cfg.FetchMinContentLength,
		Cookies:          cookies,
		Retry:            cfg.Retry,
		Log:              log,
		OnRetry:          pipeline.ObserveRetry("fetch"),
	})

	completer, closeLLM := newCompleter(cfg)
	var (
		llm api.LLMInfo
		sm  structure.SemanticMatcher
	)
	if completer != nil {
		policy := retry.NewPolicy(cfg.Retry, "semantic_match", log)
		policy.OnRetry = pipeline.ObserveRetry("semantic_match")
		matcher := semantic.NewMatcher(completer, policy, log)
		matcher.Observe = pipeline.ObserveSemantic
		llm, sm = matcher, matcher
		log.Info("semantic matcher enabled", "provider", cfg.LLMProvider, "model", matcher.Model())
	} else {
		log.Info("semantic matcher disabled, critical chapters use literal matching only")
	}

	checker := structure.NewChecker(structure.NewCriticalValidator(sm, log), log)
	checker.MaxMissing = cfg.MaxMissingChapters
	checker.Normalizer = structure.Normalizer{StripNumbering: true, StripPunctuation: cfg.StripPunctuation}
	checker.Validator.Normalizer = checker.Normalizer

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, fetcher, checker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		closeLLM()
		fetcher.Close()
	}()

	log.Info("starting doccheck",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"critical_chapters", cfg.CriticalChapters,
		"max_missing_chapters", cfg.MaxMissingChapters,
		"structure_check", cfg.StructureCheckEnabled,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds a JSON logger, or a colored console logger when
// LOG_FORMAT=console.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	var w io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCompleter returns the configured model client and its closer. The
// completer is nil when no provider is configured.
func newCompleter(cfg config.Config) (semantic.Completer, func()) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		c := semantic.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTimeout)
		return c, c.Close
	case config.ProviderOpenAI:
		c := semantic.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		return c, c.Close
	default:
		return nil, func() {}
	}
}
