package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/handler"
	"github.com/Dan9191/finance-insights/internal/integrations/llm"
	"github.com/Dan9191/finance-insights/internal/middleware"
	"github.com/Dan9191/finance-insights/internal/prompt"
	"github.com/Dan9191/finance-insights/internal/realtime"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/Dan9191/finance-insights/internal/scheduler"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/Dan9191/finance-insights/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize layers
	repo := repository.NewRepository(db)
	format := prompt.Format{CurrencySymbol: cfg.CurrencySymbol, CurrencyName: cfg.CurrencyName}
	svc := service.NewService(repo, newCompleter(cfg, logger), logger, format)
	h := handler.NewHandler(svc, logger)

	// Realtime updates
	hub := realtime.NewHub(svc, logger)
	svc.SetPublisher(hub)
	var events <-chan realtime.Event
	listener, err := realtime.NewListener(cfg.DBConn, logger)
	if err != nil {
		logger.Warnf("Database notifications disabled: %v", err)
	} else {
		defer listener.Close()
		events = listener.Events()
		go listener.Run(ctx)
	}
	go hub.Run(ctx, events)

	// Weekly digest
	digest := scheduler.NewDigest(repo, svc, email.NewSender(cfg, logger), cfg.CurrencySymbol, logger)
	if err := digest.Start(cfg.DigestSchedule); err != nil {
		logger.Fatalf("Failed to start digest: %v", err)
	}
	defer digest.Stop()

	// Setup router
	limiter := middleware.NewRateLimiter(cfg.AIRateLimit, cfg.AIRateBurst, logger)
	router := handler.Routes(h,
		mux.MiddlewareFunc(middleware.Auth(cfg.JWTSecret, logger)),
		limiter.Middleware,
		hub.ServeWS,
		logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 10*time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}

func newCompleter(cfg *config.Config, logger *logrus.Logger) llm.Completer {
	if cfg.LLMProvider == "anthropic" {
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:  cfg.AnthropicKey,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.LLMTimeout,
		}, logger)
	}
	return llm.NewGatewayClient(llm.GatewayConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, logger)
}
