// Command switchboard runs the agent-routing engine as an HTTP service with
// the default specialist set preloaded.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lumohq/switchboard/conversation"
	"github.com/lumohq/switchboard/conversation/sqlite"
	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/httpapi"
	"github.com/lumohq/switchboard/knowledge"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
	"github.com/lumohq/switchboard/model/anthropic"
	"github.com/lumohq/switchboard/model/openai"
	"github.com/lumohq/switchboard/orchestrator"
	"github.com/lumohq/switchboard/registry"
	"github.com/lumohq/switchboard/routing"
)

func main() {
	cfg := loadConfig()

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})

	backend, err := buildBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer cleanup()

	agents := registry.NewInMemory()
	for _, desc := range registry.DefaultSpecialists() {
		if err := agents.Register(desc); err != nil {
			log.Fatalf("Failed to register agent %s: %v", desc.ID, err)
		}
	}

	controller := orchestrator.NewController(agents, store, knowledge.NewInMemory(), backend,
		func(o *orchestrator.Options) {
			o.Scorer = routing.DefaultTable()
			o.AgentTimeout = cfg.AgentTimeout
			o.Logger = logger
		},
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := httpapi.NewHandler(controller, agents, store, logger)
	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	logger.Info("switchboard started", "port", cfg.Port, "provider", backend.Info().Provider)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildBackend selects the generative backend from configuration.
func buildBackend(cfg config) (model.Backend, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewBackend(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "openai":
		return openai.NewBackend(), nil
	case "mock":
		return model.NewMockBackend("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Provider)
	}
}

// buildStore selects the conversation store from configuration.
func buildStore(cfg config) (core.ConversationStore, func(), error) {
	if cfg.DatabasePath == "" {
		return conversation.NewInMemoryStore(), func() {}, nil
	}
	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
