package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"persona-chat/internal/config"
	"persona-chat/internal/handlers"
	"persona-chat/internal/middleware"
	"persona-chat/internal/router"
	"persona-chat/internal/services"
	"persona-chat/internal/session"
	"persona-chat/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	setupLogging(cfg)
	log.Info().Msg("🚀 Starting Persona Chat Backend...")
	log.Info().Msg("✓ Environment variables loaded")

	// ──── Step 2: Initialize OpenAI Client ────
	openAIService := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; chat requests will return error turns")
	} else {
		log.Info().Msg("✓ OpenAI client initialized")
	}
	tokenCounter := services.NewTokenCounter()

	// ──── Step 3: Initialize Session Store ────
	defaults := cfg.ChatDefaults()
	store := session.NewStore(openAIService, defaults, cfg.SessionTTL)
	defer store.Close()
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, store)
	log.Info().
		Str("model", defaults.Model).
		Float64("temperature", defaults.Temperature).
		Int("token_budget", defaults.TokenBudget).
		Dur("ttl", cfg.SessionTTL).
		Msg("✓ Session store ready")

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(sessionAuth, store, cfg.FrontendURL)
	store.OnExpire(wsHub.CloseSession)
	log.Info().Msg("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(wsHub, tokenCounter)
	sessionHandler := handlers.NewSessionHandler(store, sessionAuth, chatHandler, defaults, !cfg.IsDevelopment())

	// ──── Step 5: Start HTTP Server ────
	r := router.New(sessionAuth, sessionHandler, chatHandler, wsHub, cfg.FrontendURL)

	// WriteTimeout leaves room for a slow completion call.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info().Msgf("✓ Persona Chat Backend ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Info().Msgf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
