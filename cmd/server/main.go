// Intervu - AI Mock Interview Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/intervu-ai/intervu/internal/api"
	"github.com/intervu-ai/intervu/internal/coach"
	"github.com/intervu-ai/intervu/internal/config"
	"github.com/intervu-ai/intervu/internal/domain"
	"github.com/intervu-ai/intervu/internal/interview"
	"github.com/intervu-ai/intervu/internal/live"
	"github.com/intervu-ai/intervu/internal/llm"
	"github.com/intervu-ai/intervu/internal/middleware"
	"github.com/intervu-ai/intervu/internal/speech"
	"github.com/intervu-ai/intervu/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Content service (optional: without an API key the interview
	// endpoints report 502 and only live coaching works).
	var content interview.ContentService
	aiEnabled := false
	if cfg.GeminiAPIKey != "" {
		content = llm.NewGemini(cfg.GeminiAPIKey, llm.WithModel(cfg.GeminiModel))
		aiEnabled = true
		slog.Info("Content service initialized", "model", cfg.GeminiModel)
	} else {
		content = unavailableContent{}
		slog.Info("AI features disabled (GEMINI_API_KEY not set)")
	}

	// Transcription service (optional).
	var transcriber interview.Transcriber
	sttEnabled := false
	if cfg.WhisperURL != "" {
		transcriber = speech.NewHTTPTranscriber(cfg.WhisperURL)
		sttEnabled = true
		slog.Info("Transcription service initialized", "url", cfg.WhisperURL)
	} else {
		transcriber = unavailableTranscriber{}
		slog.Info("Audio answers disabled (WHISPER_URL not set)")
	}

	deliveryCoach := coach.New(coach.Config{
		WPMFast:         cfg.Coaching.WPMFast,
		WPMSlow:         cfg.Coaching.WPMSlow,
		VolumeThreshold: cfg.Coaching.VolumeThreshold,
		FillerWarnRatio: cfg.Coaching.FillerWarnRatio,
	})

	streamCfg := coach.DefaultStreamConfig()
	streamCfg.VolumeThreshold = cfg.Coaching.VolumeThreshold
	streamCfg.SilenceFloor = cfg.Coaching.SilenceFloor
	streamCfg.EmitInterval = cfg.Coaching.EmitInterval
	streamCfg.SustainWindow = cfg.Coaching.SustainWindow

	// Initialize services.
	registry := interview.NewRegistry()
	orc := interview.NewOrchestrator(content, transcriber, deliveryCoach, repo, registry)
	orc.SetQuestionLimit(cfg.MaxQuestions)

	// Initialize handlers.
	interviewHandler := api.NewInterviewHandler(orc, repo)
	healthHandler := api.NewHealthHandler(repo, aiEnabled, sttEnabled)
	coachHandler := live.NewCoachHandler(streamCfg, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	interviewHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/coach", coachHandler.ServeHTTP)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Audio uploads and model calls can be slow; idle sweep handles
		// stuck sessions rather than a write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start the idle session sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry.StartSweeper(ctx, cfg.SweepInterval, cfg.SessionTTL)
	slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL, "interval", cfg.SweepInterval)

	// Mirror the in-memory sweep in the database: abandoned session rows
	// expire on the same TTL.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.DeleteExpired(ctx, time.Now().Add(-cfg.SessionTTL))
				if err != nil {
					slog.Warn("Database cleanup failed", "error", err)
				} else if n > 0 {
					slog.Info("Expired session rows removed", "count", n)
				}
			}
		}
	}()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// unavailableContent stands in when no API key is configured so the
// handlers surface a consistent 502 instead of crashing.
type unavailableContent struct{}

func (unavailableContent) GenerateQuestion(context.Context, []domain.QA, string, string) (string, error) {
	return "", errors.New("GEMINI_API_KEY is not configured")
}

func (unavailableContent) EvaluateAnswer(context.Context, string, string) (domain.Scorecard, error) {
	return domain.Scorecard{}, errors.New("GEMINI_API_KEY is not configured")
}

func (unavailableContent) GenerateReport(context.Context, []domain.QA, []domain.Scorecard) (string, error) {
	return "", errors.New("GEMINI_API_KEY is not configured")
}

type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return "", errors.New("WHISPER_URL is not configured")
}
