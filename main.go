package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/hr-assistant/server/internal/agent/graph"
	"github.com/hr-assistant/server/internal/agent/graph/conversations"
	"github.com/hr-assistant/server/internal/agent/llm"
	"github.com/hr-assistant/server/internal/agent/repo"
	"github.com/hr-assistant/server/internal/chat"
	"github.com/hr-assistant/server/internal/config"
	"github.com/hr-assistant/server/internal/metrics"
	logx "github.com/hr-assistant/server/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env(), Service: "hr-assistant"})

	if cfg.TraceStdout {
		shutdown, err := initTracer()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}
	if cfg.MetricsStdout {
		shutdown, err := initMeter()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialize meter")
		}
		defer shutdown(context.Background())
	}

	// ====================================================
	// Infrastructure
	dbConfig, err := cfg.Database.ParseConfig()
	if err != nil {
		logx.Fatal().Err(err).Msg("Invalid database configuration")
	}
	store, err := repo.NewPostgresStore(dbConfig, cfg.Database.ReadOnly)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create database store")
	}

	// Transcripts are optional; without Redis the history routes answer 404.
	var transcripts *conversations.TranscriptManager
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer rdb.Close()
		transcripts = conversations.NewTranscriptManager(
			repo.NewRedisTranscriptRepository(rdb, cfg.Transcript.TTL, cfg.Transcript.MaxHistory),
			cfg.Transcript.MaxHistory,
		)
		logx.Info().Msg("Connected to Redis; transcripts enabled")
	}

	policies := repo.LoadPolicyBook(cfg.Policy.File)

	// ====================================================
	// Workflow
	chatModel, err := llm.NewChatModel(ctx, cfg.Oracle)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat model")
	}
	oracle, err := llm.NewChatOracle(chatModel)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create oracle")
	}
	logx.Info().Str("provider", chatModel.Provider).Str("model", chatModel.ModelName).Msg("Oracle ready")

	runner, err := graph.BuildWorkflow(ctx, graph.Config{
		Oracle:       oracle,
		Database:     store,
		Policies:     policies,
		FallbackName: cfg.Workflow.FallbackName,
		ScopeByEmail: true,
		MaxRunSteps:  cfg.Workflow.MaxRunSteps,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build workflow")
	}

	chatMetrics, err := metrics.NewChatMetrics()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat metrics")
	}
	service, err := chat.NewService(chat.ServiceConfig{
		Runner:      runner,
		Transcripts: transcripts,
		Metrics:     chatMetrics,
		Timeout:     cfg.Workflow.Timeout,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat service")
	}

	// ====================================================
	// HTTP
	if cfg.Env().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	chat.NewHandler(service, store).Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.Workflow.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logx.Info().Str("port", cfg.Port).Msg("Starting HR assistant server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logx.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Server forced to shutdown")
	}
	logx.Info().Msg("Server exited")
}

// initTracer installs a stdout span exporter and returns its shutdown func.
func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// initMeter installs a stdout metric exporter read every minute and returns its shutdown func.
func initMeter() (func(context.Context) error, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Minute))),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}

// writeTimeout leaves room to write the reply after the workflow deadline.
// Without a workflow deadline the write has none either.
func writeTimeout(workflow time.Duration) time.Duration {
	if workflow <= 0 {
		return 0
	}
	return workflow + 10*time.Second
}
