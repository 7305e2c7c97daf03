package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/catalog-assistant/server/internal/agent/catalog"
	"github.com/catalog-assistant/server/internal/agent/graph"
	"github.com/catalog-assistant/server/internal/agent/graph/intent"
	"github.com/catalog-assistant/server/internal/agent/model"
	"github.com/catalog-assistant/server/internal/agent/repo"
	"github.com/catalog-assistant/server/internal/core"
	"github.com/catalog-assistant/server/internal/httpapi"
	logx "github.com/catalog-assistant/server/pkg/logger"
	pkgredis "github.com/catalog-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the assistant service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	HTTP HTTPConfig

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	Gemini intent.GeminiConfig

	// Pipeline configs
	Intent            model.IntentModelConfig
	Prompt            model.PromptConfig
	Context           model.ContextConfig
	Catalog           model.CatalogConfig
	StaticCredentials model.StaticCredentialsConfig
}

type HTTPConfig struct {
	Addr                string `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeoutSeconds  int    `envconfig:"HTTP_READ_TIMEOUT_SECONDS" default:"15"`
	WriteTimeoutSeconds int    `envconfig:"HTTP_WRITE_TIMEOUT_SECONDS" default:"120"`
	ShutdownSeconds     int    `envconfig:"HTTP_SHUTDOWN_SECONDS" default:"20"`
}

func main() {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(envCfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env, Level: envCfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credentials, closeCredentials := newCredentialResolver(ctx, env, envCfg)
	defer closeCredentials()

	chatModel, err := intent.NewGeminiChatModel(ctx, envCfg.Gemini, envCfg.Intent)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create intent chat model")
	}

	runner, err := graph.BuildPipeline(ctx, graph.Config{
		Credentials:   credentials,
		ClientFactory: catalog.NewWooFactory(envCfg.Catalog),
		ChatModel:     chatModel,
		ModelName:     envCfg.Intent.Model,
		Context:       envCfg.Context,
		Catalog:       envCfg.Catalog,
		Prompt:        envCfg.Prompt,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	srv := &http.Server{
		Addr:         envCfg.HTTP.Addr,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(runner)),
		ReadTimeout:  time.Duration(envCfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(envCfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logx.Info().Str("addr", srv.Addr).Str("environment", env.String()).Msg("Catalog assistant listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(envCfg.HTTP.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newCredentialResolver uses Redis when REDIS_URL is set and the static
// CATALOG_* credentials otherwise. Production always requires Redis.
func newCredentialResolver(ctx context.Context, env core.Environment, cfg AppConfig) (model.CredentialResolver, func()) {
	if !cfg.Redis.Enabled() {
		if env.IsProduction() {
			logx.Fatal().Msg("REDIS_URL is required in production")
		}
		logx.Warn().Msg("REDIS_URL not set, using static catalog credentials")
		return repo.NewStaticCredentialResolver(cfg.StaticCredentials), func() {}
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	logx.Info().Msg("Connected to Redis successfully")
	return repo.NewRedisCredentialRepository(rdb), func() { _ = rdb.Close() }
}
