package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"veillellm/internal/agent"
	"veillellm/internal/config"
	"veillellm/internal/handler"
	"veillellm/internal/infrastructure/anthropic"
	"veillellm/internal/infrastructure/gemini"
	"veillellm/internal/infrastructure/history"
	"veillellm/internal/infrastructure/openai"
	"veillellm/internal/infrastructure/provider"
	"veillellm/internal/infrastructure/scheduler"
	"veillellm/internal/infrastructure/telegram"
	"veillellm/internal/llm"
	"veillellm/internal/logging"
	"veillellm/internal/ports"
	"veillellm/internal/source"
	"veillellm/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	schedule  *usecase.Scheduler
	engine    *gin.Engine
	closeFunc func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(provider.NewTheNewsAPI(cfg.News.APIToken, nil))
	registry.Register(provider.NewRSS())

	articleSource := provider.NewMultiSource(registry, cfg.News.Sources, cfg.News.Days,
		baseLogger.With("component", "source"))

	backend, err := buildBackend(cfg.LLM)
	if err != nil {
		return nil, err
	}

	invoker := llm.NewInvoker(backend, llm.DefaultRetryPolicy(cfg.LLM.MaxRetries),
		baseLogger.With("component", "invoker"))
	stages := agent.NewRunner(invoker, baseLogger.With("component", "stages"))

	store, closeFunc, err := buildHistoryStore(cfg.History)
	if err != nil {
		return nil, err
	}

	notifier := telegram.NewNotifier(
		cfg.Notifications.Telegram.BotToken,
		cfg.Notifications.Telegram.ChatID,
		baseLogger.With("component", "telegram"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   articleSource,
		Stages:   stages,
		Notifier: notifier,
		History:  store,
		Keywords: cfg.News.Keywords,
		Limit:    cfg.News.Limit,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	hour, minute := cfg.Scheduler.HourMinute()
	daily := scheduler.NewDaily(hour, minute, cfg.Scheduler.Location())
	schedule := usecase.NewScheduler(daily, pipeline, baseLogger.With("component", "scheduler"))

	engine := buildEngine(cfg.Server, pipeline, store, schedule, baseLogger)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		schedule:  schedule,
		engine:    engine,
		closeFunc: closeFunc,
	}, nil
}

// Run starts the scheduler and serves the control surface until the
// context is cancelled or the server stops.
func (a *Application) Run(ctx context.Context) error {
	if err := a.schedule.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		_ = a.schedule.Stop(context.Background())
		if a.closeFunc != nil {
			_ = a.closeFunc()
		}
	}()

	a.logger.Info("starting control surface",
		"address", a.cfg.Server.Address,
		"next_run", a.schedule.NextRun())

	server := &http.Server{Addr: a.cfg.Server.Address, Handler: a.engine}
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func buildBackend(cfg config.LLMConfig) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case "", "gemini":
		return gemini.New(cfg.Model, cfg.GeminiAPIKey, cfg.Timeout()), nil
	case "openai":
		return openai.New(cfg.Model, cfg.OpenAIAPIKey), nil
	case "anthropic":
		return anthropic.New(cfg.Model, cfg.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func buildHistoryStore(cfg config.HistoryConfig) (ports.HistoryStore, func() error, error) {
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open history database: %w", err)
		}
		return history.NewPostgresStore(db), db.Close, nil
	}

	file := cfg.File
	if file == "" {
		file = "execution_history.json"
	}
	return history.NewFileStore(file), nil, nil
}

func buildEngine(cfg config.ServerConfig, pipeline *usecase.Pipeline, store ports.HistoryStore, schedule *usecase.Scheduler, logger *slog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	h := handler.NewPipelineHandler(pipeline, store, schedule, logger.With("component", "handler"))
	h.Register(engine)
	return engine
}
