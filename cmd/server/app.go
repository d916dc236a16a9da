package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/analyzer"
	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/curriculum"
	"github.com/fluentloop/tutor-api/internal/embedding"
	"github.com/fluentloop/tutor-api/internal/events"
	"github.com/fluentloop/tutor-api/internal/platform/gemini"
	"github.com/fluentloop/tutor-api/internal/platform/openai"
	"github.com/fluentloop/tutor-api/internal/platform/postgres"
	"github.com/fluentloop/tutor-api/internal/service"
	"github.com/fluentloop/tutor-api/internal/service/auth"
	"github.com/fluentloop/tutor-api/internal/store"
	"github.com/fluentloop/tutor-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	progressStore  store.ProgressStore
	analysisStore  store.AnalysisStore
	embeddingStore store.EmbeddingStore
	taskStore      *postgres.PostgresTaskStore

	// Curriculum and analysis
	registry           *curriculum.Registry
	resolver           *curriculum.Resolver
	transcriptAnalyzer *analyzer.Analyzer
	embedder           embedding.Embedder

	// Services
	jwtService     auth.JWTService
	contextService service.ContextService
	sessionService service.SessionService

	// Event system and background tasks
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts core dependencies that must be
// established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Curriculum registry with the built-in language catalogs
	app.registry = curriculum.NewRegistry()
	if err := curriculum.RegisterBuiltins(app.registry); err != nil {
		return nil, fmt.Errorf("failed to register curricula: %w", err)
	}
	app.resolver = curriculum.NewResolver(app.registry)
	logger.Info("curriculum registry initialized", "languages", app.registry.Languages())

	app.transcriptAnalyzer = setupAnalyzer(cfg.Analysis, logger)

	// Stores
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.analysisStore = postgres.NewPostgresAnalysisStore(db, logger)
	app.embeddingStore = postgres.NewPostgresEmbeddingStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.embedder, err = setupEmbedder(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		"provider", cfg.LLM.Provider,
		"model", app.embedder.ModelName())

	// Task factory for embedding work, shared by the event handler and
	// by recovery of persisted tasks.
	taskFactory := task.NewSessionEmbeddingTaskFactory(
		app.analysisStore,
		app.embedder,
		app.embeddingStore,
		logger,
	)
	app.taskStore.SetReconstructor(func(taskType string, payload []byte) (task.Task, error) {
		if taskType != task.TaskTypeSessionEmbedding {
			return nil, fmt.Errorf("unknown task type %q", taskType)
		}
		var p struct {
			SessionID uuid.UUID `json:"session_id"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return taskFactory.CreateTask(p.SessionID)
	})

	app.taskRunner, err = setupTaskRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Event emitter bridges synchronous request handling to the
	// background embedding pipeline.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger))
	app.eventEmitter = emitter

	app.contextService, err = service.NewContextService(
		app.registry,
		app.resolver,
		app.progressStore,
		app.analysisStore,
		cfg.Analysis,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create context service: %w", err)
	}

	app.sessionService, err = service.NewSessionService(
		app.registry,
		app.resolver,
		app.transcriptAnalyzer,
		app.progressStore,
		app.analysisStore,
		app.eventEmitter,
		cfg.Analysis,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupAnalyzer builds the transcript analyzer and registers the
// language-specific matchers. Japanese needs a morphological tokenizer
// because word boundaries are not whitespace; if the dictionary fails
// to load the analyzer falls back to the default matcher for Japanese
// rather than refusing to start.
func setupAnalyzer(cfg config.AnalysisConfig, logger *slog.Logger) *analyzer.Analyzer {
	a := analyzer.New(analyzer.CompletionPolicy{Threshold: cfg.CompletionThreshold}, logger)

	japaneseMatcher, err := analyzer.NewJapaneseMatcher()
	if err != nil {
		logger.Warn("failed to initialize Japanese matcher, using default word matching",
			"error", err)
	} else {
		a.RegisterMatcher("ja", japaneseMatcher)
	}

	return a
}

// setupEmbedder selects the embedding backend from configuration.
func setupEmbedder(
	ctx context.Context,
	cfg config.LLMConfig,
	logger *slog.Logger,
) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewEmbedder(ctx, logger, cfg)
	case "openai":
		return openai.NewEmbedder(logger, cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

// setupTaskRunner initializes and starts the background task processor.
func setupTaskRunner(app *application) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
