package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jelajah/jelajah-api/internal/assistant"
	"github.com/jelajah/jelajah-api/internal/domain/chat"
	"github.com/jelajah/jelajah-api/internal/domain/plan"
	"github.com/jelajah/jelajah-api/internal/domain/vision"
	"github.com/jelajah/jelajah-api/pkg/config"
	"github.com/jelajah/jelajah-api/pkg/db"
	"github.com/jelajah/jelajah-api/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Metrics *observability.AssistantMetrics

	// Assistant chains
	TextRunner   assistant.Runner
	VisionRunner assistant.Runner

	// Repositories
	PlanRepo plan.Repository
	ChatRepo chat.Repository

	// Services
	PlanService   plan.Service
	ChatService   chat.Service
	VisionService vision.Service

	// Handlers
	PlanHandler   *plan.Handler
	ChatHandler   *chat.Handler
	VisionHandler *vision.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initAssistant(ctx); err != nil {
		return nil, fmt.Errorf("failed to init assistant: %w", err)
	}

	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initAssistant builds the provider adapters and the two fallback chains.
// Text requests prefer Gemini; vision requests prefer HuggingFace, whose
// caption models handle photos better than a generic text endpoint.
func (d *Dependencies) initAssistant(ctx context.Context) error {
	if d.Config.Observability.MetricsEnabled {
		d.Metrics = observability.NewAssistantMetrics(prometheus.DefaultRegisterer)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	gemini, err := assistant.NewGeminiAdapter(ctx, d.Config.Providers.GeminiAPIKey, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to init gemini adapter: %w", err)
	}
	hf := assistant.NewHuggingFaceAdapter(d.Config.Providers.HuggingFaceKey, httpClient, d.Logger)
	replicate := assistant.NewReplicateAdapter(
		d.Config.Providers.ReplicateToken,
		d.Config.Providers.ReplicateEnabled,
		httpClient,
		d.Logger,
	)

	opts := []assistant.Option{assistant.WithMetrics(d.Metrics)}

	d.TextRunner = assistant.NewOrchestrator(
		[]assistant.Adapter{gemini, hf, replicate}, d.Logger, opts...)
	d.VisionRunner = assistant.NewOrchestrator(
		[]assistant.Adapter{hf, gemini, replicate}, d.Logger, opts...)

	d.Logger.Info("assistant chains initialized",
		slog.Bool("gemini", gemini.Configured()),
		slog.Bool("huggingface", hf.Configured()),
		slog.Bool("replicate", replicate.Configured()))
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.PlanRepo = plan.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.ChatRepo = chat.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.PlanService = plan.NewServiceImpl(d.TextRunner, d.PlanRepo, d.Logger)
	d.ChatService = chat.NewServiceImpl(d.TextRunner, d.ChatRepo, d.Logger)
	d.VisionService = vision.NewServiceImpl(d.VisionRunner, d.Logger)
	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.PlanHandler = plan.NewHandler(d.PlanService, d.Logger)
	d.ChatHandler = chat.NewHandler(d.ChatService, d.Logger)
	d.VisionHandler = vision.NewHandler(d.VisionService, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
