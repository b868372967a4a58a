package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/config"
	"github.com/Jmatos87/queryflow/pkg/database"
	"github.com/Jmatos87/queryflow/pkg/handlers"
	"github.com/Jmatos87/queryflow/pkg/ingest"
	"github.com/Jmatos87/queryflow/pkg/llm"
	"github.com/Jmatos87/queryflow/pkg/mcp"
	"github.com/Jmatos87/queryflow/pkg/mcp/tools"
	"github.com/Jmatos87/queryflow/pkg/repositories"
	"github.com/Jmatos87/queryflow/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	// Migrations run over database/sql; the pool below is pgx-native.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.ConnectionString(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: time.Duration(cfg.Database.MaxConnLifetimeMinutes) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.Database.MaxConnIdleMinutes) * time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	generator, err := llm.NewGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	datasetRepo := repositories.NewDatasetRepository(db)
	historyRepo := repositories.NewQueryHistoryRepository(db)

	analyzer := ingest.NewAnalyzer(cfg.Ingest.ClassifyThreshold, cfg.Ingest.SampleSize)
	loader := ingest.NewLoader(db, cfg.Ingest.BatchSize, logger)
	executor := services.NewQueryExecutor(db, logger)

	uploadService := services.NewUploadService(analyzer, loader, datasetRepo, cfg.Ingest.MaxUploadBytes, logger)
	datasetService := services.NewDatasetService(datasetRepo, historyRepo, loader, logger)
	queryService := services.NewQueryService(datasetRepo, historyRepo, generator, executor, logger)
	chatService := services.NewChatService(datasetRepo, historyRepo, generator, executor, cfg.Query.HistoryLimit, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(uploadService, cfg.Ingest.MaxUploadBytes, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(datasetService, logger).RegisterRoutes(mux)
	handlers.NewResultsHandler(historyRepo, logger).RegisterRoutes(mux)

	mcpServer := mcp.NewServer("queryflow", cfg.Version, logger)
	tools.RegisterDatasetTools(mcpServer.MCP(), &tools.DatasetToolDeps{
		DatasetService: datasetService,
		QueryService:   queryService,
		Logger:         logger,
	})
	handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting queryflow",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
