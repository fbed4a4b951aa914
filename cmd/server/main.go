package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/service"
	"github.com/albertobarcelos/nexflow/internal/config"
	"github.com/albertobarcelos/nexflow/internal/engine"
	"github.com/albertobarcelos/nexflow/internal/export"
	httpadapter "github.com/albertobarcelos/nexflow/internal/interfaces/http"
	"github.com/albertobarcelos/nexflow/internal/repository"
	"github.com/albertobarcelos/nexflow/pkg/database"
	"github.com/albertobarcelos/nexflow/pkg/utils"
)

func main() {
	// Environment overrides from a local .env file, if present
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting nexflow card pipeline engine",
		zap.Int("port", cfg.Server.Port),
		zap.String("db", cfg.Database.Path))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export directory", zap.Error(err))
	}

	cardRepo := repository.NewCardRepository(db, logger)
	stepRepo := repository.NewStepRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)
	flowRepo := repository.NewFlowRepository(db, stepRepo, logger)

	eng := engine.New(stepRepo, historyRepo, logger)
	cardService := service.NewCardService(cardRepo, stepRepo, historyRepo, db, eng, logger)
	exporter := export.NewExporter(flowRepo, cardRepo, logger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, cardService, stepRepo, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
