package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/api"
	"github.com/nutricoach/backend/internal/database"
	"github.com/nutricoach/backend/internal/logging"
	"github.com/nutricoach/backend/internal/middleware"
	"github.com/nutricoach/backend/internal/server"
	"github.com/nutricoach/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the schema before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Environment, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if migrateOnStart {
		if err := database.RunMigrations(db); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	rdb := database.OptionalRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	profiles := service.NewDietProfileService(db, logger)
	plans := service.NewPlanService(db, rdb, nil, profiles, logger)
	chat := service.NewLLMService(service.LLMConfig{
		APIKey:  cfg.LLMAPIKey,
		APIURL:  cfg.LLMAPIURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, rdb, profiles, plans, logger)

	var store service.ObjectStore
	if cfg.ExportEnabled() {
		s3cfg, err := config.NewS3Config(cmd.Context(), cfg)
		if err != nil {
			logger.Warn("plan export disabled", zap.Error(err))
		} else {
			store = s3cfg
		}
	}

	deps := api.Dependencies{
		DB:       db,
		Auth:     service.NewAuthService(db, cfg.JWTSecret, logger),
		Profiles: profiles,
		Plans:    plans,
		Chat:     chat,
		Exporter: service.NewPlanExporter(store, plans, logger),
	}
	if rdb != nil {
		deps.ChatLimiter = middleware.NewChatRateLimiter(rdb, cfg.ChatRateLimit, logger)
		deps.PlanLimiter = middleware.NewPlanGenerationRateLimiter(rdb, cfg.PlanRateLimit, logger)
	}

	srv := server.New(cfg, deps, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
