package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/clients/marketdata"
	"github.com/evmarklabs/holdco-mtm/internal/config"
	"github.com/evmarklabs/holdco-mtm/internal/database"
	"github.com/evmarklabs/holdco-mtm/internal/modules/alerts"
	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/comps"
	"github.com/evmarklabs/holdco-mtm/internal/modules/holdco"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
	"github.com/evmarklabs/holdco-mtm/internal/modules/valuation"
	"github.com/evmarklabs/holdco-mtm/internal/scheduler"
	"github.com/evmarklabs/holdco-mtm/internal/server"
	"github.com/evmarklabs/holdco-mtm/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting HoldCo MTM")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	// Repositories
	settingsRepo := settings.NewRepository(db.Conn(), log)
	companyRepo := companies.NewRepository(db.Conn(), log)
	compRepo := comps.NewRepository(db.Conn(), log)
	valuationRepo := valuation.NewSnapshotRepository(db.Conn(), log)
	holdcoRepo := holdco.NewSnapshotRepository(db.Conn(), log)
	alertRepo := alerts.NewRepository(db.Conn(), log)

	// Services
	// Leave the source as a nil interface when no provider is configured
	// so refresh requests fail loudly instead of dialing an empty URL.
	var fundamentalsSource comps.FundamentalsSource
	if cfg.MarketDataURL != "" {
		fundamentalsSource = marketdata.NewClient(cfg.MarketDataURL, log)
	} else {
		log.Warn().Msg("MARKET_DATA_URL not set, comp refreshes disabled")
	}
	compService := comps.NewService(compRepo, companyRepo, fundamentalsSource, log)
	valuationService := valuation.NewService(db.Conn(), companyRepo, compService, valuationRepo, settingsRepo, log)
	holdcoService := holdco.NewService(companyRepo, valuationRepo, holdcoRepo, settingsRepo, log)
	alertService := alerts.NewService(alertRepo, companyRepo, compService, valuationRepo, settingsRepo, log)
	importer := companies.NewImporter(companyRepo, compRepo, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := registerJobs(sched, cfg, compService, alertService, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port: cfg.Port,
		Log:  log,
		DB:   db,
		Handlers: server.Handlers{
			Companies: companies.NewHandler(companyRepo, importer, log),
			Comps:     comps.NewHandler(compRepo, compService, log),
			Valuation: valuation.NewHandler(valuationService, log),
			HoldCo:    holdco.NewHandler(holdcoService, log),
			Alerts:    alerts.NewHandler(alertService, alertRepo, log),
			Settings:  settings.NewHandler(settingsRepo, log),
		},
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	compService *comps.Service,
	alertService *alerts.Service,
	log zerolog.Logger,
) error {
	// Comp refresh needs an upstream quote source; skip when none is configured
	if cfg.MarketDataURL != "" {
		if err := sched.AddJob(cfg.RefreshSchedule, scheduler.NewCompRefreshJob(compService, log)); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("MARKET_DATA_URL not set, comp refresh job disabled")
	}

	return sched.AddJob(cfg.AlertSchedule, scheduler.NewAlertSweepJob(alertService, log))
}
