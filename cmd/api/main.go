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

	"github.com/straye-as/product-configurator/docs"
	"github.com/straye-as/product-configurator/internal/auth"
	"github.com/straye-as/product-configurator/internal/config"
	"github.com/straye-as/product-configurator/internal/database"
	"github.com/straye-as/product-configurator/internal/http/handler"
	"github.com/straye-as/product-configurator/internal/http/middleware"
	"github.com/straye-as/product-configurator/internal/http/router"
	"github.com/straye-as/product-configurator/internal/jobs"
	"github.com/straye-as/product-configurator/internal/logger"
	"github.com/straye-as/product-configurator/internal/repository"
	"github.com/straye-as/product-configurator/internal/service"
	"github.com/straye-as/product-configurator/internal/storage"
	"go.uber.org/zap"
)

// @title Product Configurator API
// @version 1.0
// @description Multi-step product configurator: admin authoring, shop quotes and cart discounts

// @contact.name API Support
// @contact.email support@straye.io

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In development secrets come from environment variables, in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	snapshotStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	formatter, err := service.NewPriceFormatter(cfg.Pricing.Currency, cfg.Pricing.Locale)
	if err != nil {
		return fmt.Errorf("failed to initialize price formatter: %w", err)
	}

	// Repositories
	store := repository.NewStore(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Services
	applier := service.NewQuantityRuleApplier()
	resolver := service.NewPriceResolverService(service.NewReductionPickerService(), formatter)
	catalog := service.NewCatalogService(store.Products, formatter)
	snapshotService := service.NewSnapshotService(snapshotRepo, snapshotStorage, log)
	configuratorService := service.NewConfiguratorService(
		store,
		service.NewConfiguratorValidatorService(),
		service.NewConfiguratorFactory(),
		snapshotService,
		log,
	)
	quoteService := service.NewQuoteService(store.Configurators, catalog, applier, resolver, formatter, log)
	cartService := service.NewCartService(store, applier, resolver, formatter, cfg.Pricing.DiscountCodePrefix, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db, log),
		handler.NewAuthHandler(log),
		handler.NewConfiguratorHandler(configuratorService, snapshotService, log),
		handler.NewPublicHandler(quoteService, log),
		handler.NewCartHandler(cartService, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.CartRuleJanitorEnabled {
		scheduler = jobs.NewScheduler(log)
		janitor := jobs.NewCartRuleJanitor(
			store.CartRules,
			cfg.Pricing.DiscountCodePrefix,
			cfg.Jobs.CartRuleRetention(),
			cfg.Server.RequestTimeoutDuration(),
			log,
		)
		if err := jobs.RegisterCartRuleJanitor(scheduler, janitor, cfg.Jobs.CartRuleJanitorSchedule); err != nil {
			log.Error("Failed to register cart rule janitor", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with cart rule janitor",
				zap.String("cron_expr", cfg.Jobs.CartRuleJanitorSchedule),
				zap.Duration("retention", cfg.Jobs.CartRuleRetention()),
			)
		}
	} else {
		log.Info("Cart rule janitor disabled")
	}

	var h http.Handler = rt.Setup()
	if timeout := cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		h = http.TimeoutHandler(h, timeout, "request timed out")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
