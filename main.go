package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/epeers/refsync/config"
	_ "github.com/epeers/refsync/docs"
	"github.com/epeers/refsync/internal/cache"
	"github.com/epeers/refsync/internal/database"
	"github.com/epeers/refsync/internal/flatfiles"
	"github.com/epeers/refsync/internal/handlers"
	"github.com/epeers/refsync/internal/importer"
	"github.com/epeers/refsync/internal/middleware"
	"github.com/epeers/refsync/internal/polygon"
	"github.com/epeers/refsync/internal/repository"
	"github.com/epeers/refsync/internal/services"
)

// @title refsync API
// @version 1.0
// @description Polygon.io reference data import and split-adjusted prices
// @BasePath /
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
func main() {
	importPath := flag.String("import", "", "run the import file at this path once and exit")
	dryRun := flag.Bool("dry-run", false, "with -import, report stages without changing anything")
	yes := flag.Bool("yes", false, "with -import, consent to a destructive import")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Polygon clients
	polyClient := polygon.NewClient(cfg.APIKey)
	var objects flatfiles.ObjectStore
	if cfg.AccessKey != "" {
		objects = flatfiles.NewS3Store(flatfiles.DefaultEndpoint, cfg.AccessKey, cfg.APIKey)
	} else {
		log.Warn("POLYGON_ACCESS_KEY is not set; flat file sync is disabled")
	}

	// Initialize caches
	memCache := cache.NewMemoryCache(5 * time.Minute)

	// Initialize repositories
	transactionRepo := repository.NewTransactionRepository(db.Pool)
	remoteFileRepo := repository.NewRemoteFileRepository(db.Pool)
	splitRepo := repository.NewSplitRepository(db.Pool)
	priceRepo := repository.NewPriceRepository(db.Pool)

	// Initialize services
	adjustSvc := services.NewAdjustmentService(memCache, priceRepo, splitRepo, importer.SourceName)

	newImporter := func(path string) handlers.ImporterFactory {
		return func(dryRun bool, notifier importer.Notifier) (*importer.Importer, error) {
			f, err := config.LoadImportFile(path)
			if err != nil {
				return nil, &importer.ConfigurationError{Field: "import file", Message: err.Error()}
			}
			return importer.NewImporter(f.Configuration(cfg.APIKey, cfg.AccessKey), importer.Dependencies{
				API:          polyClient,
				Transactions: transactionRepo,
				RemoteFiles:  remoteFileRepo,
				Splits:       splitRepo,
				Objects:      objects,
				Notifier:     notifier,
			}, dryRun)
		}
	}

	if *importPath != "" {
		if err := runImport(ctx, newImporter(*importPath), *dryRun, *yes); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(newImporter(cfg.ImportConfig), adjustSvc)

	// Setup Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin routes
	admin := router.Group("/admin", middleware.RequireAdminKey(cfg.AdminKey))
	admin.GET("/import/danger", adminHandler.GetImportDanger)
	admin.POST("/import", adminHandler.RunImport)
	admin.GET("/adjusted_prices", adminHandler.GetAdjustedPrices)
	admin.POST("/split_factors", adminHandler.PreviewSplitFactors)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}

// runImport runs one import from the command line
func runImport(ctx context.Context, newImporter handlers.ImporterFactory, dryRun, confirmed bool) error {
	imp, err := newImporter(dryRun, importer.LogNotifier{})
	if err != nil {
		return err
	}

	if dangerous, msgs := imp.ContainsDanger(); dangerous && !confirmed {
		for _, m := range msgs {
			fmt.Fprintln(os.Stderr, m)
		}
		return errors.New("destructive import not confirmed; rerun with -yes")
	}

	elapsed, err := imp.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"elapsed":    elapsed.Round(time.Millisecond),
		"stragglers": imp.Retried(),
		"dry_run":    dryRun,
	}).Info("import finished")
	return nil
}
