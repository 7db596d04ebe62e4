package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	v1 "legacyorders/api/v1"
	"legacyorders/database"
	"legacyorders/internal/config"
	"legacyorders/internal/metrics"
	ordersapp "legacyorders/internal/orders/application"
	ordersinfra "legacyorders/internal/orders/infrastructure"
	"legacyorders/internal/platform/logger"
	sharedinfra "legacyorders/internal/shared/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", "error", err)
	}
}

// run ouvre la base, monte le serveur HTTP et bloque jusqu'à l'annulation de ctx
func run(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	db, dialect, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	lg.Info("database connected", "driver", dialect)

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db, dialect); err != nil {
			return err
		}
	}

	a := newApp(cfg, lg, db, dialect)
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// app services câblés autour d'une connexion SQL
type app struct {
	router  *gin.Engine
	imports *ordersapp.ImportService
	queries *ordersapp.QueryService
	cache   *sharedinfra.ShardedCache
}

func newApp(cfg *config.Config, lg *logger.Logger, db *sql.DB, dialect sharedinfra.Dialect) *app {
	reg := metrics.NewRegistry()
	cache := sharedinfra.NewShardedCache(16, time.Minute)

	queries := ordersapp.NewQueryService(
		ordersinfra.NewOrderQueryRepository(db, dialect),
		cache,
		cfg.Query.CacheTTL,
		reg,
		lg,
	)

	// sqlite n'accepte qu'un écrivain à la fois
	workers := cfg.Import.Workers
	if dialect == sharedinfra.DialectSQLite {
		workers = 1
	}
	imports := ordersapp.NewImportService(
		ordersapp.NewFileParser(lg, cfg.Import.StrictParsing),
		ordersinfra.NewSQLUnitOfWork(db, dialect),
		queries,
		reg,
		lg,
		ordersapp.ImportOptions{MaxBytes: cfg.Import.MaxUploadBytes, Workers: workers},
	)

	gin.SetMode(cfg.HTTP.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestID(), v1.RequestLogger(lg))

	router.GET("/api/health", v1.Health)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(reg.Handler()))
	}
	v1.NewHandlers(imports, queries, cfg.Import.MaxUploadBytes, lg).RegisterRoutes(router)

	return &app{
		router:  router,
		imports: imports,
		queries: queries,
		cache:   cache,
	}
}

func (a *app) Close() {
	a.cache.Close()
}
