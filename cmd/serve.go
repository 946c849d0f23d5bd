package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evspare/internal/cart"
	"evspare/internal/db"
	"evspare/internal/handlers"
	"evspare/internal/repositories"
	"evspare/internal/services"
	"evspare/internal/session"
	"evspare/internal/storage"
	"evspare/pkg/rabbitmq"
	pkgredis "evspare/pkg/redis"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the storefront API server",
	Long: `Starts the storefront API server. Usage:

	evspare serve

Sessions and carts live in memory unless SESSION_STORE=redis. Order events are
published when RABBITMQ_URL is set; product image uploads need MINIO_ENDPOINT.
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	conn, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	checks := map[string]handlers.Check{
		"database": func(context.Context) error { return db.Ping(conn) },
	}

	// --- Sessions and carts ---
	var (
		sessions session.Store = session.NewMemoryStore()
		carts    cart.Store    = cart.NewMemoryStore()
	)
	if cfg.Session.Store == "redis" {
		rdb, err := pkgredis.Connect(ctx, pkgredis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb)
		carts = cart.NewRedisStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// --- Product images ---
	var images storage.ObjectStorage
	if cfg.ImagesEnabled() {
		mc, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		if err := mc.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("minio bucket: %w", err)
		}
		images = mc
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, product image uploads disabled")
	}

	// --- Order events ---
	var (
		events services.EventPublisher
		mq     *rabbitmq.Client
	)
	if cfg.EventsEnabled() {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			return err
		}
		defer mq.Close()
		events = mq
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(conn)
	productRepo := repositories.NewGORMProductRepository(conn)
	categoryRepo := repositories.NewGORMCategoryRepository(conn)
	orderRepo := repositories.NewGORMOrderRepository(conn)
	settingsRepo := repositories.NewGORMSettingsRepository(conn)

	// --- Services ---
	authService, err := newAuthService(cfg, userRepo, sessions, log)
	if err != nil {
		return err
	}
	settingsService := services.NewSettingsService(settingsRepo)

	app := handlers.NewApp(handlers.Deps{
		Auth:      authService,
		Products:  services.NewProductService(productRepo, categoryRepo, images, log),
		Cart:      services.NewCartService(carts, productRepo),
		Orders:    services.NewOrderService(orderRepo, productRepo, settingsService, carts, events, log),
		Analytics: services.NewAnalyticsService(orderRepo, userRepo, productRepo),
		Settings:  settingsService,
		Checks:    checks,
		Logger:    log,
		AccessLog: true,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.AppPort).Str("env", cfg.AppEnv).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if mq != nil {
		handler := services.NewOrderEventHandler(log)
		g.Go(func() error {
			return mq.Consume(gctx, handler.Handle)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
