package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/internal/storage/redisstore"
	"github.com/angelmondragon/storefront/internal/storage/sqlstore"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/orderapi"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closers, err := openStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cart storage", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orderClient, err := orderapi.NewClient(cfg.OrderAPI.BaseURL, orderapi.WithTimeout(cfg.OrderAPI.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to create order api client", err)
		os.Exit(1)
	}

	hub := session.NewHub(session.HubConfig{
		Store:           store,
		Orders:          orderClient,
		CartKey:         cfg.Storage.CartKey,
		PaymentMethod:   enums.PaymentMethod(cfg.Checkout.PaymentMethod),
		SubmitTimeout:   cfg.Checkout.SubmitTimeout,
		CartMetrics:     metrics.NewCartMetrics(reg),
		CheckoutMetrics: metrics.NewCheckoutMetrics(reg),
		Logger:          logg,
	})
	identities := session.NewIdentityResolver(cfg.JWT, session.NewProfileSource(store, cfg.Storage.ProfileKey, logg))

	ordersSvc, err := orders.NewService(orderClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.NormalizedDriver(),
	})

	server := routes.NewServer(ctx, addr, routes.NewRouter(cfg, logg, store, hub, identities, ordersSvc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(groupCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		sweepIdleScopes(groupCtx, logg, hub, cfg.Session)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		logg.Info(groupCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	runErr := group.Wait()
	for _, closer := range closers {
		runErr = multierr.Append(runErr, closer.Close())
	}
	if runErr != nil {
		logg.Error(ctx, "api server stopped unexpectedly", runErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// openStorage returns the configured cart store and the resources to close on exit.
func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, []io.Closer, error) {
	switch driver := cfg.Storage.NormalizedDriver(); driver {
	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, cfg.Storage.TTL), []io.Closer{client}, nil
	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, nil, multierr.Combine(err, client.Close())
		}
		return sqlstore.New(client.DB()), []io.Closer{client}, nil
	default:
		logg.Warn(ctx, "using in-memory cart storage; carts are lost on restart")
		return storage.NewMemory(), nil, nil
	}
}

// sweepIdleScopes drops idle scope entries until ctx is done. Persisted carts are untouched.
func sweepIdleScopes(ctx context.Context, logg *logger.Logger, hub *session.Hub, cfg config.SessionConfig) {
	if cfg.SweepInterval <= 0 || cfg.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := hub.Sweep(cfg.IdleTTL); dropped > 0 {
				logg.Debug(logg.WithFields(ctx, map[string]any{
					"dropped":   dropped,
					"remaining": hub.Len(),
				}), "session.sweep")
			}
		}
	}
}
