package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
	"github.com/swiftpos/swiftpos/internal/domain/store"
	"github.com/swiftpos/swiftpos/internal/handler"
	"github.com/swiftpos/swiftpos/internal/insight"
	"github.com/swiftpos/swiftpos/internal/legacy"
	"github.com/swiftpos/swiftpos/internal/storage/localstore"
	"github.com/swiftpos/swiftpos/internal/storage/postgres"
	"github.com/swiftpos/swiftpos/internal/storage/rediscache"
	"github.com/swiftpos/swiftpos/pkg/health"
	"github.com/swiftpos/swiftpos/pkg/httpmiddleware"
)

// repos bundles every storage interface the handler needs, regardless of
// which backend provides them.
type repos struct {
	products   product.Repository
	images     product.ImageRepository
	sales      sale.Repository
	records    sale.RecordRepository
	settings   store.SettingsRepository
	categories store.CategoryRepository
	branches   store.BranchRepository
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()

	// Storage backend: PostgreSQL when configured, else the file store.
	var (
		r        repos
		resetter handler.Resetter
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.Ping(pool.Ping))

		productRepo := postgres.NewProductRepository(pool)
		storeRepo := postgres.NewStoreRepository(pool)
		r = repos{
			products:   productRepo,
			images:     productRepo,
			sales:      postgres.NewSaleRepository(pool),
			records:    postgres.NewCheckoutRepository(pool),
			settings:   storeRepo,
			categories: storeRepo,
			branches:   storeRepo,
		}
		lg.Info("Using PostgreSQL storage")
	} else {
		st, err := localstore.Open(cfg.LocalStorePath)
		if err != nil {
			return errors.Wrap(err, "open local store")
		}
		r = repos{
			products:   st,
			images:     st,
			sales:      st.Sales(),
			records:    st,
			settings:   st,
			categories: st,
			branches:   st,
		}
		resetter = st
		lg.Info("Using file-backed storage", zap.String("path", cfg.LocalStorePath))
	}

	// Optional Redis read cache for the catalog.
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		healthSvc.AddReadinessCheck("redis", 3*time.Second, health.Ping(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
		r.products = rediscache.NewProductCache(r.products, rdb, lg.Named("rediscache"))
		lg.Info("Catalog cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Checkout recorders: local history always, legacy bridge when configured.
	recorders := []sale.Recorder{r.records}
	var bridge *legacy.Client
	if cfg.LegacyBaseURL != "" {
		bridge = legacy.NewClient(legacy.Config{
			BaseURL: cfg.LegacyBaseURL,
			Timeout: cfg.LegacyTimeout,
		}, lg.Named("legacy"))
		recorders = append(recorders, bridge)
		lg.Info("Legacy bridge enabled", zap.String("base_url", cfg.LegacyBaseURL))
	}

	checkoutSvc := sale.NewService(r.sales, r.products, lg.Named("checkout"), recorders...)

	var insights insight.Generator = insight.Static{}
	if cfg.GeminiAPIKey != "" {
		insights = insight.NewGeminiGenerator(insight.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, lg.Named("insight"))
	}

	h := handler.New(handler.Deps{
		Products:   r.products,
		Images:     r.images,
		Carts:      cart.NewStore(),
		Checkout:   checkoutSvc,
		Sales:      r.sales,
		Records:    r.records,
		Settings:   r.settings,
		Categories: r.categories,
		Branches:   r.branches,
		Insights:   insights,
		Bridge:     bridge,
		Resetter:   resetter,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	// Traces and metrics for every request, exported through the SDK's
	// telemetry providers.
	instrumented := otelhttp.NewHandler(
		httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
		"pos-server",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           instrumented,
	}

	// Graceful shutdown: flip readiness, drain, stop the server, then wait
	// for detached checkout records to land.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		checkoutSvc.Drain()
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
