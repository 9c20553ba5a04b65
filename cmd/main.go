package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/okian/keyrace/internal/adapters/http/api"
	"github.com/okian/keyrace/internal/adapters/http/site"
	"github.com/okian/keyrace/internal/adapters/http/swagger"
	"github.com/okian/keyrace/internal/adapters/store"
	"github.com/okian/keyrace/internal/adapters/ws"
	service "github.com/okian/keyrace/internal/app"
	"github.com/okian/keyrace/internal/config"
	"github.com/okian/keyrace/internal/domain/round"
	"github.com/okian/keyrace/pkg/logger"
	"github.com/okian/keyrace/pkg/metrics"
)

// HTTP server timeout constants. Read and write timeouts stay unset: they
// would cut long-lived websocket connections.
const (
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is done, then shuts everything down in dependency order.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	hub := ws.NewHub(ws.WithOutboxSize(cfg.OutboxSize))
	session := service.New(st, hub,
		service.WithQueueSize(cfg.QueueSize),
		service.WithStoreTimeout(millis(cfg.StoreTimeoutMS)),
		service.WithChooser(round.NewChooser(round.WithPrompts(cfg.Prompts))),
	)
	if err := session.Start(ctx); err != nil {
		_ = st.Close()
		return fmt.Errorf("start session: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, session, hub),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown; closing
		// the hub ends them.
		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		err = errors.Join(err, session.Stop(shutdownCtx), st.Close())

		log.Info(shutdownCtx, "server stopped")
		return err
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.ScoreStore, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		r, err := store.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return r, nil
	default:
		return store.NewMemory(), nil
	}
}

func newRouter(ctx context.Context, cfg *config.Config, session *service.Session, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)

	api.NewServer(session).Register(ctx, r)
	swagger.Register(ctx, r)
	r.Handle("/ws", ws.NewHandler(session, hub,
		ws.WithLivenessTimeout(millis(cfg.WSReadTimeoutMS)),
		ws.WithWriteTimeout(millis(cfg.WSWriteTimeoutMS)),
		ws.WithRateLimit(cfg.WSMessageRate, cfg.WSMessageBurst),
	))
	site.Register(ctx, r)
	return r
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
