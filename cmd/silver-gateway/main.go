package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mutombe/silver-carbon/internal/authclient"
	"github.com/Mutombe/silver-carbon/internal/clients"
	"github.com/Mutombe/silver-carbon/internal/config"
	gwhttp "github.com/Mutombe/silver-carbon/internal/http"
	"github.com/Mutombe/silver-carbon/internal/metrics"
	"github.com/Mutombe/silver-carbon/internal/tokenstore"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting silver-gateway", "env", cfg.Env, "api", cfg.API.BaseURL)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	store, err := tokenstore.New(rootCtx, cfg.TokenStore)
	if err != nil {
		log.Error("token_store_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("token_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	log.Info("token_store_initialized", slog.String("kind", cfg.TokenStore.Kind))

	m := metrics.New(nil)
	cl := clients.New(*cfg, clients.Deps{Store: store, Logger: log, Metrics: m})

	cl.Core.OnInvalidate(func(ctx context.Context, reason error) {
		log.Info("redirect_to_login", slog.String("location", cfg.API.LoginPath), slog.String("reason", reason.Error()))
	})

	restoreSession(rootCtx, log, cl.Core.Session(), cfg.Timeouts.Refresh)

	opts := gwhttp.Options{
		Logger:         log,
		Metrics:        m,
		Timeout:        cfg.Timeouts.Service,
		LoginPath:      cfg.API.LoginPath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		BasePath:       "/api",
	}

	apiHandler := gwhttp.NewRouter(cl, opts)

	var ready atomic.Bool
	mux := newMux(apiHandler, &ready)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("gateway_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// newMux — пробы, /metrics и API шлюза под /api.
func newMux(api http.Handler, ready *atomic.Bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", api)

	return mux
}

// restoreSession проверяет сохранённую пару до приёма запросов.
// Отказ backend'а завершает сессию, шлюз при этом стартует.
func restoreSession(ctx context.Context, log *slog.Logger, s *authclient.Session, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := s.Restore(ctx)
	switch {
	case err == nil:
		log.Info("session_restored")
	case errors.Is(err, authclient.ErrNoSession):
		log.Info("no_saved_session")
	default:
		log.Warn("session_restore_failed", slog.String("err", err.Error()))
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
