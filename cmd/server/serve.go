package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/api"
	"github.com/soaringjerry/clima/internal/config"
	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	handler, err := buildHandler(a)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("clima server listening", zap.String("addr", cfg.Server.Addr), zap.String("backend", cfg.Storage.Backend))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildHandler(a *app) (http.Handler, error) {
	cfg := a.cfg
	auth, tokens, err := newAuth(cfg.Dashboard, a.log)
	if err != nil {
		return nil, err
	}
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	}

	mux := http.NewServeMux()
	api.NewRouter(api.Deps{
		Survey:    a.survey,
		Dashboard: a.dashboard,
		Exports:   a.exports,
		Auth:      auth,
		Tokens:    tokens,
		Limiter:   limiter,
		Log:       a.log.Named("api"),
	}).Register(mux)
	registerSystemRoutes(mux, cfg.Server)

	if cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	var h http.Handler = middleware.Metrics(mux)
	h = middleware.MaxBody(cfg.Server.MaxBodyBytes)(h)
	h = middleware.LocaleMiddleware(h)
	h = middleware.SecureHeaders(h)
	h = middleware.NoStore("/api/", "/health", "/version")(h)
	h = middleware.CORS(cfg.Server.AllowedOrigins)(h)
	return h, nil
}

func registerSystemRoutes(mux *http.ServeMux, cfg config.ServerConfig) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context())
		writeJSON(w, map[string]any{
			"ok":         true,
			"name":       "Clima API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"commit": cfg.Commit, "build_time": cfg.BuildTime})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
}
