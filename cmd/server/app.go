package main

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/config"
	"github.com/soaringjerry/clima/internal/db"
	"github.com/soaringjerry/clima/internal/logger"
	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	catalog   *services.Catalog
	store     *services.ResponseStore
	survey    *services.SurveyService
	dashboard *services.DashboardService
	exports   *services.ExportService
	closeFn   func() error
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log), nil
}

// newApp opens the snapshot backend and restores the stored responses.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	catalog, err := catalogFromConfig(cfg.Survey)
	if err != nil {
		return nil, err
	}

	persist, closeFn, err := db.Open(ctx, db.Options{
		Backend:       cfg.Storage.Backend,
		Path:          cfg.Storage.Path,
		MigrationsDir: cfg.Storage.MigrationsDir,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisKey:      cfg.Storage.RedisKey,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	store := services.NewResponseStore(catalog)
	survey := services.NewSurveyService(catalog, store, persist, log.Named("survey"), services.SurveyOptions{
		RequireComplete: cfg.Survey.RequireComplete,
	})
	survey.Restore(ctx)

	return &app{
		cfg:       cfg,
		log:       log,
		catalog:   catalog,
		store:     store,
		survey:    survey,
		dashboard: services.NewDashboardService(catalog, store, cfg.Survey.RecentCount, cfg.Survey.EvolutionWindow),
		exports:   services.NewExportService(catalog, store),
		closeFn:   closeFn,
	}, nil
}

// catalogFromConfig uses the configured questions when any are given.
func catalogFromConfig(cfg config.SurveyConfig) (*services.Catalog, error) {
	if len(cfg.Questions) == 0 {
		return services.DefaultCatalog(), nil
	}
	c, err := services.NewCatalog(cfg.Questions)
	if err != nil {
		return nil, fmt.Errorf("configured questions: %w", err)
	}
	return c, nil
}

func (a *app) Close() {
	if err := a.closeFn(); err != nil {
		a.log.Warn("close storage", zap.Error(err))
	}
	_ = a.log.Sync()
}

// newAuth builds the dashboard gate. A plain configured password is hashed
// here; a missing JWT secret gets a random one that dies with the process.
func newAuth(cfg config.DashboardConfig, log *zap.Logger) (*services.DashboardAuthService, *middleware.TokenIssuer, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		log.Warn("dashboard.jwt_secret not set, sessions will not survive a restart")
	}
	tokens, err := middleware.NewTokenIssuer(secret)
	if err != nil {
		return nil, nil, err
	}

	hash := []byte(cfg.PasswordHash)
	if cfg.Password != "" {
		log.Warn("dashboard.password is set in plain text, prefer dashboard.password_hash")
		if hash, err = services.HashPassword(cfg.Password); err != nil {
			return nil, nil, err
		}
	}
	auth := services.NewDashboardAuthService(cfg.Username, hash, tokens.Sign, cfg.TokenTTL)
	if !auth.Enabled() {
		log.Warn("no dashboard password configured, dashboard login is disabled")
	}
	return auth, tokens, nil
}
