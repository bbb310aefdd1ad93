package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/config"
	"github.com/soaringjerry/clima/internal/db"
	"github.com/soaringjerry/clima/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy a legacy JSON snapshot into the sqlite backend",
	Long:  "One-time copy of a JSON response snapshot (file backend or a browser export) into a new sqlite database. Does nothing when the database already exists.",
	RunE:  runMigrate,
}

var (
	migrateFrom string
	migrateTo   string
)

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "Legacy JSON snapshot (defaults to the file backend snapshot path)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "Target sqlite database file (required)")
	if err := migrateCmd.MarkFlagRequired("to"); err != nil {
		panic(fmt.Sprintf("failed to mark to flag as required: %v", err))
	}
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	from := migrateFrom
	if from == "" {
		from = config.DefaultSnapshotPath
		if cfg.Storage.Backend == "file" {
			from = cfg.Storage.Path
		}
	}
	catalog, err := catalogFromConfig(cfg.Survey)
	if err != nil {
		return err
	}
	n, err := MigrateIfNeeded(cmd.Context(), catalog, from, migrateTo, cfg.Storage.MigrationsDir, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %d responses\n", n)
	return nil
}

// MigrateIfNeeded copies the JSON snapshot at legacyPath into a fresh sqlite
// database. An existing database or a missing legacy file is not an error.
// Every record is validated against catalog first.
func MigrateIfNeeded(ctx context.Context, catalog *services.Catalog, legacyPath, sqlitePath, migrationsDir string, log *zap.Logger) (int, error) {
	if sqlitePath == "" {
		return 0, errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		log.Info("sqlite database exists, skipping migration", zap.String("path", sqlitePath))
		return 0, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("check sqlite file: %w", err)
	}

	if _, err := os.Stat(legacyPath); errors.Is(err, os.ErrNotExist) {
		log.Info("no legacy snapshot found", zap.String("path", legacyPath))
		return 0, nil
	}
	src, err := db.NewFileStore(legacyPath)
	if err != nil {
		return 0, err
	}
	snapshot, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load legacy snapshot: %w", err)
	}
	check := services.NewResponseStore(catalog)
	if err := check.ReplaceAll(snapshot); err != nil {
		return 0, fmt.Errorf("legacy snapshot rejected: %w", err)
	}

	log.Info("starting one-time data migration", zap.String("from", legacyPath), zap.String("to", sqlitePath))
	dst, err := db.OpenSQLite(sqlitePath, migrationsDir, log)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			log.Warn("failed to close sqlite db", zap.Error(cerr))
		}
	}()
	normalized := check.All()
	if err := dst.Save(ctx, normalized); err != nil {
		return 0, fmt.Errorf("copy data: %w", err)
	}
	log.Info("data migration completed", zap.Int("responses", len(normalized)))
	return len(normalized), nil
}
