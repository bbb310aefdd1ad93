package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// SQLiteStore keeps the response snapshot in a single sqlite table. Save
// replaces the table contents inside one transaction, so readers of the
// database never see half a snapshot.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

var (
	_ services.SnapshotStore  = (*SQLiteStore)(nil)
	_ services.SnapshotBackup = (*SQLiteStore)(nil)
)

func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: log}, nil
}

// OpenSQLite opens (creating if needed) the database file and runs migrations.
func OpenSQLite(path, migrationsDir string, log *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(sqliteDB, migrationsDir); err != nil {
		_ = sqliteDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	store, err := NewSQLiteStore(sqliteDB, log)
	if err != nil {
		_ = sqliteDB.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context) ([]models.StoredResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, ratings_json, improvement, good_points, created_at FROM responses ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	out := []models.StoredResponse{}
	for rows.Next() {
		var (
			rec     models.StoredResponse
			ratings string
			improve sql.NullString
			good    sql.NullString
			created string
		)
		if err := rows.Scan(&rec.ID, &ratings, &improve, &good, &created); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal([]byte(ratings), &rec.Ratings); err != nil {
			return nil, fmt.Errorf("decode ratings of %s: %w", rec.ID, err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", rec.ID, err)
		}
		rec.ImprovementText = improve.String
		rec.GoodPointsText = good.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snapshot []models.StoredResponse) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Warn("sqlite rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM responses"); err != nil {
		return fmt.Errorf("clear responses: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO responses (id, position, ratings_json, improvement, good_points, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range snapshot {
		ratings, mErr := json.Marshal(rec.Ratings)
		if mErr != nil {
			err = fmt.Errorf("encode ratings of %s: %w", rec.ID, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx,
			rec.ID, i, string(ratings),
			toNullString(rec.ImprovementText), toNullString(rec.GoodPointsText),
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert response %s: %w", rec.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Backup copies the current rows into a responses_corrupt_<nanos> table.
func (s *SQLiteStore) Backup(ctx context.Context) (string, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return "", fmt.Errorf("count responses: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	table := fmt.Sprintf("responses_corrupt_%d", time.Now().UnixNano())
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE "+table+" AS SELECT * FROM responses"); err != nil {
		return "", fmt.Errorf("copy responses to %s: %w", table, err)
	}
	return table, nil
}

// toNullString keeps comment text byte for byte; only the empty string is NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
