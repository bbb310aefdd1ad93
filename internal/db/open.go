package db

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/services"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Options struct {
	Backend       string
	Path          string
	MigrationsDir string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Open builds the configured snapshot backend. The returned close func is
// never nil.
func Open(ctx context.Context, opts Options, log *zap.Logger) (services.SnapshotStore, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		log.Warn("using in-memory snapshot backend, responses are lost on restart")
		return NewMemoryStore(), noop, nil
	case "", BackendFile:
		store, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		log.Info("snapshot backend ready", zap.String("backend", BackendFile), zap.String("path", opts.Path))
		return store, noop, nil
	case BackendSQLite:
		store, err := OpenSQLite(opts.Path, opts.MigrationsDir, log)
		if err != nil {
			return nil, noop, err
		}
		log.Info("snapshot backend ready", zap.String("backend", BackendSQLite), zap.String("path", opts.Path))
		return store, store.Close, nil
	case BackendRedis:
		store, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisKey)
		if err != nil {
			return nil, noop, err
		}
		log.Info("snapshot backend ready", zap.String("backend", BackendRedis), zap.String("addr", opts.RedisAddr))
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
