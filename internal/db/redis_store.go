package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// DefaultRedisKey is the key the whole snapshot is stored under.
const DefaultRedisKey = "clima_organizacional_responses"

// RedisStore keeps the snapshot as a single JSON string value, mirroring a
// browser key/value store.
type RedisStore struct {
	client *redis.Client
	key    string
}

var (
	_ services.SnapshotStore  = (*RedisStore)(nil)
	_ services.SnapshotBackup = (*RedisStore)(nil)
)

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// OpenRedis connects and pings once so a bad address fails at startup.
func OpenRedis(ctx context.Context, addr, password string, dbIndex int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: dbIndex})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(client, key), nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Load(ctx context.Context) ([]models.StoredResponse, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.StoredResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return services.UnmarshalSnapshot(data)
}

func (s *RedisStore) Save(ctx context.Context, snapshot []models.StoredResponse) error {
	data, err := services.MarshalSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Backup moves the snapshot value to <key>.corrupt without replacing an
// earlier backup.
func (s *RedisStore) Backup(ctx context.Context) (string, error) {
	target := s.key + ".corrupt"
	moved, err := s.client.RenameNX(ctx, s.key, target).Result()
	if err != nil {
		if isNoSuchKey(err) {
			return "", nil
		}
		return "", fmt.Errorf("redis rename %s: %w", s.key, err)
	}
	if !moved {
		target = fmt.Sprintf("%s.corrupt.%d", s.key, time.Now().UnixNano())
		if err := s.client.Rename(ctx, s.key, target).Err(); err != nil {
			return "", fmt.Errorf("redis rename %s: %w", s.key, err)
		}
	}
	return target, nil
}

func isNoSuchKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such key")
}
