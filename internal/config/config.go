package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/soaringjerry/clima/internal/models"
)

const EnvPrefix = "CLIMA"

// Default storage.path per backend when none is configured.
const (
	DefaultSnapshotPath = "data/clima_organizacional_responses.json"
	DefaultSQLitePath   = "data/clima.db"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
	Survey    SurveyConfig    `mapstructure:"survey"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	StaticDir      string        `mapstructure:"static_dir"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Commit         string        `mapstructure:"commit"`
	BuildTime      string        `mapstructure:"build_time"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend" validate:"oneof=memory file sqlite redis"`
	Path          string `mapstructure:"path" validate:"required_if=Backend file,required_if=Backend sqlite"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	RedisKey      string `mapstructure:"redis_key"`
}

// DashboardConfig holds the single operator account. PasswordHash is a bcrypt
// hash; Password is accepted for local setups and hashed at boot.
type DashboardConfig struct {
	Username     string        `mapstructure:"username" validate:"required"`
	Password     string        `mapstructure:"password"`
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

type SurveyConfig struct {
	RequireComplete bool              `mapstructure:"require_complete"`
	RecentCount     int               `mapstructure:"recent_count" validate:"gt=0"`
	EvolutionWindow int               `mapstructure:"evolution_window" validate:"gt=0"`
	Questions       []models.Question `mapstructure:"questions" validate:"dive"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	RPS     float64       `mapstructure:"rps" validate:"gte=0"`
	Burst   int           `mapstructure:"burst" validate:"gte=0"`
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// Load reads config.yaml (if any), .env (if any) and CLIMA_* environment
// variables, in increasing order of precedence. dir may be empty.
func Load(dir string) (*Config, error) {
	loadEnvFile(dir)

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyStorageDefaults(&cfg.Storage)
	if origins := os.Getenv(EnvPrefix + "_SERVER_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.commit", "")
	v.SetDefault("server.build_time", "")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.migrations_dir", "")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_key", "clima_organizacional_responses")

	v.SetDefault("dashboard.username", "admin")
	v.SetDefault("dashboard.password", "")
	v.SetDefault("dashboard.password_hash", "")
	v.SetDefault("dashboard.jwt_secret", "")
	v.SetDefault("dashboard.token_ttl", 12*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("survey.require_complete", true)
	v.SetDefault("survey.recent_count", 5)
	v.SetDefault("survey.evolution_window", 10)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
}

// Validate checks struct tags plus the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Dashboard.Password != "" && cfg.Dashboard.PasswordHash != "" {
		return errors.New("dashboard.password and dashboard.password_hash are mutually exclusive")
	}
	if cfg.Storage.Backend == "sqlite" && strings.EqualFold(filepath.Ext(cfg.Storage.Path), ".json") {
		return fmt.Errorf("storage.path %q looks like a JSON snapshot; the sqlite backend needs a database file (run `migrate` to convert it)", cfg.Storage.Path)
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0) {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive when enabled")
	}
	return nil
}

func applyStorageDefaults(st *StorageConfig) {
	if st.Path != "" {
		return
	}
	switch st.Backend {
	case "file":
		st.Path = DefaultSnapshotPath
	case "sqlite":
		st.Path = DefaultSQLitePath
	}
}

func loadEnvFile(dir string) {
	candidates := []string{".env"}
	if dir != "" {
		candidates = append([]string{filepath.Join(dir, ".env")}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			// Existing environment variables win over the file.
			_ = godotenv.Load(path)
			return
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
