package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port     string `mapstructure:"port"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	YouTubeAPIKey      string  `mapstructure:"youtube_api_key"`
	YouTubeAPIEndpoint string  `mapstructure:"youtube_api_endpoint"`
	YouTubeRateLimit   float64 `mapstructure:"youtube_rate_limit"`

	StoreDriver   string `mapstructure:"store_driver"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	DBURL         string `mapstructure:"db_url"`
	SQLitePath    string `mapstructure:"sqlite_path"`

	RedisURL        string        `mapstructure:"redis_url"`
	ResolveCacheTTL time.Duration `mapstructure:"resolve_cache_ttl"`

	ClickhouseURL      string `mapstructure:"clickhouse_url"`
	ClickhouseDatabase string `mapstructure:"clickhouse_database"`
	ClickhouseUsername string `mapstructure:"clickhouse_username"`
	ClickhousePassword string `mapstructure:"clickhouse_password"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxChannels    int      `mapstructure:"max_channels"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "4000")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("youtube_api_key", "")
	v.SetDefault("youtube_api_endpoint", "")
	v.SetDefault("youtube_rate_limit", 5.0)

	v.SetDefault("store_driver", StoreSQLite)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "yt_categorizer")
	v.SetDefault("db_url", "")
	v.SetDefault("sqlite_path", "data/videos.db")

	v.SetDefault("redis_url", "")
	v.SetDefault("resolve_cache_ttl", 24*time.Hour)

	v.SetDefault("clickhouse_url", "")
	v.SetDefault("clickhouse_database", "default")
	v.SetDefault("clickhouse_username", "")
	v.SetDefault("clickhouse_password", "")

	v.SetDefault("allowed_origins", "*")
	v.SetDefault("max_channels", 3)
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required for the postgres store")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.MaxChannels < 1 {
		return errors.Errorf("MAX_CHANNELS must be at least 1, got %d", c.MaxChannels)
	}
	if c.YouTubeRateLimit < 0 {
		return errors.Errorf("YOUTUBE_RATE_LIMIT must not be negative, got %v", c.YouTubeRateLimit)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) AnalyticsEnabled() bool {
	return c.ClickhouseURL != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
