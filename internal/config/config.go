package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

const (
	AppName    = "Relay"
	AppVersion = "1.0.0"

	// EnvPrefix is the prefix of every environment variable read by Load.
	// Nested keys are separated by a double underscore: RELAY_STORE__URL -> store.url.
	EnvPrefix = "RELAY_"

	// DefaultConfigFile is read when present and no explicit path is given.
	DefaultConfigFile = "config.yaml"
)

// Store backends
const (
	StoreREST     = "rest"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Detector engines
const (
	DetectLingua  = "lingua"
	DetectKeyword = "keyword"
)

// UserAgent is sent on every outbound request to the store and translation APIs.
var UserAgent = AppName + "/" + AppVersion

type Config struct {
	Addr            string          `koanf:"addr"`
	NodeID          int64           `koanf:"node_id"`
	ProxyURL        string          `koanf:"proxy_url"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout"`
	HealthInterval  time.Duration   `koanf:"health_interval"` // 0 disables the store probe
	Log             LogConfig       `koanf:"log"`
	Store           StoreConfig     `koanf:"store"`
	Translate       TranslateConfig `koanf:"translate"`
	Detect          DetectConfig    `koanf:"detect"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text, json
}

type StoreConfig struct {
	Backend   string        `koanf:"backend"` // rest, postgres, sqlite, redis
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Table     string        `koanf:"table"`
	DSN       string        `koanf:"dsn"`
	DBPath    string        `koanf:"db_path"`
	RedisAddr string        `koanf:"redis_addr"`
	RedisKey  string        `koanf:"redis_key"`
	Timeout   time.Duration `koanf:"timeout"`
}

type TranslateConfig struct {
	Provider   string        `koanf:"provider"` // mymemory, openai, anthropic, google
	URL        string        `koanf:"url"`
	APIKey     string        `koanf:"api_key"`
	Email      string        `koanf:"email"`
	Model      string        `koanf:"model"`
	TargetLang string        `koanf:"target_lang"`
	Timeout    time.Duration `koanf:"timeout"`
	QPS        int           `koanf:"qps"`
}

type DetectConfig struct {
	Engine string `koanf:"engine"` // lingua, keyword
	// LowAccuracy trades precision on short texts (a few words) for lower memory use.
	LowAccuracy bool `koanf:"low_accuracy"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		NodeID:          1,
		ShutdownTimeout: 10 * time.Second,
		HealthInterval:  30 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend:   StoreREST,
			Table:     "messages",
			DBPath:    filepath.Join("data", "relay.db"),
			RedisAddr: "localhost:6379",
			RedisKey:  "relay:messages",
			Timeout:   10 * time.Second,
		},
		Translate: TranslateConfig{
			Provider:   "mymemory",
			TargetLang: "en",
			Timeout:    10 * time.Second,
			QPS:        5,
		},
		Detect: DetectConfig{
			Engine: DetectLingua,
		},
	}
}

// Load reads the configuration from defaults, an optional YAML file and the environment,
// in that order. An empty path falls back to $RELAY_CONFIG, then to config.yaml when it exists.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.Store.DBPath = filepath.Clean(cfg.Store.DBPath)
	return cfg, nil
}

// envKey maps RELAY_STORE__API_KEY to store.api_key.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreREST:
		if c.Store.URL == "" {
			return errors.New("store.url is required for the rest backend")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres backend")
		}
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Detect.Engine {
	case DetectLingua, DetectKeyword:
	default:
		return fmt.Errorf("unknown detect engine %q", c.Detect.Engine)
	}

	if _, err := language.Parse(c.Translate.TargetLang); err != nil {
		return fmt.Errorf("invalid translate.target_lang %q: %w", c.Translate.TargetLang, err)
	}
	if c.Translate.Timeout <= 0 {
		return errors.New("translate.timeout must be positive")
	}
	if c.HealthInterval < 0 {
		return errors.New("health_interval must not be negative")
	}
	if c.Store.Timeout <= 0 {
		return errors.New("store.timeout must be positive")
	}
	return nil
}
