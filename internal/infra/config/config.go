package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint     = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultPollInterval = 600 * time.Second
	DefaultConfigFile   = "config.yaml"

	CursorStoreMemory   = "memory"
	CursorStorePostgres = "postgres"
	CursorStoreRedis    = "redis"
)

// ErrMissingCredential is wrapped by Credentials.Validate for each empty secret.
var ErrMissingCredential = errors.New("credential is not set")

// Credentials are the three secrets the bot cannot run without.
type Credentials struct {
	PracticumToken string
	TelegramToken  string
	TelegramChatID string // numeric chat id or @channelname
}

// Validate reports the first missing credential by its environment variable name.
func (c Credentials) Validate() error {
	if c.PracticumToken == "" {
		return fmt.Errorf("PRACTICUM_TOKEN: %w", ErrMissingCredential)
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN: %w", ErrMissingCredential)
	}
	if strings.TrimSpace(c.TelegramChatID) == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID: %w", ErrMissingCredential)
	}
	return nil
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	Credentials Credentials

	Endpoint       string
	RequestTimeout time.Duration // 0 means no timeout

	PollInterval time.Duration
	PollSchedule string // cron spec; overrides PollInterval when set
	MaxCycles    int    // 0 means run until stopped

	SendRatePerSec  int
	CommandsEnabled bool

	CursorStore   string
	CursorName    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel    string
	Environment string
}

// fileConfig mirrors the optional YAML file. Secrets are never read from it.
type fileConfig struct {
	Practicum struct {
		Endpoint       string `yaml:"endpoint"`
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"practicum"`
	Poll struct {
		Interval  string `yaml:"interval"`
		Schedule  string `yaml:"schedule"`
		MaxCycles int    `yaml:"max_cycles"`
	} `yaml:"poll"`
	Telegram struct {
		SendRatePerSec  int   `yaml:"send_rate_per_sec"`
		CommandsEnabled *bool `yaml:"commands_enabled"`
	} `yaml:"telegram"`
	Cursor struct {
		Store       string `yaml:"store"`
		Name        string `yaml:"name"`
		DatabaseURL string `yaml:"database_url"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cursor"`
	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
	} `yaml:"log"`
}

// Load reads configuration from the .env file (if present), the optional YAML file
// named by CONFIG_FILE and environment variables, in that order of precedence (env wins).
// Missing credentials are not an error here; see Credentials.Validate.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFile
	}
	fc, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{}

	cfg.Credentials.PracticumToken = os.Getenv("PRACTICUM_TOKEN")
	cfg.Credentials.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.Credentials.TelegramChatID = strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))

	cfg.Endpoint = firstNonEmpty(os.Getenv("PRACTICUM_ENDPOINT"), fc.Practicum.Endpoint, DefaultEndpoint)

	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", fc.Practicum.RequestTimeout, 0); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("POLL_INTERVAL", fc.Poll.Interval, DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: must be positive, got %s", cfg.PollInterval)
	}
	cfg.PollSchedule = firstNonEmpty(os.Getenv("POLL_SCHEDULE"), fc.Poll.Schedule)

	if cfg.MaxCycles, err = parseInt("MAX_CYCLES", fc.Poll.MaxCycles); err != nil {
		return nil, err
	}
	if cfg.MaxCycles < 0 {
		return nil, fmt.Errorf("invalid MAX_CYCLES: must not be negative")
	}

	if cfg.SendRatePerSec, err = parseInt("SEND_RATE_PER_SEC", fc.Telegram.SendRatePerSec); err != nil {
		return nil, err
	}
	if cfg.SendRatePerSec <= 0 {
		cfg.SendRatePerSec = 1 // Telegram allows about one message per second per chat
	}

	if fc.Telegram.CommandsEnabled != nil {
		cfg.CommandsEnabled = *fc.Telegram.CommandsEnabled
	}
	if v := os.Getenv("COMMANDS_ENABLED"); v != "" {
		cfg.CommandsEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COMMANDS_ENABLED: %w", err)
		}
	}

	cfg.CursorStore = strings.ToLower(firstNonEmpty(os.Getenv("CURSOR_STORE"), fc.Cursor.Store, CursorStoreMemory))
	cfg.CursorName = firstNonEmpty(os.Getenv("CURSOR_NAME"), fc.Cursor.Name, "default")
	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), fc.Cursor.DatabaseURL)
	cfg.RedisAddr = firstNonEmpty(os.Getenv("REDIS_ADDR"), fc.Cursor.Redis.Addr, "localhost:6379")
	cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), fc.Cursor.Redis.Password)
	if cfg.RedisDB, err = parseInt("REDIS_DB", fc.Cursor.Redis.DB); err != nil {
		return nil, err
	}

	switch cfg.CursorStore {
	case CursorStoreMemory, CursorStoreRedis:
	case CursorStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for CURSOR_STORE=postgres)")
		}
	default:
		return nil, fmt.Errorf("invalid CURSOR_STORE %q: want memory, postgres or redis", cfg.CursorStore)
	}

	cfg.LogLevel = strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), fc.Log.Level, "info"))
	cfg.Environment = strings.ToLower(firstNonEmpty(os.Getenv("ENVIRONMENT"), fc.Log.Environment, "development"))

	return cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func parseDuration(envKey, fileValue string, def time.Duration) (time.Duration, error) {
	raw := firstNonEmpty(os.Getenv(envKey), fileValue)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// Bare numbers are seconds.
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		d = time.Duration(secs) * time.Second
	}
	return d, nil
}

func parseInt(envKey string, fileValue int) (int, error) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return fileValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envKey, err)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
