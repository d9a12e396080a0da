// Package config loads the bot configuration from defaults, an optional file
// and CATALOGBOT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "CATALOGBOT"

var (
	ErrMissingToken  = errors.New("telegram.token is required")
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	HealthInterval time.Duration

	Telegram  TelegramConfig
	AdminIDs  []int64
	Store     StoreConfig
	Ledger    LedgerConfig
	RedisAddr string
	Session   SessionConfig
	Assistant AssistantConfig
	Catalog   CatalogConfig
}

type TelegramConfig struct {
	Token         string
	APIURL        string
	WebhookURL    string
	WebhookSecret string
}

type StoreConfig struct {
	Driver string
	DSN    string
}

type LedgerConfig struct {
	Backend string
	TTL     time.Duration
}

type SessionConfig struct {
	BatchSize   int
	QueueSize   int
	IdleTimeout time.Duration
}

type AssistantConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Enabled reports whether the assistant flow has credentials.
func (a AssistantConfig) Enabled() bool {
	return a.APIKey != ""
}

type CatalogConfig struct {
	TaxonomyFile string
	RemovedPhoto string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("health.interval", 10*time.Second)
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("store.driver", "mysql")
	v.SetDefault("store.dsn", "root:root@tcp(localhost:3306)/catalog?parseTime=true")
	v.SetDefault("ledger.backend", "sql")
	v.SetDefault("ledger.ttl", 720*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("pagination.batch_size", 2)
	v.SetDefault("session.queue_size", 16)
	v.SetDefault("session.idle_timeout", 5*time.Minute)
	v.SetDefault("assistant.model", "gpt-3.5-turbo")
	v.SetDefault("assistant.base_url", "https://api.openai.com/v1")
	v.SetDefault("catalog.removed_photo", "https://placehold.co/600x400?text=Removed")
}

// New returns a viper instance with defaults and environment binding set up.
// Keys map to variables by upper-casing and replacing dots, so
// telegram.token is read from CATALOGBOT_TELEGRAM_TOKEN.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"telegram.token", "telegram.webhook_url", "telegram.webhook_secret",
		"admin.ids", "assistant.api_key", "catalog.taxonomy_file"} {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads file (when non-empty) into v and returns the validated config.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	admins, err := parseIDs(v.GetStringSlice("admin.ids"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPAddr:       v.GetString("http.addr"),
		GRPCAddr:       v.GetString("grpc.addr"),
		HealthInterval: v.GetDuration("health.interval"),
		Telegram: TelegramConfig{
			Token:         v.GetString("telegram.token"),
			APIURL:        v.GetString("telegram.api_url"),
			WebhookURL:    v.GetString("telegram.webhook_url"),
			WebhookSecret: v.GetString("telegram.webhook_secret"),
		},
		AdminIDs: admins,
		Store: StoreConfig{
			Driver: v.GetString("store.driver"),
			DSN:    v.GetString("store.dsn"),
		},
		Ledger: LedgerConfig{
			Backend: v.GetString("ledger.backend"),
			TTL:     v.GetDuration("ledger.ttl"),
		},
		RedisAddr: v.GetString("redis.addr"),
		Session: SessionConfig{
			BatchSize:   v.GetInt("pagination.batch_size"),
			QueueSize:   v.GetInt("session.queue_size"),
			IdleTimeout: v.GetDuration("session.idle_timeout"),
		},
		Assistant: AssistantConfig{
			APIKey:  v.GetString("assistant.api_key"),
			Model:   v.GetString("assistant.model"),
			BaseURL: v.GetString("assistant.base_url"),
		},
		Catalog: CatalogConfig{
			TaxonomyFile: v.GetString("catalog.taxonomy_file"),
			RemovedPhoto: v.GetString("catalog.removed_photo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseIDs accepts both a YAML list and a comma or space separated string.
func parseIDs(raw []string) ([]int64, error) {
	var ids []int64
	for _, item := range raw {
		for _, field := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: admin id %q", ErrInvalidConfig, field)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	switch c.Store.Driver {
	case "mysql", "sqlite3":
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	switch c.Ledger.Backend {
	case "sql", "redis", "memory":
	default:
		return fmt.Errorf("%w: unknown ledger.backend %q", ErrInvalidConfig, c.Ledger.Backend)
	}
	if c.Session.BatchSize < 1 {
		return fmt.Errorf("%w: pagination.batch_size must be at least 1", ErrInvalidConfig)
	}
	if c.Session.QueueSize < 1 {
		return fmt.Errorf("%w: session.queue_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}
