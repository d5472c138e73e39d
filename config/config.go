// Package config loads server settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	NotifyMemory = "memory"
	NotifyRedis  = "redis"

	TotalVerify = "verify"
	TotalTrust  = "trust"
)

// Config holds every runtime setting of the server
type Config struct {
	Port      string `yaml:"port"`
	ClientURL string `yaml:"client_url"`

	StoreBackend  string `yaml:"store_backend"`
	MongoURI      string `yaml:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database"`

	JWTSecret          string        `yaml:"jwt_secret"`
	JWTFallbackSecrets []string      `yaml:"jwt_fallback_secrets"`
	JWTExpiresIn       time.Duration `yaml:"jwt_expires_in"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	OrderTotalPolicy    string          `yaml:"order_total_policy"`
	ShippingFlatRate    decimal.Decimal `yaml:"shipping_flat_rate"`
	OrderTotalTolerance decimal.Decimal `yaml:"order_total_tolerance"`

	NotifyBackend   string   `yaml:"notify_backend"`
	RedisAddr       string   `yaml:"redis_addr"`
	KafkaBrokers    []string `yaml:"kafka_brokers"`
	KafkaOrderTopic string   `yaml:"kafka_order_topic"`

	PostmarkToken string `yaml:"postmark_api_token"`
	EmailSender   string `yaml:"email_sender"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Port:                "5000",
		ClientURL:           "http://localhost:3000",
		StoreBackend:        StoreMongo,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "storefront",
		JWTExpiresIn:        24 * time.Hour,
		LogLevel:            "info",
		OrderTotalPolicy:    TotalTrust,
		ShippingFlatRate:    decimal.RequireFromString("7.000"),
		OrderTotalTolerance: decimal.RequireFromString("0.01"),
		NotifyBackend:       NotifyMemory,
		KafkaOrderTopic:     "order-status",
	}
}

// Load reads path (if not empty), then .env, then the environment
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}

	str("PORT", &c.Port)
	str("CLIENT_URL", &c.ClientURL)
	str("STORE_BACKEND", &c.StoreBackend)
	str("MONGODB_URI", &c.MongoURI)
	str("MONGODB_DATABASE", &c.MongoDatabase)
	str("JWT_SECRET", &c.JWTSecret)
	list("JWT_FALLBACK_SECRETS", &c.JWTFallbackSecrets)
	str("LOG_LEVEL", &c.LogLevel)
	str("ORDER_TOTAL_POLICY", &c.OrderTotalPolicy)
	str("NOTIFY_BACKEND", &c.NotifyBackend)
	str("REDIS_ADDR", &c.RedisAddr)
	list("KAFKA_BROKERS", &c.KafkaBrokers)
	str("KAFKA_ORDER_TOPIC", &c.KafkaOrderTopic)
	str("POSTMARK_API_TOKEN", &c.PostmarkToken)
	str("EMAIL_SENDER", &c.EmailSender)

	if v, ok := lookup("LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_JSON: %w", err)
		}
		c.LogJSON = b
	}
	if v, ok := lookup("JWT_EXPIRES_IN"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
		}
		c.JWTExpiresIn = d
	}
	for key, dst := range map[string]*decimal.Decimal{
		"SHIPPING_FLAT_RATE":    &c.ShippingFlatRate,
		"ORDER_TOTAL_TOLERANCE": &c.OrderTotalTolerance,
	} {
		if v, ok := lookup(key); ok && v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.StoreBackend {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.NotifyBackend {
	case NotifyMemory:
	case NotifyRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis notify backend")
		}
	default:
		return fmt.Errorf("unknown notify backend %q", c.NotifyBackend)
	}
	switch c.OrderTotalPolicy {
	case TotalVerify, TotalTrust:
	default:
		return fmt.Errorf("unknown order total policy %q", c.OrderTotalPolicy)
	}
	if c.ShippingFlatRate.IsNegative() || c.OrderTotalTolerance.IsNegative() {
		return fmt.Errorf("shipping rate and total tolerance must not be negative")
	}
	return nil
}

// Secrets returns the ordered verification keys, current secret first
func (c Config) Secrets() []string {
	return append([]string{c.JWTSecret}, c.JWTFallbackSecrets...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
