package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type GatewayConfig struct {
	// ConfigSecret keys the AES-GCM encryption of stored processor
	// credentials. Empty means configs are stored in the clear (dev only).
	ConfigSecret string

	// WebhookTimeout bounds the detached verification task. Expiry is
	// logged, never surfaced to the webhook sender.
	WebhookTimeout time.Duration

	WebhookFullAuth bool
	WebhookFull     bool

	// CallbackBaseURL is the fallback redirect/callback base for
	// configurations that do not carry their own.
	CallbackBaseURL string
}

type Config struct {
	HTTPAddr    string
	DatabaseDSN string
	RedisAddr   string
	LogLevel    string
	Gateway     GatewayConfig
}

var Module = fx.Module("config", fx.Provide(Load))

func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PAYBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_dsn", "paybridge.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("gateway.config_secret", "")
	v.SetDefault("gateway.webhook_timeout", "30s")
	v.SetDefault("gateway.webhook_full_auth", true)
	v.SetDefault("gateway.webhook_full", false)
	v.SetDefault("gateway.callback_base_url", "http://localhost:8080/payment-callback")

	cfg := Config{
		HTTPAddr:    v.GetString("http_addr"),
		DatabaseDSN: v.GetString("database_dsn"),
		RedisAddr:   v.GetString("redis_addr"),
		LogLevel:    v.GetString("log_level"),
		Gateway: GatewayConfig{
			ConfigSecret:    v.GetString("gateway.config_secret"),
			WebhookTimeout:  v.GetDuration("gateway.webhook_timeout"),
			WebhookFullAuth: v.GetBool("gateway.webhook_full_auth"),
			WebhookFull:     v.GetBool("gateway.webhook_full"),
			CallbackBaseURL: v.GetString("gateway.callback_base_url"),
		},
	}
	if cfg.Gateway.WebhookTimeout <= 0 {
		cfg.Gateway.WebhookTimeout = 30 * time.Second
	}
	return cfg, nil
}
