package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the caller ID lookup service. Values are
// read from configs/config.defaults.yaml and overridden by APP_-prefixed
// environment variables (e.g. APP_MEEVO_CLIENT_SECRET).
type Config struct {
	ServerPort int    `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Upstream salon-management API (Meevo public API).
	MeevoAuthURL      string `mapstructure:"MEEVO_AUTH_URL"`
	MeevoAPIURL       string `mapstructure:"MEEVO_API_URL"`
	MeevoClientID     string `mapstructure:"MEEVO_CLIENT_ID"`
	MeevoClientSecret string `mapstructure:"MEEVO_CLIENT_SECRET"`
	MeevoTenantID     string `mapstructure:"MEEVO_TENANT_ID"`
	MeevoLocationID   string `mapstructure:"MEEVO_LOCATION_ID"`

	// Per-call timeout for outbound upstream requests. The inbound webhook
	// has a hard ~10s deadline, so page caps below bound total stage time.
	HTTPClientTimeoutSeconds int `mapstructure:"HTTP_CLIENT_TIMEOUT_SECONDS"`
	TokenSafetyMarginMinutes int `mapstructure:"TOKEN_SAFETY_MARGIN_MINUTES"`

	// Directory scan. The upstream returns different result sets for
	// different page sizes, so ItemsPerPage stays configurable.
	ScanMaxPages     int  `mapstructure:"SCAN_MAX_PAGES"`
	ScanItemsPerPage int  `mapstructure:"SCAN_ITEMS_PER_PAGE"`
	ScanParallel     bool `mapstructure:"SCAN_PARALLEL"`
	ScanBatchSize    int  `mapstructure:"SCAN_BATCH_SIZE"`

	// Recent-change feed fast path.
	FeedEnabled       bool `mapstructure:"FEED_ENABLED"`
	FeedLookbackHours int  `mapstructure:"FEED_LOOKBACK_HOURS"`
	FeedMaxPages      int  `mapstructure:"FEED_MAX_PAGES"`

	// Optional lookup-event publishing; empty URL disables it.
	NATSUrl string `mapstructure:"NATS_URL"`
}

func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP")

	v.SetDefault("SERVER_PORT", 3000)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("MEEVO_AUTH_URL", "https://marketplace.meevo.com/oauth2/token")
	v.SetDefault("MEEVO_API_URL", "https://na1pub.meevo.com/publicapi/v1")
	v.SetDefault("MEEVO_CLIENT_ID", "")
	v.SetDefault("MEEVO_CLIENT_SECRET", "")
	v.SetDefault("MEEVO_TENANT_ID", "")
	v.SetDefault("MEEVO_LOCATION_ID", "")

	v.SetDefault("HTTP_CLIENT_TIMEOUT_SECONDS", 5)
	v.SetDefault("TOKEN_SAFETY_MARGIN_MINUTES", 5)

	v.SetDefault("SCAN_MAX_PAGES", 10)
	v.SetDefault("SCAN_ITEMS_PER_PAGE", 20)
	v.SetDefault("SCAN_PARALLEL", false)
	v.SetDefault("SCAN_BATCH_SIZE", 10)

	v.SetDefault("FEED_ENABLED", true)
	v.SetDefault("FEED_LOOKBACK_HOURS", 24)
	v.SetDefault("FEED_MAX_PAGES", 3)

	v.SetDefault("NATS_URL", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Configuration file not found for %s; using defaults and environment variables.", serviceName)
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
