package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
}

// Config holds everything the bot reads from the environment.
type Config struct {
	BotToken    string `envconfig:"BOT_TOKEN"`
	SupabaseURL string `envconfig:"SUPABASE_URL"`
	SupabaseKey string `envconfig:"SUPABASE_KEY"`

	// RedisURL switches the pending-followup table to Redis when set;
	// empty keeps the in-memory table.
	RedisURL string `envconfig:"REDIS_URL"`

	CatalogPath string `envconfig:"CATALOG_PATH" default:"vendas_ultimos_30_dias.yaml"`

	// FollowupDelay is how long after a completed session the
	// satisfaction survey becomes eligible.
	FollowupDelay time.Duration `envconfig:"FOLLOWUP_DELAY" default:"60s"`
	// PollInterval is how often the scheduler checks for eligible
	// interactions.
	PollInterval time.Duration `envconfig:"FOLLOWUP_POLL_INTERVAL" default:"60s"`

	Log LogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %v", err)
	}

	return &config, nil
}

// MissingRequired lists the env variables that are empty but needed for
// live operation. Absence is a startup warning, not a fatal error.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_KEY")
	}
	return missing
}
