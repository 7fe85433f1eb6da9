package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Knowledge base sources. The general tier is required; without it the
	// router cannot serve anything. The senior tier is optional and its
	// absence degrades to always deferring to model reasoning.
	GeneralKBPath string `envconfig:"GENERAL_KB_PATH" required:"true"`
	SeniorKBPath  string `envconfig:"SENIOR_KB_PATH"`

	// Per-tier similarity thresholds (0-100). A match must strictly exceed
	// the threshold for the tier to answer.
	GeneralThreshold int `envconfig:"GENERAL_THRESHOLD" default:"75"`
	SeniorThreshold  int `envconfig:"SENIOR_THRESHOLD" default:"75"`

	// TopicsPath points to a YAML sensitive-topic vocabulary; empty uses the
	// built-in defaults.
	TopicsPath string `envconfig:"TOPICS_PATH"`

	// ReloadInterval is how often KB sources are polled for changes.
	// Zero disables hot reload.
	ReloadInterval time.Duration `envconfig:"RELOAD_INTERVAL" default:"30s"`

	// DatabaseURL enables the Postgres decision audit log when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// OpenAIAPIKey enables model-generated replies for escalated queries.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// APIKeys is a comma-separated list of accepted bearer tokens. Empty
	// leaves the API open (local development).
	APIKeys string `envconfig:"API_KEYS"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RELAY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	// envconfig's required tag does not reject a set-but-empty variable.
	if c.GeneralKBPath == "" {
		return fmt.Errorf("RELAY_GENERAL_KB_PATH must not be empty")
	}
	if c.GeneralThreshold < 0 || c.GeneralThreshold > 100 {
		return fmt.Errorf("RELAY_GENERAL_THRESHOLD must be in [0, 100], got %d", c.GeneralThreshold)
	}
	if c.SeniorThreshold < 0 || c.SeniorThreshold > 100 {
		return fmt.Errorf("RELAY_SENIOR_THRESHOLD must be in [0, 100], got %d", c.SeniorThreshold)
	}
	return nil
}

func (c *Config) HasSeniorKB() bool {
	return c.SeniorKBPath != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// APIKeyList splits the configured keys, dropping empty segments.
func (c *Config) APIKeyList() []string {
	if c.APIKeys == "" {
		return nil
	}
	var keys []string
	for _, key := range strings.Split(c.APIKeys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
