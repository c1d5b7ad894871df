package daemon

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultAddr is the daemon's loopback listen address.
const DefaultAddr = "127.0.0.1:8766"

// Config holds daemon settings, populated from JURYBOX_* environment
// variables with flag overrides applied by the CLI.
type Config struct {
	// Addr is the loopback listen address.
	Addr string `envconfig:"ADDR" default:"127.0.0.1:8766"`

	// Model is the ollama model tag to keep resident.
	Model string `envconfig:"MODEL" default:"llama3.1:8b"`

	// OllamaURL is the local ollama API base.
	OllamaURL string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	// Environment selects log format: development or production.
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// SentryDSN enables error reporting when set.
	SentryDSN string `envconfig:"SENTRY_DSN"`

	// ValidateMaxTokens bounds binary validation generation.
	ValidateMaxTokens int `envconfig:"VALIDATE_MAX_TOKENS" default:"5"`

	// ValidateMaxBytes caps validation output length.
	ValidateMaxBytes int `envconfig:"VALIDATE_MAX_BYTES" default:"15"`

	// WorldMaxTokens bounds world-creation generation.
	WorldMaxTokens int `envconfig:"WORLD_MAX_TOKENS" default:"500"`

	// StateMaxTokens bounds state-advancement generation.
	StateMaxTokens int `envconfig:"STATE_MAX_TOKENS" default:"400"`

	// RequestTimeout bounds one connection's request handling, generation
	// included.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
}

// LoadConfig reads Config from the environment under the JURYBOX prefix.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("jurybox", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading daemon config: %w", err)
	}
	return cfg, nil
}
