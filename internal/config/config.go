// Package config defines the Agora daemon configuration and its loader.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pacifico/agora/internal/logger"
	"github.com/pacifico/agora/pkg/brain"
)

// Config represents the main Agora configuration.
type Config struct {
	// Server holds the HTTP boundary settings.
	Server ServerConfig `json:"server" mapstructure:"server"`

	// AI holds the remote reasoning credentials. Empty profiles run the
	// whole daemon on the simulated backend.
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Auth points at the account provisioning backend.
	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// Session holds orchestrator tuning.
	Session SessionConfig `json:"session" mapstructure:"session"`

	// Logging configures the process logger.
	Logging logger.Config `json:"logging" mapstructure:"logging"`

	// DataDir is the root for themes, map data and transcripts.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host          string `json:"host" mapstructure:"host"`
	Port          int    `json:"port" mapstructure:"port"`
	RatePerMinute int    `json:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// AIConfig holds AI provider configuration.
type AIConfig struct {
	Profiles []AIProfile `json:"profiles" mapstructure:"profiles"`
}

// AIProfile represents an AI provider profile.
type AIProfile struct {
	ID       string `json:"id" mapstructure:"id"`
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Model    string `json:"model" mapstructure:"model"`
	Priority int    `json:"priority" mapstructure:"priority"`
}

// AuthConfig holds the provisioning backend settings.
type AuthConfig struct {
	BaseURL    string `json:"base_url" mapstructure:"base_url"`
	ServiceKey string `json:"service_key" mapstructure:"service_key"`
}

// SessionConfig holds orchestrator tuning.
type SessionConfig struct {
	IdleTTLHours          int `json:"idle_ttl_hours" mapstructure:"idle_ttl_hours"`
	BackendTimeoutSeconds int `json:"backend_timeout_seconds" mapstructure:"backend_timeout_seconds"`
	SimulatedLatencyMS    int `json:"simulated_latency_ms" mapstructure:"simulated_latency_ms"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			RatePerMinute: 60,
		},
		AI: AIConfig{
			Profiles: []AIProfile{},
		},
		Session: SessionConfig{
			IdleTTLHours:          24,
			BackendTimeoutSeconds: 30,
			SimulatedLatencyMS:    500,
		},
		Logging: logger.DefaultConfig(),
		DataDir: "",
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid. Remote credentials are
// optional; when present they must be complete.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RatePerMinute < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}

	for i, profile := range c.AI.Profiles {
		if profile.ID == "" {
			return fmt.Errorf("AI profile %d: ID is required", i)
		}
		if profile.APIKey == "" {
			return fmt.Errorf("AI profile %s: api_key is required", profile.ID)
		}
		switch profile.Provider {
		case "anthropic":
			if !strings.HasPrefix(profile.APIKey, "sk-ant-") {
				return fmt.Errorf("AI profile %s: invalid Anthropic API key format (should start with sk-ant-)", profile.ID)
			}
		case "openai":
			if !strings.HasPrefix(profile.APIKey, "sk-") {
				return fmt.Errorf("AI profile %s: invalid OpenAI API key format (should start with sk-)", profile.ID)
			}
		default:
			return fmt.Errorf("AI profile %s: invalid provider %s (must be: anthropic, openai)", profile.ID, profile.Provider)
		}
	}

	if (c.Auth.BaseURL == "") != (c.Auth.ServiceKey == "") {
		return fmt.Errorf("auth base_url and service_key must be set together")
	}

	if c.Session.IdleTTLHours <= 0 {
		return fmt.Errorf("session idle_ttl_hours must be positive, got %d", c.Session.IdleTTLHours)
	}
	if c.Session.BackendTimeoutSeconds <= 0 {
		return fmt.Errorf("session backend_timeout_seconds must be positive, got %d", c.Session.BackendTimeoutSeconds)
	}
	if c.Session.SimulatedLatencyMS < 0 {
		return fmt.Errorf("session simulated_latency_ms cannot be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Credentials converts the AI profiles into backend credentials, highest
// priority first.
func (c *Config) Credentials() []brain.Credential {
	profiles := append([]AIProfile{}, c.AI.Profiles...)
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Priority > profiles[j].Priority
	})

	creds := make([]brain.Credential, 0, len(profiles))
	for _, p := range profiles {
		creds = append(creds, brain.Credential{
			Provider: p.Provider,
			APIKey:   p.APIKey,
			Model:    p.Model,
		})
	}
	return creds
}
