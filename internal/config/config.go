// ABOUTME: Centralized configuration for the esgos CLI and MCP server
// ABOUTME: Loads .env files, then environment variables with validation and defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds all configuration for esgos
type Config struct {
	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// GenAI settings
	BaseURL           string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RetryJitter       time.Duration
	RetryAfterRefresh bool
}

// Load reads .env files and then configuration from environment variables
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := &Config{
		CharmHost:         getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:       getEnv("CHARM_DB", "esgos"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
		BaseURL:           getEnv("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		Model:             getEnv("ESGOS_MODEL", "gemini-2.5-flash"),
		Timeout:           getEnvDuration("ESGOS_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("ESGOS_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("ESGOS_RETRY_DELAY", time.Second),
		RetryJitter:       getEnvDuration("ESGOS_RETRY_JITTER", time.Second),
		RetryAfterRefresh: getEnvBool("ESGOS_RETRY_AFTER_REFRESH", false),
	}

	return cfg, cfg.Validate()
}

// LoadDotEnv loads ./.env and $XDG_CONFIG_HOME/esgos/.env if present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(ConfigDir(), ".env"))
}

// ConfigDir returns the XDG config directory for esgos
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, "esgos")
}

// DataDir returns the XDG data directory for esgos
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "esgos")
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("ESGOS_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("ESGOS_RETRY_DELAY must not be negative, got %v", c.RetryDelay)
	}
	if c.RetryJitter < 0 {
		return fmt.Errorf("ESGOS_RETRY_JITTER must not be negative, got %v", c.RetryJitter)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ESGOS_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.Model == "" {
		return fmt.Errorf("ESGOS_MODEL must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("GEMINI_BASE_URL must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
