package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mikequentel/banner/internal/model"
)

// Environment variable names for the four OAuth1 credentials.
const (
	EnvConsumerKey       = "TIMTEAFAN_TWITTER_CONSUMER_API_KEY"
	EnvConsumerSecret    = "TIMTEAFAN_TWITTER_CONSUMER_API_SECRET"
	EnvAccessToken       = "TIMTEAFAN_TWITTER_ACCESS_TOKEN"
	EnvAccessTokenSecret = "TIMTEAFAN_TWITTER_ACCESS_TOKEN_SECRET"
)

// Config holds all application configuration.
type Config struct {
	// OAuth1 user context (secrets, never log these)
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string

	// Banner image to upload
	BannerPath string

	// Upload history (SQLite)
	HistoryPath string

	// Deadline for a whole run
	Timeout time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
// Missing credentials are not an error here; see ValidateForUpload.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ConsumerKey:       os.Getenv(EnvConsumerKey),
		ConsumerSecret:    os.Getenv(EnvConsumerSecret),
		AccessToken:       os.Getenv(EnvAccessToken),
		AccessTokenSecret: os.Getenv(EnvAccessTokenSecret),
		BannerPath:        getEnv("BANNER_PATH", "data/final_plot.png"),
		HistoryPath:       getEnv("BANNER_HISTORY_DB", "data/banner_history.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.Timeout, err = time.ParseDuration(getEnv("BANNER_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BANNER_TIMEOUT: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid BANNER_TIMEOUT: must be positive, got %s", cfg.Timeout)
	}

	return cfg, nil
}

// Credentials returns the OAuth1 credential set.
func (c *Config) Credentials() model.Credentials {
	return model.Credentials{
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessToken:       c.AccessToken,
		AccessTokenSecret: c.AccessTokenSecret,
	}
}

// ValidateForAPI checks the credentials needed to talk to the API.
// The error names the missing variables, never their values.
func (c *Config) ValidateForAPI() error {
	var missing []string
	for _, v := range []struct{ name, val string }{
		{EnvConsumerKey, c.ConsumerKey},
		{EnvConsumerSecret, c.ConsumerSecret},
		{EnvAccessToken, c.AccessToken},
		{EnvAccessTokenSecret, c.AccessTokenSecret},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", model.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateForUpload checks configuration needed to upload a banner.
func (c *Config) ValidateForUpload() error {
	if err := c.ValidateForAPI(); err != nil {
		return err
	}
	if c.BannerPath == "" {
		return fmt.Errorf("BANNER_PATH is required")
	}
	return nil
}

// ValidateForHistory checks configuration needed for the history store.
func (c *Config) ValidateForHistory() error {
	if c.HistoryPath == "" {
		return fmt.Errorf("BANNER_HISTORY_DB is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
