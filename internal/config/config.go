// Package config loads the bot settings from the environment.
//
// Values come from process environment variables, optionally seeded from a .env
// file, and are parsed with github.com/caarlos0/env. Load validates everything
// up front so that a misconfigured bot exits before opening any connection.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/diegoclair/screenshot-bot/internal/domain"
	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
	"github.com/joho/godotenv"
)

type Config struct {
	Slack      SlackConfig
	Screenshot ScreenshotConfig
	Send       SendConfig

	Port         string `env:"PORT" envDefault:"8080"`
	StagingDir   string `env:"STAGING_DIR"`
	HeartbeatURL string `env:"HEARTBEAT_URL"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// TestMode fires one extra cycle TestDelay after the first connection.
	TestMode  bool          `env:"TEST_MODE" envDefault:"false"`
	TestDelay time.Duration `env:"TEST_DELAY" envDefault:"10s"`

	schedule entity.Schedule
	logLevel slog.Level
}

type SlackConfig struct {
	BotToken string `env:"SLACK_BOT_TOKEN,required,notEmpty"`
	AppToken string `env:"SLACK_APP_TOKEN,required,notEmpty"`
	// SigningSecret enables the HTTP slash command endpoint when set.
	SigningSecret string `env:"SLACK_SIGNING_SECRET"`
	ChannelID     string `env:"SLACK_CHANNEL_ID,required,notEmpty"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
}

type ScreenshotConfig struct {
	APIKey     string        `env:"SCREENSHOT_KEY,required,notEmpty"`
	APIURL     string        `env:"SCREENSHOT_API_URL" envDefault:"https://api.screenshotmachine.com/"`
	TargetURL  string        `env:"SCREENSHOT_TARGET_URL" envDefault:"https://hytale.com/countdown"`
	Dimension  string        `env:"SCREENSHOT_DIMENSION" envDefault:"1366xfull"`
	Device     string        `env:"SCREENSHOT_DEVICE" envDefault:"desktop"`
	Format     string        `env:"SCREENSHOT_FORMAT" envDefault:"png"`
	CacheLimit int           `env:"SCREENSHOT_CACHE_LIMIT" envDefault:"0"`
	Delay      int           `env:"SCREENSHOT_DELAY" envDefault:"2000"`
	Zoom       int           `env:"SCREENSHOT_ZOOM" envDefault:"100"`
	Timeout    time.Duration `env:"SCREENSHOT_TIMEOUT" envDefault:"60s"`
}

type SendConfig struct {
	Time        string `env:"SEND_TIME" envDefault:"15:00"`
	Timezone    string `env:"SEND_TIMEZONE" envDefault:"Europe/Rome"`
	Caption     string `env:"CAPTION" envDefault:"Here is today's countdown:"`
	TestCaption string `env:"TEST_CAPTION" envDefault:"Here is the test screenshot:"`
}

var (
	validFormats = map[string]bool{"png": true, "jpg": true, "gif": true}
	validDevices = map[string]bool{"desktop": true, "phone": true, "tablet": true}
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	return Parse(env.Options{})
}

// Parse builds a validated Config. Every failure is a *domain.ConfigurationError.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, toConfigurationError(err)
	}

	cfg.sanitize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Schedule is the daily send time, valid after Parse.
func (c *Config) Schedule() entity.Schedule {
	return c.schedule
}

func (c *Config) Level() slog.Level {
	return c.logLevel
}

// Addr is the liveness listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) sanitize() {
	c.Slack.ChannelID = strings.TrimSpace(c.Slack.ChannelID)
	c.Screenshot.Format = strings.ToLower(strings.TrimSpace(c.Screenshot.Format))
	c.Screenshot.Device = strings.ToLower(strings.TrimSpace(c.Screenshot.Device))
	c.Send.Time = strings.TrimSpace(c.Send.Time)
	c.Send.Timezone = strings.TrimSpace(c.Send.Timezone)
	c.Port = strings.TrimSpace(c.Port)
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Send.Timezone); err != nil {
		return &domain.ConfigurationError{Field: "SEND_TIMEZONE", Message: err.Error()}
	}
	schedule, err := entity.ParseSchedule(c.Send.Time, c.Send.Timezone)
	if err != nil {
		return &domain.ConfigurationError{Field: "SEND_TIME", Message: err.Error()}
	}
	c.schedule = schedule

	if err := c.logLevel.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return &domain.ConfigurationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}

	if !validFormats[c.Screenshot.Format] {
		return &domain.ConfigurationError{Field: "SCREENSHOT_FORMAT", Message: fmt.Sprintf("unsupported format %q, use png, jpg or gif", c.Screenshot.Format)}
	}
	if !validDevices[c.Screenshot.Device] {
		return &domain.ConfigurationError{Field: "SCREENSHOT_DEVICE", Message: fmt.Sprintf("unsupported device %q", c.Screenshot.Device)}
	}

	for field, raw := range map[string]string{
		"SCREENSHOT_API_URL":    c.Screenshot.APIURL,
		"SCREENSHOT_TARGET_URL": c.Screenshot.TargetURL,
		"HEARTBEAT_URL":         c.HeartbeatURL,
	} {
		if raw == "" && field == "HEARTBEAT_URL" {
			continue
		}
		if err := validateHTTPURL(raw); err != nil {
			return &domain.ConfigurationError{Field: field, Message: err.Error()}
		}
	}

	switch {
	case c.Screenshot.CacheLimit < 0:
		return &domain.ConfigurationError{Field: "SCREENSHOT_CACHE_LIMIT", Message: "must not be negative"}
	case c.Screenshot.Delay < 0:
		return &domain.ConfigurationError{Field: "SCREENSHOT_DELAY", Message: "must not be negative"}
	case c.Screenshot.Zoom <= 0:
		return &domain.ConfigurationError{Field: "SCREENSHOT_ZOOM", Message: "must be positive"}
	case c.Screenshot.Timeout <= 0:
		return &domain.ConfigurationError{Field: "SCREENSHOT_TIMEOUT", Message: "must be positive"}
	case c.TestDelay < 0:
		return &domain.ConfigurationError{Field: "TEST_DELAY", Message: "must not be negative"}
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return &domain.ConfigurationError{Field: "PORT", Message: fmt.Sprintf("invalid port %q", c.Port)}
	}

	if c.StagingDir != "" {
		info, err := os.Stat(c.StagingDir)
		if err != nil || !info.IsDir() {
			return &domain.ConfigurationError{Field: "STAGING_DIR", Message: fmt.Sprintf("%q is not a directory", c.StagingDir)}
		}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// toConfigurationError reports every missing variable at once, and the first other
// parse failure otherwise.
func toConfigurationError(err error) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return &domain.ConfigurationError{Message: err.Error()}
	}

	var missing []string
	for _, e := range agg.Errors {
		var notSet env.VarIsNotSetError
		var empty env.EmptyVarError
		switch {
		case errors.As(e, &notSet):
			missing = append(missing, notSet.Key)
		case errors.As(e, &empty):
			missing = append(missing, empty.Key)
		}
	}
	if len(missing) > 0 {
		return &domain.ConfigurationError{Field: strings.Join(missing, ", "), Message: "is required"}
	}

	var parseErr env.ParseError
	if errors.As(err, &parseErr) {
		return &domain.ConfigurationError{Field: parseErr.Name, Message: parseErr.Err.Error()}
	}
	return &domain.ConfigurationError{Message: err.Error()}
}
