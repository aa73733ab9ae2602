package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures everything patrol needs at startup.
type Config struct {
	URL            string        // collection endpoint
	APIKey         string        // sent as apikey and bearer token
	PollInterval   time.Duration // automatic refresh period
	RequestTimeout time.Duration // per-request bound
	LogFile        string
	LogLevel       string
}

const (
	defaultConfigPath     = "~/.config/patrol/config.toml"
	defaultLogFile        = "~/.local/state/patrol/patrol.log"
	defaultLogLevel       = "info"
	defaultPollInterval   = 10 * time.Second
	defaultRequestTimeout = 10 * time.Second
	envPrefix             = "PATROL"
)

// Load reads the TOML config file at path (or the default location) and applies
// PATROL_* environment overrides. A missing file is not an error. The two
// connection parameters are not validated: if they are absent or wrong, the
// remote requests fail and the UI reports that.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("poll_interval", defaultPollInterval.String())
	v.SetDefault("request_timeout", defaultRequestTimeout.String())
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("log_level", defaultLogLevel)

	if _, err := os.Stat(resolved); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		v.SetConfigFile(resolved)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		URL:      strings.TrimSpace(v.GetString("url")),
		APIKey:   strings.TrimSpace(v.GetString("api_key")),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	cfg.PollInterval, err = parseDuration(v.GetString("poll_interval"), defaultPollInterval)
	if err != nil {
		return Config{}, fmt.Errorf("poll_interval: %w", err)
	}
	cfg.RequestTimeout, err = parseDuration(v.GetString("request_timeout"), defaultRequestTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("request_timeout: %w", err)
	}

	logFile := strings.TrimSpace(v.GetString("log_file"))
	if logFile == "" {
		logFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(logFile)

	return cfg, nil
}

// parseDuration accepts Go duration strings ("10s") or bare seconds ("10").
func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		secs, convErr := time.ParseDuration(trimmed + "s")
		if convErr != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		d = secs
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
