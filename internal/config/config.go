// Package config loads application configuration from an optional YAML file
// and environment variables. Environment variables take precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG data and config directories.
const AppName = "towerpanel"

const (
	envAPIBaseURL  = "TOWERPANEL_API_BASE_URL"
	envDBPath      = "TOWERPANEL_DB_PATH"
	envSecretKey   = "TOWERPANEL_SECRET_KEY"
	envHTTPTimeout = "TOWERPANEL_HTTP_TIMEOUT"
	envLogLevel    = "TOWERPANEL_LOG_LEVEL"
	envLogoutOn401 = "TOWERPANEL_LOGOUT_ON_401"
	envHTTPCache   = "TOWERPANEL_HTTP_CACHE"
	envFormPayload = "TOWERPANEL_FORM_PAYLOADS"
)

// DefaultHTTPTimeout bounds every backend request.
const DefaultHTTPTimeout = 30 * time.Second

// ErrConfigNotFound is returned when an explicitly requested config file
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config holds the application configuration.
type Config struct {
	APIBaseURL   string
	DBPath       string
	SecretKey    []byte // nil when not configured
	HTTPTimeout  time.Duration
	LogLevel     slog.Level
	LogoutOn401  bool
	HTTPCache    bool
	FormPayloads bool // tower payloads as form data even without a photo

	// File is the config file that was read, or empty if none was found.
	File string
}

// HasSecretKey reports whether credentials can be stored encrypted.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// fileConfig mirrors the YAML file. Every key is optional.
type fileConfig struct {
	APIBaseURL  string `yaml:"api_base_url"`
	DBPath      string `yaml:"db_path"`
	SecretKey   string `yaml:"secret_key"`
	HTTPTimeout string `yaml:"http_timeout"`
	LogLevel    string `yaml:"log_level"`
	LogoutOn401 *bool  `yaml:"logout_on_401"`
	HTTPCache   *bool  `yaml:"http_cache"`
	FormPayload *bool  `yaml:"form_payloads"`
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/towerpanel/config.yaml.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultDBPath returns $XDG_DATA_HOME/towerpanel/towerpanel.db.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// Load reads configuration and returns a validated Config.
//
// configPath names a YAML file to read; it must exist. With an empty
// configPath the default file is read if present. Environment variables
// override file values:
//
//	TOWERPANEL_API_BASE_URL   backend base URL (required)
//	TOWERPANEL_DB_PATH        local state database (default DefaultDBPath)
//	TOWERPANEL_SECRET_KEY     64 hex chars; enables encrypted token storage
//	TOWERPANEL_HTTP_TIMEOUT   request timeout (default 30s)
//	TOWERPANEL_LOG_LEVEL      debug, info, warn or error (default info)
//	TOWERPANEL_LOGOUT_ON_401  end the session when the backend rejects the token (default true)
//	TOWERPANEL_HTTP_CACHE     keep the ETag response cache (default true)
//	TOWERPANEL_FORM_PAYLOADS  send tower payloads as form data without a photo (default false)
func Load(configPath string) (*Config, error) {
	var fc fileConfig
	var loadedFrom string

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile()
	}
	loaded, err := loadFile(configPath)
	switch {
	case err == nil:
		fc = *loaded
		loadedFrom = configPath
	case errors.Is(err, ErrConfigNotFound) && !explicit:
		// The default file is optional.
	default:
		return nil, err
	}

	apiBaseURL := pick(envAPIBaseURL, fc.APIBaseURL)
	if apiBaseURL == "" {
		return nil, fmt.Errorf("%s is required", envAPIBaseURL)
	}

	dbPath := pick(envDBPath, fc.DBPath)
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	var secretKey []byte
	if v := pick(envSecretKey, fc.SecretKey); v != "" {
		secretKey, err = parseSecretKey(v)
		if err != nil {
			return nil, err
		}
	}

	timeout := DefaultHTTPTimeout
	if v := pick(envHTTPTimeout, fc.HTTPTimeout); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s has invalid duration %q: %w", envHTTPTimeout, v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("%s must not be negative, got %s", envHTTPTimeout, v)
		}
		timeout = parsed
	}

	level := slog.LevelInfo
	if v := pick(envLogLevel, fc.LogLevel); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s has invalid level %q: %w", envLogLevel, v, err)
		}
	}

	logoutOn401, err := pickBool(envLogoutOn401, fc.LogoutOn401, true)
	if err != nil {
		return nil, err
	}
	httpCache, err := pickBool(envHTTPCache, fc.HTTPCache, true)
	if err != nil {
		return nil, err
	}
	formPayloads, err := pickBool(envFormPayload, fc.FormPayload, false)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:   strings.TrimRight(apiBaseURL, "/"),
		DBPath:       dbPath,
		SecretKey:    secretKey,
		HTTPTimeout:  timeout,
		LogLevel:     level,
		LogoutOn401:  logoutOn401,
		HTTPCache:    httpCache,
		FormPayloads: formPayloads,
		File:         loadedFrom,
	}, nil
}

// pick returns the environment value for key if set, otherwise fallback.
func pick(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

// pickBool resolves a boolean setting from the environment, the file value
// and the default, in that order.
func pickBool(key string, file *bool, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		if file != nil {
			return *file, nil
		}
		return def, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return parsed, nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, nil
}

// parseSecretKey decodes a 64-character hex string into a 32-byte AES-256 key.
func parseSecretKey(v string) ([]byte, error) {
	if len(v) != 64 {
		return nil, fmt.Errorf("%s must be 64 hex characters, got %d", envSecretKey, len(v))
	}
	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid hex: %w", envSecretKey, err)
	}
	return key, nil
}
