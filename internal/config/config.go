// Package config loads application configuration from TOML files,
// trying a list of candidate paths so binaries can run from the repo
// root or from their own directory.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig holds application-wide settings.
type MainConfig struct {
	AppName string `toml:"appName"` // application name, used in logs
	Mode    string `toml:"mode"`    // "dev" or "release"
}

// APIConfig describes the external chat backend.
type APIConfig struct {
	BaseURL        string `toml:"baseURL"`        // backend base URL, e.g. "http://localhost:8000"
	RequestTimeout int    `toml:"requestTimeout"` // per-request timeout in seconds, 0 means 10
}

// PollingConfig controls the two poll loops.
type PollingConfig struct {
	UnseenIntervalMs       int `toml:"unseenIntervalMs"`       // unseen-message poll interval, default 5000
	ConversationIntervalMs int `toml:"conversationIntervalMs"` // conversation poll interval, default 4000
	MessagePageSize        int `toml:"messagePageSize"`        // messages per conversation fetch, default 40
	UserPageLimit          int `toml:"userPageLimit"`          // directory page size, default 200
}

// LogConfig configures the zap/lumberjack logger.
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // log file directory
	FileName   string `toml:"fileName"`   // log file name
	MaxSize    int    `toml:"maxSize"`    // max size per file in MB
	MaxBackups int    `toml:"maxBackups"` // rotated files to keep
	MaxAge     int    `toml:"maxAge"`     // rotated file retention in days
	Level      string `toml:"level"`      // debug, info, warn, error
}

// JWTConfig configures token signing for the stub backend.
type JWTConfig struct {
	Secret            string `toml:"secret"`            // HS256 signing key
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // access token lifetime in minutes
}

// StubConfig configures the development stub server.
type StubConfig struct {
	Host string `toml:"host"` // listen address, e.g. "127.0.0.1"
	Port int    `toml:"port"` // listen port, e.g. 8000
}

// Config aggregates all sections.
type Config struct {
	MainConfig    `toml:"mainConfig"`
	APIConfig     `toml:"apiConfig"`
	PollingConfig `toml:"pollingConfig"`
	LogConfig     `toml:"logConfig"`
	JWTConfig     `toml:"jwtConfig"`
	StubConfig    `toml:"stubConfig"`
}

// RequestTimeoutDuration returns the configured request timeout,
// defaulting to 10 seconds.
func (c *APIConfig) RequestTimeoutDuration() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// UnseenInterval returns the unseen poll interval, defaulting to 5s.
func (c *PollingConfig) UnseenInterval() time.Duration {
	if c.UnseenIntervalMs <= 0 {
		return 5000 * time.Millisecond
	}
	return time.Duration(c.UnseenIntervalMs) * time.Millisecond
}

// ConversationInterval returns the conversation poll interval, defaulting to 4s.
func (c *PollingConfig) ConversationInterval() time.Duration {
	if c.ConversationIntervalMs <= 0 {
		return 4000 * time.Millisecond
	}
	return time.Duration(c.ConversationIntervalMs) * time.Millisecond
}

// config is the lazily loaded global instance.
var config *Config

// LoadConfig tries each candidate path in order and stops at the first
// file that parses.
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml",
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig returns the global configuration, loading it on first use.
// A missing file is tolerated; section defaults apply.
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
