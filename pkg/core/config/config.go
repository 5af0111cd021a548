// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     config
// Description: Typed TOML application configuration
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// EnvConfigPath names the variable LoadFromEnv reads the config path from
const EnvConfigPath = "CODASAI_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Viewer  ViewerConfig  `toml:"viewer"`
	Server  ServerConfig  `toml:"server"`
	GRPC    GRPCConfig    `toml:"grpc"`
	History HistoryConfig `toml:"history"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// ViewerConfig describes the guide project being viewed
type ViewerConfig struct {
	// Project is the guide root containing .codasai/ and workspace/
	Project string `toml:"project"`
	// Workspace overrides <project>/workspace
	Workspace string `toml:"workspace"`
	// Prefix marks a URL fragment as a command
	Prefix string `toml:"prefix"`
	// MaxSessions bounds the live sessions of the preview and gRPC servers
	MaxSessions int `toml:"max_sessions"`
	// SessionIdleTimeout drops sessions unused for this long
	SessionIdleTimeout Duration `toml:"session_idle_timeout"`
}

// ServerConfig holds the preview HTTP server settings
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// GRPCConfig holds the remote dispatch service settings
type GRPCConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Reflection bool   `toml:"reflection"`
}

// HistoryConfig holds navigation history storage settings
type HistoryConfig struct {
	Path  string `toml:"path"`
	Limit int    `toml:"limit"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.New(fmt.Sprintf("config file not found: %s", path)).
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.Load")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.expandEnvVars()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by CODASAI_CONFIG, then the default
// locations. Without any file it returns Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	home, _ := os.UserHomeDir()
	defaultPaths := []string{
		"./codasai.toml",
		"./.codasai/codasai.toml",
		filepath.Join(home, ".config", "codasai", "config.toml"),
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return mdwerror.New("server port out of range").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("port", c.Server.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return mdwerror.New("grpc port out of range").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("port", c.GRPC.Port)
	}
	if c.Viewer.MaxSessions < 0 {
		return mdwerror.New("max sessions cannot be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate")
	}
	if c.History.Limit < 0 {
		return mdwerror.New("history limit cannot be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate")
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "codasai"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./.codasai/data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Viewer
	if c.Viewer.Project == "" {
		c.Viewer.Project = "."
	}
	if c.Viewer.Workspace == "" {
		c.Viewer.Workspace = filepath.Join(c.Viewer.Project, "workspace")
	}
	if c.Viewer.Prefix == "" {
		c.Viewer.Prefix = "#csai:"
	}
	if c.Viewer.MaxSessions == 0 {
		c.Viewer.MaxSessions = 256
	}
	if c.Viewer.SessionIdleTimeout.Duration == 0 {
		c.Viewer.SessionIdleTimeout.Duration = 30 * time.Minute
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9000
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Limit == 0 {
		c.History.Limit = 100
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Viewer.Project = os.ExpandEnv(c.Viewer.Project)
	c.Viewer.Workspace = os.ExpandEnv(c.Viewer.Workspace)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// ServerAddress returns host:port of the preview server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns host:port of the dispatch service
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
