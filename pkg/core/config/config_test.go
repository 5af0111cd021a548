package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewer.Prefix != "#csai:" {
		t.Errorf("Viewer.Prefix = %q", cfg.Viewer.Prefix)
	}
	if cfg.Viewer.Workspace != "workspace" {
		t.Errorf("Viewer.Workspace = %q", cfg.Viewer.Workspace)
	}
	if cfg.ServerAddress() != "127.0.0.1:8000" {
		t.Errorf("ServerAddress() = %q", cfg.ServerAddress())
	}
	if cfg.History.Path != filepath.Join(".codasai", "data", "history.db") {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if cfg.History.Limit != 100 {
		t.Errorf("History.Limit = %d", cfg.History.Limit)
	}
	if cfg.Viewer.MaxSessions != 256 || cfg.Viewer.SessionIdleTimeout.Duration != 30*time.Minute {
		t.Errorf("session limits = %d, %v", cfg.Viewer.MaxSessions, cfg.Viewer.SessionIdleTimeout.Duration)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codasai.toml")
	content := `
[general]
log_level = "debug"
data_dir = "$CODASAI_TEST_DATA"

[viewer]
project = "/guides/lexer"
prefix = "#guide:"

[server]
port = 8123
read_timeout = "5s"

[grpc]
enabled = true
port = 9123
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODASAI_TEST_DATA", "/tmp/codasai-data")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
	if cfg.General.DataDir != "/tmp/codasai-data" {
		t.Errorf("DataDir = %q, want expanded", cfg.General.DataDir)
	}
	if cfg.Viewer.Workspace != filepath.Join("/guides/lexer", "workspace") {
		t.Errorf("Workspace = %q", cfg.Viewer.Workspace)
	}
	if cfg.Viewer.Prefix != "#guide:" {
		t.Errorf("Prefix = %q", cfg.Viewer.Prefix)
	}
	if cfg.Server.Port != 8123 || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout.Duration != 30*time.Second {
		t.Errorf("WriteTimeout default = %v", cfg.Server.WriteTimeout)
	}
	if !cfg.GRPC.Enabled || cfg.GRPCAddress() != "127.0.0.1:9123" {
		t.Errorf("GRPC = %+v", cfg.GRPC)
	}
	if cfg.History.Path != filepath.Join("/tmp/codasai-data", "history.db") {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[server\nport = 1"), 0o644)
	if _, err := Load(bad); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("bad TOML error = %v", err)
	}

	outOfRange := filepath.Join(dir, "range.toml")
	os.WriteFile(outOfRange, []byte("[server]\nport = 70000\n"), 0o644)
	if _, err := Load(outOfRange); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("port range error = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	os.WriteFile(path, []byte("[server]\nport = 8555\n"), 0o644)

	t.Setenv(EnvConfigPath, path)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Port != 8555 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
}
