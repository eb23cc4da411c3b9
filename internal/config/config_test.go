package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		ListenAddr: "0.0.0.0:8080",
		BaseDir:    "/home/user/.local/share/fintrack",
		DataDir:    "/home/user/.local/share/fintrack/data",
		LogDir:     "/home/user/.local/share/fintrack/log",
		Auth: AuthConfig{
			JWTSecret:     "abc123",
			AdminUsername: "admin",
			AdminPassword: "secret",
			TokenTTLHours: 12,
		},
		Archive: ArchiveConfig{
			Type:     "s3",
			S3Bucket: "fintrack-backups",
			S3Prefix: "prod",
			S3Region: "eu-west-1",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.ListenAddr != original.ListenAddr {
		t.Errorf("ListenAddr = %q, want %q", got.ListenAddr, original.ListenAddr)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.DataDir != original.DataDir {
		t.Errorf("DataDir = %q, want %q", got.DataDir, original.DataDir)
	}
	if got.Auth.JWTSecret != "abc123" {
		t.Errorf("Auth.JWTSecret = %q, want %q", got.Auth.JWTSecret, "abc123")
	}
	if got.Auth.TokenTTLHours != 12 {
		t.Errorf("Auth.TokenTTLHours = %d, want 12", got.Auth.TokenTTLHours)
	}
	if got.Archive.Type != "s3" {
		t.Errorf("Archive.Type = %q, want %q", got.Archive.Type, "s3")
	}
	if got.Archive.S3Bucket != "fintrack-backups" {
		t.Errorf("Archive.S3Bucket = %q, want %q", got.Archive.S3Bucket, "fintrack-backups")
	}
	if got.Archive.S3Region != "eu-west-1" {
		t.Errorf("Archive.S3Region = %q, want %q", got.Archive.S3Region, "eu-west-1")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/fintrack")

	if cfg.BaseDir != "/data/fintrack" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/fintrack")
	}
	if cfg.DataDir != "/data/fintrack/data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/data/fintrack/data")
	}
	if cfg.LogDir != "/data/fintrack/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/fintrack/log")
	}
	if cfg.ListenAddr != "127.0.0.1:3001" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "127.0.0.1:3001")
	}
	if cfg.Archive.Type != "filesystem" {
		t.Errorf("Archive.Type = %q, want %q", cfg.Archive.Type, "filesystem")
	}
	if cfg.Archive.Root != "/data/fintrack/backups" {
		t.Errorf("Archive.Root = %q, want %q", cfg.Archive.Root, "/data/fintrack/backups")
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("Auth.TokenTTLHours = %d, want 24", cfg.Auth.TokenTTLHours)
	}
}

func TestAuthEnvOverrides(t *testing.T) {
	cfg := NewConfig("/data/fintrack")
	cfg.Auth.AdminUsername = "file-user"
	cfg.Auth.AdminPassword = "file-pass"

	t.Run("falls back to config values", func(t *testing.T) {
		t.Setenv("FINTRACK_ADMIN_USERNAME", "")
		t.Setenv("FINTRACK_ADMIN_PASSWORD", "")

		if got := cfg.AdminUsername(); got != "file-user" {
			t.Errorf("AdminUsername() = %q, want %q", got, "file-user")
		}
		if got := cfg.AdminPassword(); got != "file-pass" {
			t.Errorf("AdminPassword() = %q, want %q", got, "file-pass")
		}
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("FINTRACK_ADMIN_USERNAME", "env-user")
		t.Setenv("FINTRACK_ADMIN_PASSWORD", "env-pass")

		if got := cfg.AdminUsername(); got != "env-user" {
			t.Errorf("AdminUsername() = %q, want %q", got, "env-user")
		}
		if got := cfg.AdminPassword(); got != "env-pass" {
			t.Errorf("AdminPassword() = %q, want %q", got, "env-pass")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fintrack.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fintrack.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fintrack.toml")
		cfg := NewConfig(dir)
		cfg.Archive = ArchiveConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Archive.Type != "memory" {
			t.Errorf("Archive.Type = %q, want %q", got.Archive.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/fintrack.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
