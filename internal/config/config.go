package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fintrack.
type Config struct {
	ListenAddr string        `toml:"listen_addr"`
	BaseDir    string        `toml:"base_dir"`
	DataDir    string        `toml:"data_dir"`
	LogDir     string        `toml:"log_dir"`
	Auth       AuthConfig    `toml:"auth"`
	Archive    ArchiveConfig `toml:"archive"`
}

// AuthConfig holds the credentials and token settings for the HTTP API.
// Admin credentials may be overridden by the FINTRACK_ADMIN_USERNAME and
// FINTRACK_ADMIN_PASSWORD environment variables.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

// ArchiveConfig represents configuration for the snapshot archive backend.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// NewConfig creates a new Config with the provided base directory and
// default values for everything else.
func NewConfig(baseDir string) *Config {
	return &Config{
		ListenAddr: "127.0.0.1:3001",
		BaseDir:    baseDir,
		DataDir:    filepath.Join(baseDir, "data"),
		LogDir:     filepath.Join(baseDir, "log"),
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Archive: ArchiveConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "backups"),
		},
	}
}

// AdminUsername returns the admin username, preferring the environment.
func (c *Config) AdminUsername() string {
	if v := os.Getenv("FINTRACK_ADMIN_USERNAME"); v != "" {
		return v
	}
	return c.Auth.AdminUsername
}

// AdminPassword returns the admin password, preferring the environment.
func (c *Config) AdminPassword() string {
	if v := os.Getenv("FINTRACK_ADMIN_PASSWORD"); v != "" {
		return v
	}
	return c.Auth.AdminPassword
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
