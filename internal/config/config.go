package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HTTPPort is the well-known plaintext port the corpus server listens on
	HTTPPort = 8080
	// HTTPSPort is the well-known TLS port the corpus server listens on
	HTTPSPort = 8443
)

var (
	// ConfigDir is the global configuration directory (~/.swgbench)
	ConfigDir string

	// DatabasePath is the SQLite database file for run history
	DatabasePath string

	// CertFile is the self-signed certificate used by the TLS corpus server
	CertFile string

	// KeyFile is the private key used by the TLS corpus server
	KeyFile string
)

// Initialize sets up the configuration directory and file paths.
// It creates ~/.swgbench/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".swgbench")
	DatabasePath = filepath.Join(ConfigDir, "swgbench.db")
	CertFile = filepath.Join(ConfigDir, "cert.pem")
	KeyFile = filepath.Join(ConfigDir, "key.pem")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// Settings holds the runtime configuration for a load-generation run.
// Every field has an environment default and can be overridden by flags.
type Settings struct {
	ServerIP        string
	MaxConnections  int
	HTTPSPercent    float64
	AvgObjectSizeMB float64
	DurationSec     int
	ManifestPath    string
	WeightsFile     string
}

// FromEnv builds Settings from environment variables, falling back to
// the same defaults the original harness shipped with.
func FromEnv() *Settings {
	return &Settings{
		ServerIP:        envString("SERVER_IP", "127.0.0.1"),
		MaxConnections:  envInt("MAX_CONNECTIONS", 300),
		HTTPSPercent:    envFloat("HTTPS_PERCENT", 50),
		AvgObjectSizeMB: envFloat("AVG_OBJECT_SIZE_MB", 2),
		DurationSec:     envInt("DURATION", 60),
		ManifestPath:    envString("CONFIG_PATH", "config.txt"),
	}
}

// Validate checks the settings before any traffic is generated.
func (s *Settings) Validate() error {
	if s.ServerIP == "" {
		return fmt.Errorf("server address is required")
	}
	if s.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if s.HTTPSPercent < 0 || s.HTTPSPercent > 100 {
		return fmt.Errorf("https percent must be between 0 and 100")
	}
	if s.AvgObjectSizeMB <= 0 {
		return fmt.Errorf("average object size must be greater than 0")
	}
	if s.DurationSec <= 0 {
		return fmt.Errorf("duration must be greater than 0")
	}
	if s.ManifestPath == "" {
		return fmt.Errorf("manifest path is required")
	}
	return nil
}

// Duration returns the run duration as time.Duration.
func (s *Settings) Duration() time.Duration {
	return time.Duration(s.DurationSec) * time.Second
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
