package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the top-level runtime configuration for the builder module.
type Config struct {
	Storage  StorageConfig
	Cache    CacheConfig
	Assets   AssetConfig
	Autosave AutosaveConfig
	Publish  PublishConfig
	Seeds    SeedConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the database backend.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is the driver-specific connection string.
	DSN string
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// AssetConfig constrains uploads and locates blob storage.
type AssetConfig struct {
	// BaseDir is the filesystem root for the default object storage.
	BaseDir string
	// MaxSizeBytes caps a single upload; zero disables the check.
	MaxSizeBytes int64
	// AllowedTypes lists accepted MIME types, "image/*" wildcards included.
	AllowedTypes []string
}

// AutosaveConfig paces background saves.
type AutosaveConfig struct {
	Enabled  bool
	Interval time.Duration
}

// PublishConfig describes where published sites live.
type PublishConfig struct {
	// PlatformDomain is the shared hosting domain sites publish under,
	// e.g. "example-sites.com" yields "https://{subdomain}.example-sites.com".
	PlatformDomain string
	// Scheme defaults to https.
	Scheme string
	// FormEndpoint receives form submissions and page-view beacons from
	// generated sites. Empty disables the embedded runtime.
	FormEndpoint string
}

// SeedConfig locates template seeds on disk.
type SeedConfig struct {
	// Dir is the directory walked for .json/.html/.md seeds. Empty skips
	// catalog loading.
	Dir string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles module functionality.
type Features struct {
	Autosave bool
	Exports  bool
	Logger   bool
}

var (
	ErrStorageDriverUnknown    = errors.New("builder config: storage driver is invalid")
	ErrPlatformDomainRequired  = errors.New("builder config: publish platform domain is required")
	ErrAutosaveInterval        = errors.New("builder config: autosave interval must be positive")
	ErrLoggingProviderRequired = errors.New("builder config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("builder config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("builder config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("builder config: logging format is invalid")
	ErrAssetMaxSizeNegative    = errors.New("builder config: asset max size must be zero or positive")
	ErrCacheTTLNegative        = errors.New("builder config: cache ttl must be zero or positive")
)

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Assets: AssetConfig{
			BaseDir:      "uploads",
			MaxSizeBytes: 10 << 20,
			AllowedTypes: []string{"image/*"},
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
		},
		Publish: PublishConfig{
			Scheme: "https",
		},
		Seeds: SeedConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Autosave: true,
			Exports:  true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Publish.PlatformDomain) == "" {
		return ErrPlatformDomainRequired
	}
	if cfg.Features.Autosave && cfg.Autosave.Enabled && cfg.Autosave.Interval <= 0 {
		return ErrAutosaveInterval
	}
	if cfg.Assets.MaxSizeBytes < 0 {
		return ErrAssetMaxSizeNegative
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLNegative
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
