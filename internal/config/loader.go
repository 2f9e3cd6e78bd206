// Package config provides configuration loading for the SentinelGate
// runtime.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for sentinel-gate.yaml/.yml
// in standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, which Viper's built-in SetConfigName
// would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("sentinel-gate")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SENTINEL_GATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".sentinel-gate"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "sentinel-gate"))
		}
	} else {
		paths = append(paths, "/etc/sentinel-gate")
	}
	return findConfigFileInPaths(paths)
}

func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "sentinel-gate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds config keys for environment variable support, e.g.
// SENTINEL_GATE_SERVER_HTTP_ADDR overrides server.http_addr.
//
// The transport-facing flags operators treat as the runtime's authoritative
// knobs (SESSION_ENABLED, SESSION_BUCKET, DISABLE_SSE, AUTH_MODE,
// JWT_PUBLIC_KEY, JWT_JWKS_URI, SERVER_URI) are additionally bound under
// their flat, unprefixed names, checked before the nested SENTINEL_GATE_*
// fallback so an operator can flip them without the rest of the static
// config's naming convention.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.disable_sse", "DISABLE_SSE", "SENTINEL_GATE_SERVER_DISABLE_SSE")
	_ = viper.BindEnv("server.sessions_enabled", "SESSION_ENABLED", "SENTINEL_GATE_SERVER_SESSIONS_ENABLED")
	_ = viper.BindEnv("server.session_bucket", "SESSION_BUCKET", "SENTINEL_GATE_SERVER_SESSION_BUCKET")
	_ = viper.BindEnv("server.public_resource_url", "SERVER_URI", "SENTINEL_GATE_SERVER_PUBLIC_RESOURCE_URL")

	_ = viper.BindEnv("session.backend")
	_ = viper.BindEnv("session.sqlite_path")

	_ = viper.BindEnv("auth.mode", "AUTH_MODE", "SENTINEL_GATE_AUTH_MODE")
	_ = viper.BindEnv("auth.jwt_public_key_path", "JWT_PUBLIC_KEY", "SENTINEL_GATE_AUTH_JWT_PUBLIC_KEY_PATH")
	_ = viper.BindEnv("auth.jwks_uri", "JWT_JWKS_URI", "SENTINEL_GATE_AUTH_JWKS_URI")
	_ = viper.BindEnv("auth.issuer")
	_ = viper.BindEnv("auth.audience")

	_ = viper.BindEnv("compose.manifest_path")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and returns the Config.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or "" if none was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
