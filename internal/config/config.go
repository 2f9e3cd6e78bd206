// Package config provides configuration types for the SentinelGate MCP
// runtime.
//
// This is a from-scratch configuration schema scoped to the runtime's
// seven components (transport, server I/O, session store, identity,
// capability handlers, filter middleware, composition): no admin REST
// API, no HTTP forward-proxy gateway, no RBAC policy engine, no rate
// limiting, no content scanning — none of those concerns are part of
// this runtime's component table.
package config

// Config is the top-level configuration.
type Config struct {
	// Server configures the HTTP listener and the transport-level
	// behavior spec §4.1 describes.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Session configures the C2 KVStore backend sessions are layered on.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Auth configures the C3 bearer-JWT auth gate.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Compose points at the composition manifest the builder reads.
	Compose ComposeConfig `yaml:"compose" mapstructure:"compose"`

	// DevMode enables verbose logging and a permissive localhost-only
	// public auth mode for local development.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server and stdio transport behavior.
type ServerConfig struct {
	// HTTPAddr is the address to listen on. Defaults to "127.0.0.1:8080"
	// (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// DisableSSE forces buffered (application/json) POST replies instead
	// of the default Server-Sent-Events streaming mode.
	DisableSSE bool `yaml:"disable_sse" mapstructure:"disable_sse"`

	// SessionsEnabled controls whether POST/DELETE require mcp-session-id
	// and a session lifecycle. Defaults to false: a bare runtime with no
	// session store configured answers every request statelessly.
	SessionsEnabled bool `yaml:"sessions_enabled" mapstructure:"sessions_enabled"`

	// SessionBucket names the KV bucket sessions are namespaced under.
	// Empty means the KVStore's default bucket.
	SessionBucket string `yaml:"session_bucket" mapstructure:"session_bucket"`

	// AllowedOrigins is the Host/Origin allow-list the origin validation
	// check point enforces. An empty list disables the check.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// PublicResourceURL is the resource identifier this runtime's
	// OAuth 2.0 Protected Resource Metadata document (RFC 9728) and
	// WWW-Authenticate resource_metadata hints advertise.
	PublicResourceURL string `yaml:"public_resource_url" mapstructure:"public_resource_url" validate:"omitempty,url"`
}

// SessionConfig configures the C2 KVStore backend.
type SessionConfig struct {
	// Backend selects the KVStore implementation: "memory" (default) or
	// "sqlite" (durable, modernc.org/sqlite-backed).
	Backend string `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=memory sqlite"`

	// SQLitePath is the database file path when Backend is "sqlite".
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AuthConfig configures the C3 bearer-JWT auth gate.
type AuthConfig struct {
	// Mode selects the auth gate: "public" (no check) or "oauth" (bearer
	// JWT required).
	Mode string `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=public oauth"`

	// JWTPublicKeyPath, if set, configures identity.NewDecoderWithPublicKey
	// from a PEM file (the JWT_PUBLIC_KEY configuration mode).
	JWTPublicKeyPath string `yaml:"jwt_public_key_path" mapstructure:"jwt_public_key_path"`

	// JWKSURI, if set, configures identity.NewDecoderWithKeyFunc against a
	// remote JWKS endpoint (the JWT_JWKS_URI configuration mode).
	// Mutually exclusive with JWTPublicKeyPath.
	JWKSURI string `yaml:"jwks_uri" mapstructure:"jwks_uri" validate:"omitempty,url"`

	// Issuer and Audience, if set, are enforced against the "iss"/"aud"
	// claims during decode.
	Issuer   string `yaml:"issuer" mapstructure:"issuer"`
	Audience string `yaml:"audience" mapstructure:"audience"`
}

// ComposeConfig points the composition builder at its manifest.
type ComposeConfig struct {
	// ManifestPath is the compose.yaml the builder reads component
	// manifests and wiring hints from.
	ManifestPath string `yaml:"manifest_path" mapstructure:"manifest_path"`
}

// SetDevDefaults applies permissive defaults for development mode, applied
// before validation so a bare `dev_mode: true` config is runnable with no
// further setup.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = "public"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "debug"
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = "public"
	}
	if c.Compose.ManifestPath == "" {
		c.Compose.ManifestPath = "compose.yaml"
	}
}
