package config

import "testing"

func TestSetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()

	if c.Server.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q, want 127.0.0.1:8080", c.Server.HTTPAddr)
	}
	if c.Server.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", c.Server.LogLevel)
	}
	if c.Server.SessionsEnabled {
		t.Error("SessionsEnabled should default false")
	}
	if c.Session.Backend != "memory" {
		t.Errorf("Session.Backend = %q, want memory", c.Session.Backend)
	}
	if c.Auth.Mode != "public" {
		t.Errorf("Auth.Mode = %q, want public", c.Auth.Mode)
	}
}

func TestSetDevDefaultsOnlyAppliesWhenDevMode(t *testing.T) {
	var c Config
	c.SetDevDefaults()
	if c.Auth.Mode != "" {
		t.Error("SetDevDefaults should be a no-op when DevMode is false")
	}

	c.DevMode = true
	c.SetDevDefaults()
	if c.Auth.Mode != "public" {
		t.Errorf("dev mode Auth.Mode = %q, want public", c.Auth.Mode)
	}
	if c.Server.LogLevel != "debug" {
		t.Errorf("dev mode LogLevel = %q, want debug", c.Server.LogLevel)
	}
}
