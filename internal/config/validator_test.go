package config

import "testing"

func TestValidateRejectsBothJWTKeySources(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	c.Auth.Mode = "oauth"
	c.Auth.JWTPublicKeyPath = "/etc/sentinel-gate/jwt.pub"
	c.Auth.JWKSURI = "https://issuer.example.com/.well-known/jwks.json"

	if err := c.Validate(); err == nil {
		t.Error("expected an error when both jwt_public_key_path and jwks_uri are set")
	}
}

func TestValidateRequiresKeySourceForOAuthMode(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	c.Auth.Mode = "oauth"

	if err := c.Validate(); err == nil {
		t.Error("expected an error when oauth mode has no key source")
	}
}

func TestValidateRequiresSQLitePath(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	c.Session.Backend = "sqlite"

	if err := c.Validate(); err == nil {
		t.Error("expected an error when sqlite backend has no sqlite_path")
	}
}

func TestValidatePassesWithDefaults(t *testing.T) {
	c := Config{}
	c.SetDefaults()

	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
