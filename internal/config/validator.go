package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if c.Auth.JWTPublicKeyPath != "" && c.Auth.JWKSURI != "" {
		return errors.New("auth: specify jwt_public_key_path OR jwks_uri, not both")
	}
	if c.Auth.Mode == "oauth" && c.Auth.JWTPublicKeyPath == "" && c.Auth.JWKSURI == "" {
		return errors.New("auth: mode \"oauth\" requires jwt_public_key_path or jwks_uri")
	}
	if c.Session.Backend == "sqlite" && c.Session.SQLitePath == "" {
		return errors.New("session: backend \"sqlite\" requires sqlite_path")
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
