package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a configuration against the struct validation tags and
// a few cross-field rules, returning user-readable messages.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			msgs := make([]string, 0, len(invalid))
			for _, fieldErr := range invalid {
				msgs = append(msgs, describeFieldError(fieldErr))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}

	if cfg.Store.Backend == "webdis" && cfg.Store.Webdis.Host == "" {
		return fmt.Errorf("store.webdis.host is required for the webdis backend")
	}
	if cfg.Store.Backend == "badger" && cfg.Store.Badger.Path == "" {
		return fmt.Errorf("store.badger.path is required for the badger backend")
	}
	if cfg.API.Auth.Enabled && len(cfg.API.GetAuthSecret()) < 32 {
		return fmt.Errorf("api.auth.secret must be at least 32 characters when auth is enabled; set it or %s", EnvAuthSecret)
	}

	return nil
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}
