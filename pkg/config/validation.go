package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags and cross-field rules that tags cannot express.
func Validate(cfg *Config) error {
	if err := getValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				if fe.Field() == "JWTSecret" {
					msgs = append(msgs, fmt.Sprintf("%s: failed '%s' validation", fe.Namespace(), fe.Tag()))
					continue
				}
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("telemetry.profiling.endpoint is required when profiling is enabled")
	}
	if cfg.App.WatchPlugins && cfg.App.PluginsDir == "" {
		return errors.New("app.plugins_dir is required when app.watch_plugins is set")
	}

	return nil
}
