package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/internal/telemetry"
	"github.com/marmos91/appfx/pkg/config"
	"github.com/marmos91/appfx/pkg/metrics"

	// Registers the Prometheus metric constructors.
	_ "github.com/marmos91/appfx/pkg/metrics/prometheus"
)

const serviceName = "appfx"

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initObservability starts tracing, profiling and metrics as configured.
// The returned function flushes and stops them.
func initObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	tracingShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		_ = tracingShutdown(ctx)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled")
	}
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	return func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
		if err := tracingShutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}, nil
}

// loadConfig loads the configuration named by --config and applies the
// logging section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
