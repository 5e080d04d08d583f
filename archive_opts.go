package kom

import (
	"io"
	"log/slog"
)

// config holds shared configuration for readers and edit sessions.
type config struct {
	logger *slog.Logger
}

// Option configures [Open], [Load], [New], and the create helpers.
type Option func(*config)

// WithLogger sets a structured logger. Without it, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// log returns the configured logger, falling back to a discard logger.
func (cfg *config) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.logger
}
