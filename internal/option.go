package internal

import (
	"log/slog"

	"github.com/starford/inkwell/internal/store"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  store.Store
	logger *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore uses st instead of opening the configured store. Run still
// closes it on shutdown.
func WithStore(st store.Store) Option {
	return func(a *application) {
		a.store = st
	}
}

// WithLogger replaces the JSON stdout logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
