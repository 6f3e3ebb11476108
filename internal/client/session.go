package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"

	"github.com/starford/inkwell/internal/client/cache"
	"github.com/starford/inkwell/internal/client/form"
	"github.com/starford/inkwell/internal/client/remote"
	"github.com/starford/inkwell/internal/client/syncer"
)

// Session is one wired-up client.
type Session struct {
	State  *syncer.State
	Remote *remote.Client
	Slot   cache.Slot
	Sync   *syncer.Controller
	Form   *form.Controller

	close func() error
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	renderer   syncer.Renderer
	confirmer  form.Confirmer
	logger     *slog.Logger
	httpClient *http.Client
	slot       cache.Slot
}

// WithRenderer sets the renderer run after every refresh.
func WithRenderer(r syncer.Renderer) Option {
	return func(o *sessionOptions) { o.renderer = r }
}

// WithConfirmer sets the delete confirmation prompt.
func WithConfirmer(c form.Confirmer) Option {
	return func(o *sessionOptions) { o.confirmer = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *sessionOptions) { o.httpClient = c }
}

// WithSlot bypasses the configured cache driver.
func WithSlot(s cache.Slot) Option {
	return func(o *sessionOptions) { o.slot = s }
}

// NewSession builds a session from cfg.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	o := sessionOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	closeFn := func() error { return nil }
	slot := o.slot
	if slot == nil {
		var err error
		slot, closeFn, err = OpenSlot(cfg.Cache)
		if err != nil {
			return nil, err
		}
	}

	rc := remote.New(remote.Options{BaseURL: cfg.BaseURL, Token: cfg.Token, HTTPClient: o.httpClient})
	state := syncer.NewState()

	syncOpts := []syncer.Option{syncer.WithLogger(o.logger)}
	if o.renderer != nil {
		syncOpts = append(syncOpts, syncer.WithRenderer(o.renderer))
	}
	sc := syncer.NewController(rc, slot, state, syncOpts...)

	var formOpts []form.Option
	if o.confirmer != nil {
		formOpts = append(formOpts, form.WithConfirmer(o.confirmer))
	}

	return &Session{
		State:  state,
		Remote: rc,
		Slot:   slot,
		Sync:   sc,
		Form:   form.NewController(rc, sc, state, formOpts...),
		close:  closeFn,
	}, nil
}

// Close releases the cache backend.
func (s *Session) Close() error {
	return s.close()
}

// OpenSlot opens the cache slot selected by cfg.Driver. The returned func
// releases it.
func OpenSlot(cfg CacheConfig) (cache.Slot, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case CacheMemory:
		return &cache.MemorySlot{}, noop, nil
	case CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedisSlot(rdb, cfg.Key), rdb.Close, nil
	case CacheFile, "":
		dir, err := CacheDir(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewFileSlot(dir, cfg.Key), noop, nil
	default:
		return nil, nil, fmt.Errorf("client: unknown cache driver %q", cfg.Driver)
	}
}

// CacheDir resolves the file cache directory, defaulting to the user cache dir.
func CacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("client: resolve cache dir: %w", err)
	}
	return filepath.Join(base, "inkwell"), nil
}
