package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/inkwell/internal/client/cache"
	"github.com/starford/inkwell/internal/models"
)

// Lister fetches the authoritative post list.
type Lister interface {
	List(ctx context.Context) ([]models.Post, error)
}

// Renderer draws the list after every refresh.
type Renderer interface {
	Render(posts []models.Post) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(posts []models.Post) error

func (f RendererFunc) Render(posts []models.Post) error { return f(posts) }

// Controller is the only writer of the State's post list.
type Controller struct {
	remote   Lister
	slot     cache.Slot
	state    *State
	renderer Renderer
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the renderer invoked after each refresh.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController wires a controller.
func NewController(remote Lister, slot cache.Slot, state *State, opts ...Option) *Controller {
	c := &Controller{
		remote: remote,
		slot:   slot,
		state:  state,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state this controller writes.
func (c *Controller) State() *State {
	return c.state
}

// Refresh pulls the full list from the server. On success the list replaces
// memory and the cache; on any failure the cached snapshot (or nothing) is
// loaded instead. The renderer runs in both cases.
func (c *Controller) Refresh(ctx context.Context) {
	posts, err := c.remote.List(ctx)
	if err == nil {
		c.state.replace(posts, StatusSynced, true)
		if err := c.slot.Save(ctx, posts); err != nil {
			c.logger.Warn("cache save failed", slog.String("error", err.Error()))
		}
	} else {
		c.logger.Info("refresh failed, falling back to cache", slog.String("error", err.Error()))
		cached, cerr := c.slot.Load(ctx)
		if cerr != nil {
			if !errors.Is(cerr, cache.ErrMiss) {
				c.logger.Warn("cache load failed", slog.String("error", cerr.Error()))
			}
			cached = nil
		}
		c.state.replace(cached, StatusOffline, false)
	}
	c.render()
}

func (c *Controller) render() {
	if c.renderer == nil {
		return
	}
	if err := c.renderer.Render(c.state.Posts()); err != nil {
		c.logger.Warn("render failed", slog.String("error", err.Error()))
	}
}
