// Package form drives the create/edit form: it validates input, sends
// mutations to the server and re-syncs afterwards.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/starford/inkwell/internal/client/syncer"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/pkg/clock"
)

// Status lines set by the form controller.
const (
	StatusCreated      = "Post created"
	StatusUpdated      = "Post updated"
	StatusDeleted      = "Post deleted"
	StatusSaveFailed   = "Save failed"
	StatusDeleteFailed = "Delete failed"
	StatusEditing      = "Editing…"
)

// ErrMissingFields is returned when title or content is blank.
var ErrMissingFields = errors.New("form: title and content are required")

// Mode is the form's state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditing
)

// Values are the form fields. A non-empty ID means an existing post is being edited.
type Values struct {
	ID      string
	Title   string
	Date    string
	Content string
}

// Fields returns the editable part of v.
func (v Values) Fields() models.Fields {
	return models.Fields{Title: v.Title, Date: v.Date, Content: v.Content}
}

// Poster performs mutations on the server.
type Poster interface {
	Create(ctx context.Context, f models.Fields) (models.Post, error)
	Update(ctx context.Context, id string, f models.Fields) (models.Post, error)
	Delete(ctx context.Context, id string) error
}

// Refresher re-derives the post list after a mutation.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Controller owns the form fields. It never edits the post list itself; every
// successful mutation is followed by a full refresh.
type Controller struct {
	remote  Poster
	sync    Refresher
	state   *syncer.State
	confirm Confirmer
	clock   clock.Clock

	mu     sync.Mutex
	values Values
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the delete confirmation prompt. Without one, deletes are declined.
func WithConfirmer(c Confirmer) Option {
	return func(fc *Controller) { fc.confirm = c }
}

// WithClock overrides the clock used for the default date.
func WithClock(c clock.Clock) Option {
	return func(fc *Controller) { fc.clock = c }
}

// NewController wires a form controller.
func NewController(remote Poster, refresher Refresher, state *syncer.State, opts ...Option) *Controller {
	c := &Controller{
		remote: remote,
		sync:   refresher,
		state:  state,
		clock:  clock.DefaultClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Values returns the current form fields.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Mode reports whether an existing post is being edited.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values.ID != "" {
		return ModeEditing
	}
	return ModeIdle
}

func (c *Controller) setValues(v Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// Submit creates v, or updates it when v.ID is set, then refreshes and
// clears the form. On failure the input is kept so the user can retry.
func (c *Controller) Submit(ctx context.Context, v Values) error {
	v.Title = strings.TrimSpace(v.Title)
	v.Content = strings.TrimSpace(v.Content)
	v.Date = strings.TrimSpace(v.Date)
	if v.Date == "" {
		v.Date = clock.Today(c.clock)
	}
	c.setValues(v)
	if v.Title == "" || v.Content == "" {
		return ErrMissingFields
	}

	var err error
	status := StatusCreated
	if v.ID != "" {
		status = StatusUpdated
		_, err = c.remote.Update(ctx, v.ID, v.Fields())
	} else {
		_, err = c.remote.Create(ctx, v.Fields())
	}
	if err != nil {
		c.state.SetStatus(StatusSaveFailed)
		return err
	}

	c.sync.Refresh(ctx)
	c.setValues(Values{})
	c.state.SetStatus(status)
	return nil
}

// StartEdit loads post id from memory into the form. It reports false when
// the id is not in the current list.
func (c *Controller) StartEdit(id string) bool {
	p, ok := c.state.Find(id)
	if !ok {
		return false
	}
	c.setValues(Values{ID: p.ID, Title: p.Title, Date: p.Date, Content: p.Content})
	c.state.SetStatus(StatusEditing)
	return true
}

// RequestDelete asks for confirmation and deletes post id when granted. The
// returned bool reports whether the user confirmed.
func (c *Controller) RequestDelete(ctx context.Context, id string) (bool, error) {
	if c.confirm == nil || !c.confirm.Confirm(ctx, "Delete this post?") {
		return false, nil
	}
	return true, c.Delete(ctx, id)
}

// Delete removes post id without asking, then refreshes and clears the form.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		c.state.SetStatus(StatusDeleteFailed)
		return err
	}
	c.sync.Refresh(ctx)
	c.setValues(Values{})
	c.state.SetStatus(StatusDeleted)
	return nil
}

// Cancel clears the form and returns to idle.
func (c *Controller) Cancel() {
	c.setValues(Values{})
	c.state.SetStatus(syncer.StatusReady)
}
