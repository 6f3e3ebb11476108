// Package postservice validates post mutations, persists them through a store
// and announces them to listeners.
package postservice

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/store"
	"github.com/starford/inkwell/pkg/clock"
)

// Publisher receives a notification after every successful mutation.
type Publisher interface {
	PublishPostEvent(kind sse.Kind, id string)
}

// Service coordinates validation, the store and change notifications.
type Service struct {
	store  store.Store
	events Publisher
	clock  clock.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change-event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock overrides the clock used for the date default.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New creates a service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, clock: clock.DefaultClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	return s.store.List(ctx)
}

// Get returns a single post.
func (s *Service) Get(ctx context.Context, id string) (*models.Record, error) {
	return s.store.Get(ctx, id)
}

// Count returns the number of stored posts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Create validates f, filling a blank date with today, and stores it. Dates
// are free-form strings; clients sort them lexicographically.
func (s *Service) Create(ctx context.Context, f models.Fields) (*models.Record, error) {
	if strings.TrimSpace(f.Date) == "" {
		f.Date = clock.Today(s.clock)
	}
	if err := validateFields(f); err != nil {
		return nil, err
	}
	rec, err := s.store.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	s.publish(sse.Created, rec.ID)
	return rec, nil
}

// Update applies the provided fields of patch. Provided fields must be valid.
func (s *Service) Update(ctx context.Context, id string, patch models.Patch) (*models.Record, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	rec, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publish(sse.Updated, rec.ID)
	return rec, nil
}

// Delete removes the post with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(sse.Deleted, id)
	return nil
}

func (s *Service) publish(kind sse.Kind, id string) {
	if s.events != nil {
		s.events.PublishPostEvent(kind, id)
	}
}

func validateFields(f models.Fields) error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Date, validation.Required),
		validation.Field(&f.Content, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return nil
}

func validatePatch(p models.Patch) error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty),
		validation.Field(&p.Date, validation.NilOrNotEmpty),
		validation.Field(&p.Content, validation.NilOrNotEmpty),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return nil
}
