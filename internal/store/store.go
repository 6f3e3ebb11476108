// Package store persists blog posts in a document store.
package store

import (
	"context"

	"github.com/starford/inkwell/internal/models"
)

// Store is the interface for post persistence.
//
// Implementations return apperr.ErrNotFound for unknown ids and
// apperr.ErrInvalidID for ids they cannot parse. Validation of field
// contents is the caller's job.
type Store interface {
	// List returns every post ordered by date desc, then creation time desc.
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	// Create assigns an id and timestamps and stores the post.
	Create(ctx context.Context, f models.Fields) (*models.Record, error)
	// Update applies patch to an existing post and returns the new version.
	Update(ctx context.Context, id string, patch models.Patch) (*models.Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
