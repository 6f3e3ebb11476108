// Package cache holds the client's last known post list in a single
// string-keyed slot.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/models"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "blog_posts_cache_v1"

// ErrMiss means the slot has never been written.
var ErrMiss = errors.New("cache: no snapshot")

// Slot stores one full snapshot of the post list. Every Save replaces the
// previous snapshot entirely.
type Slot interface {
	Load(ctx context.Context) ([]models.Post, error)
	Save(ctx context.Context, posts []models.Post) error
}

func encode(posts []models.Post) ([]byte, error) {
	if posts == nil {
		posts = []models.Post{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.Post, error) {
	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}
