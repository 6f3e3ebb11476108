package cache

import (
	"context"
	"sync"

	"github.com/starford/inkwell/internal/models"
)

// MemorySlot is an in-process slot. The zero value is an empty slot.
type MemorySlot struct {
	mu    sync.Mutex
	posts []models.Post
	set   bool
}

var _ Slot = (*MemorySlot)(nil)

// Load returns a copy of the stored snapshot.
func (s *MemorySlot) Load(_ context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrMiss
	}
	return append([]models.Post{}, s.posts...), nil
}

// Save stores a copy of posts.
func (s *MemorySlot) Save(_ context.Context, posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]models.Post{}, posts...)
	s.set = true
	return nil
}
