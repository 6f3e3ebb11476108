// Package syncer reconciles the client's post list with the server and the
// local cache.
package syncer

import (
	"sync"

	"github.com/starford/inkwell/internal/models"
)

// Status lines set by the sync controller.
const (
	StatusReady   = "Ready"
	StatusSynced  = "synced"
	StatusOffline = "offline (using cache)"
)

// State is the client's in-memory view: the post list, a status line and
// whether the last refresh reached the server. It is shared by the sync
// controller, the form controller and the renderers.
type State struct {
	mu     sync.RWMutex
	posts  []models.Post
	status string
	online bool
}

// NewState returns an empty state with status Ready.
func NewState() *State {
	return &State{posts: []models.Post{}, status: StatusReady}
}

// Posts returns a copy of the current list.
func (s *State) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Post{}, s.posts...)
}

// Find returns the post with the given id from memory.
func (s *State) Find(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Status returns the current status line.
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus replaces the status line.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Online reports whether the last refresh reached the server.
func (s *State) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// replace swaps in a whole new list. Only the Controller calls it.
func (s *State) replace(posts []models.Post, status string, online bool) {
	if posts == nil {
		posts = []models.Post{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]models.Post{}, posts...)
	s.status = status
	s.online = online
}
