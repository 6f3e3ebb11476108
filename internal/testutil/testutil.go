// Package testutil provides shared test helpers for stores and services.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/store"
)

// TestStore creates a temporary SQLite store that is removed when the test ends.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkwell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// MustCreate inserts a post or fails the test.
func MustCreate(t *testing.T, st store.Store, title, date, content string) *models.Record {
	t.Helper()
	rec, err := st.Create(context.Background(), models.Fields{Title: title, Date: date, Content: content})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return rec
}

// PostEvent is one recorded publication.
type PostEvent struct {
	Kind sse.Kind
	ID   string
}

// Recorder collects post events in order.
type Recorder struct {
	mu     sync.Mutex
	events []PostEvent
}

// PublishPostEvent records the event.
func (r *Recorder) PublishPostEvent(kind sse.Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, PostEvent{Kind: kind, ID: id})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []PostEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PostEvent(nil), r.events...)
}
