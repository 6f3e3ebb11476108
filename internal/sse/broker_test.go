package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ch := b.Subscribe()
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}
	b.Unsubscribe(ch)
	if got := b.ClientCount(); got != 0 {
		t.Fatalf("clients = %d, want 0", got)
	}
}

func TestPublishPostEvent(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishPostEvent(Created, "abc")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: post.created\n") {
			t.Errorf("frame = %q", s)
		}
		if !strings.Contains(s, `"id":"abc"`) {
			t.Errorf("missing id in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for post.created")
	}
}

func TestPostsChangedIsThrottled(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishPostEvent(Created, "a")
	b.PublishPostEvent(Deleted, "b")
	time.Sleep(50 * time.Millisecond)

	changed, posts := 0, 0
drain:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), ChangedEvent) {
				changed++
			} else {
				posts++
			}
		default:
			break drain
		}
	}
	if posts != 2 {
		t.Errorf("post events = %d, want 2", posts)
	}
	if changed != 1 {
		t.Errorf("%s events = %d, want 1", ChangedEvent, changed)
	}
}

type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestServeHTTPStreamsUntilDisconnect(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.PublishPostEvent(Updated, "x")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if body := w.body(); !strings.Contains(body, "event: post.updated") {
		t.Errorf("body missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	time.Sleep(20 * time.Millisecond)
	if got := b.ClientCount(); got != 0 {
		t.Errorf("clients after disconnect = %d", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed")
	}

	// no-ops after close
	b.PublishPostEvent(Deleted, "x")
	if b.ClientCount() != 0 {
		t.Error("expected 0 clients after close")
	}
}
