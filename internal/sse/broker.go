// Package sse streams post change notifications to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Kind is the mutation that produced a post event.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// ChangedEvent is the throttled catch-all event that tells clients to refresh their list.
const ChangedEvent = "posts.changed"

// event is a single SSE frame.
type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type postEvent struct {
	kind Kind
	id   string
}

// Broker fans events out to subscribers.
//
// All mutable state (subscribers, last posts.changed time) lives in the run
// goroutine; exported methods talk to it over channels.
type Broker struct {
	changedMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	postCh        chan postEvent
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits at most one posts.changed per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = time.Second
	}
	b := &Broker{
		changedMin:    throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		postCh:        make(chan postEvent, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func frame(e event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[chan []byte]struct{})
	var lastChanged time.Time

	send := func(e event) {
		raw, err := frame(e)
		if err != nil {
			return
		}
		for ch := range subs {
			select {
			case ch <- raw:
			default:
				// slow subscriber, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return
		case ch := <-b.subscribeCh:
			subs[ch] = struct{}{}
		case ch := <-b.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
		case pe := <-b.postCh:
			send(event{Type: "post." + string(pe.kind), Data: map[string]string{"id": pe.id}})
			if now := time.Now(); now.Sub(lastChanged) >= b.changedMin {
				lastChanged = now
				send(event{Type: ChangedEvent, Data: map[string]string{}})
			}
		case resp := <-b.countCh:
			resp <- len(subs)
		}
	}
}

// Close stops the loop and closes every subscriber channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new subscriber.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes ch and closes it.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount reports the number of live subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishPostEvent broadcasts post.<kind> for id, followed by a throttled posts.changed.
func (b *Broker) PublishPostEvent(kind Kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.postCh <- postEvent{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to the caller until its request context ends (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
