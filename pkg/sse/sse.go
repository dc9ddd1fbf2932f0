// Package sse streams Server-Sent Events.
//
// A Broker fans one message out to every open stream:
//
//	b := sse.NewBroker()
//	go b.Run(ctx)
//	r.Get("/inventory/stream", "inventory.stream", b.ServeHTTP)
//	b.Broadcast([]byte(`{"event":"inventory.purchased"}`))
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	subscriberBuffer = 16
	heartbeat        = 25 * time.Second
)

// Stream is one client connection.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// New sets the event-stream headers and returns a Stream.
func New(w http.ResponseWriter) *Stream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)
	return &Stream{w: w, rc: http.NewResponseController(w)}
}

// Send writes a named event with a JSON-encoded payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// SendRaw writes an unnamed event.
func (s *Stream) SendRaw(data []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Broker delivers broadcasts to every subscribed stream. Slow subscribers
// miss messages rather than block the sender.
type Broker struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
	done chan struct{}
	once sync.Once
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan []byte]struct{}), done: make(chan struct{})}
}

// Run ends every open stream once ctx is cancelled, so a graceful HTTP
// shutdown is not held open by them.
func (b *Broker) Run(ctx context.Context) {
	<-ctx.Done()
	b.once.Do(func() { close(b.done) })
}

// Broadcast queues msg for every subscriber. It never blocks.
func (b *Broker) Broadcast(msg []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return true
}

// ClientCount returns the number of open streams.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// ServeHTTP holds the request open and streams broadcasts to it.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := New(w)
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	if err := stream.Comment("connected"); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-b.done:
			return
		case msg := <-ch:
			if err := stream.SendRaw(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}
