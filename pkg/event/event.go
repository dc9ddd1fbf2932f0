// Package event dispatches named domain events to registered listeners.
//
//	d := event.NewDispatcher(pool)
//	d.Listen("inventory.purchased", func(ctx context.Context, e event.Event) { ... })
//	d.Dispatch(ctx, event.Event{Name: "inventory.purchased", Payload: p})
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
)

// Event is a named payload.
type Event struct {
	Name    string
	Payload any
}

// Handler receives an event. Handlers dispatched asynchronously get a
// context detached from the request's cancellation.
type Handler func(ctx context.Context, e Event)

// Submitter runs tasks in the background. *workerpool.Pool satisfies it.
type Submitter interface {
	Submit(task func()) error
}

// Dispatcher fans events out to listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     Submitter
}

// NewDispatcher returns a Dispatcher. A nil pool makes Dispatch synchronous.
func NewDispatcher(pool Submitter) *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler), pool: pool}
}

// Listen registers h for the named event. "*" receives every event.
func (d *Dispatcher) Listen(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

func (d *Dispatcher) listeners(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, 0, len(d.handlers[name])+len(d.handlers["*"]))
	hs = append(hs, d.handlers[name]...)
	return append(hs, d.handlers["*"]...)
}

// Fire runs every listener in the calling goroutine.
func (d *Dispatcher) Fire(ctx context.Context, e Event) {
	for _, h := range d.listeners(e.Name) {
		run(ctx, h, e)
	}
	metrics.EventsDispatched.WithLabelValues(e.Name, "sync").Inc()
}

// Dispatch hands each listener to the pool. When the pool is full or closed
// the listener runs inline, so an event is never dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	if d.pool == nil {
		d.Fire(ctx, e)
		return
	}

	bg := context.WithoutCancel(ctx)
	mode := "pool"
	for _, h := range d.listeners(e.Name) {
		err := d.pool.Submit(func() { run(bg, h, e) })
		if err == nil {
			continue
		}
		if !errors.Is(err, workerpool.ErrPoolFull) && !errors.Is(err, workerpool.ErrPoolClosed) {
			logger.WithCtx(ctx).Warn("event: submit failed", "event", e.Name, "error", err)
		}
		mode = "inline"
		run(bg, h, e)
	}
	metrics.EventsDispatched.WithLabelValues(e.Name, mode).Inc()
}

func run(ctx context.Context, h Handler, e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", e.Name, "panic", fmt.Sprint(rec))
		}
	}()
	h(ctx, e)
}
