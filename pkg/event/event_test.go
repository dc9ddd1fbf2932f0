package event_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
)

func TestFireRunsNamedAndWildcardListeners(t *testing.T) {
	d := event.NewDispatcher(nil)
	var got []string
	d.Listen("inventory.purchased", func(_ context.Context, e event.Event) { got = append(got, "named:"+e.Payload.(string)) })
	d.Listen("*", func(_ context.Context, e event.Event) { got = append(got, "any:"+e.Name) })
	d.Listen("inventory.restocked", func(context.Context, event.Event) { t.Error("wrong listener called") })

	d.Fire(context.Background(), event.Event{Name: "inventory.purchased", Payload: "ladoo"})

	assert.Equal(t, []string{"named:ladoo", "any:inventory.purchased"}, got)
}

func TestDispatchUsesPool(t *testing.T) {
	pool := workerpool.New("events", 2)
	defer pool.Shutdown()

	d := event.NewDispatcher(pool)
	var wg sync.WaitGroup
	var calls atomic.Int32
	wg.Add(10)
	d.Listen("sweet.created", func(context.Context, event.Event) {
		calls.Add(1)
		wg.Done()
	})

	for i := 0; i < 10; i++ {
		d.Dispatch(context.Background(), event.Event{Name: "sweet.created"})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listeners did not run")
	}
	assert.EqualValues(t, 10, calls.Load())
}

func TestDispatchRunsInlineWhenPoolClosed(t *testing.T) {
	pool := workerpool.New("events", 1)
	pool.Shutdown()

	d := event.NewDispatcher(pool)
	ran := false
	d.Listen("sweet.deleted", func(context.Context, event.Event) { ran = true })
	d.Dispatch(context.Background(), event.Event{Name: "sweet.deleted"})

	assert.True(t, ran)
}

func TestListenerPanicIsContained(t *testing.T) {
	d := event.NewDispatcher(nil)
	after := false
	d.Listen("x", func(context.Context, event.Event) { panic("boom") })
	d.Listen("x", func(context.Context, event.Event) { after = true })

	assert.NotPanics(t, func() { d.Fire(context.Background(), event.Event{Name: "x"}) })
	assert.True(t, after)
}

func TestFireKeepsCallerContext(t *testing.T) {
	d := event.NewDispatcher(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	d.Listen("x", func(ctx context.Context, _ event.Event) { sawErr = ctx.Err() })
	d.Fire(ctx, event.Event{Name: "x"})
	assert.ErrorIs(t, sawErr, context.Canceled)
}
