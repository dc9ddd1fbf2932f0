package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
)

func TestSubmitWaitRunsEveryTask(t *testing.T) {
	pool := workerpool.New("events", 4)
	defer pool.Shutdown()

	const n = 100
	var ran atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, ran.Load())
}

func TestSubmitReportsFullQueue(t *testing.T) {
	pool := workerpool.New("events", 1)
	defer pool.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-release
	}))
	<-started

	// One worker gives a queue of two.
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(release)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New("events", 2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestShutdownDrainsQueuedTasks(t *testing.T) {
	pool := workerpool.New("events", 1)

	var ran atomic.Int64
	for range 2 {
		require.NoError(t, pool.SubmitWait(func() {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		}))
	}
	pool.Shutdown()

	assert.EqualValues(t, 2, ran.Load())
}

func TestPanickingTaskIsCountedAndPoolSurvives(t *testing.T) {
	pool := workerpool.New("events", 1)
	defer pool.Shutdown()

	before := testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("workerpool"))

	require.NoError(t, pool.SubmitWait(func() { panic("listener blew up") }))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("workerpool")))
}
