package stash

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AndrewDonelson/stash/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu      sync.Mutex
	seen    []int
	gate    chan struct{}
	entered chan struct{}
}

func (p *recordingPersister) persist(op pending[int]) error {
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	p.seen = append(p.seen, op.value)
	p.mu.Unlock()
	return nil
}

func testFlusher(persist func(pending[int]) error) *flusher[int] {
	cfg := &Config{WriteBehindMaxRetry: 1, WriteBehindRetryDelay: time.Millisecond}
	cfg.defaults()
	cfg.Metrics = metrics.Noop{}
	return newFlusher("white", persist, cfg)
}

func TestFlusher_CoalescesWhileBusy(t *testing.T) {
	p := &recordingPersister{gate: make(chan struct{}), entered: make(chan struct{}, 10)}
	f := testFlusher(p.persist)
	f.start()

	f.enqueue(pending[int]{gen: 1, value: 1})
	<-p.entered // the first write is running and blocked

	for i := 2; i <= 5; i++ {
		f.enqueue(pending[int]{gen: uint64(i), value: i})
	}
	assert.Equal(t, int64(1), f.pendingCount())

	close(p.gate)
	require.NoError(t, f.wait(context.Background()))
	require.NoError(t, f.stop())
	assert.Equal(t, []int{1, 5}, p.seen)
}

func TestFlusher_CancelDropsQueued(t *testing.T) {
	p := &recordingPersister{gate: make(chan struct{}), entered: make(chan struct{}, 10)}
	f := testFlusher(p.persist)
	f.start()

	f.enqueue(pending[int]{gen: 1, value: 1})
	<-p.entered
	f.enqueue(pending[int]{gen: 2, value: 2})
	f.cancel()

	close(p.gate)
	require.NoError(t, f.wait(context.Background()))
	require.NoError(t, f.stop())
	assert.Equal(t, []int{1}, p.seen)
}

func TestFlusher_IdleFromStart(t *testing.T) {
	f := testFlusher(func(pending[int]) error { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.wait(ctx))
	assert.Zero(t, f.pendingCount())
}

func TestFlusher_RetryThenSucceed(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	f := testFlusher(func(pending[int]) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	})
	f.start()
	f.enqueue(pending[int]{gen: 1, value: 1})
	require.NoError(t, f.wait(context.Background()))
	require.NoError(t, f.stop())
	assert.Equal(t, 2, attempts)
}

func TestFlusher_StopReportsExhaustedRetry(t *testing.T) {
	f := testFlusher(func(pending[int]) error { return errors.New("read-only filesystem") })
	f.start()
	f.enqueue(pending[int]{gen: 1, value: 1})
	err := f.stop()
	require.ErrorIs(t, err, ErrWriteBehindMaxRetry)
	assert.Contains(t, err.Error(), "read-only filesystem")
}
