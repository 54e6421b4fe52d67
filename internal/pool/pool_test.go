package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPoolRunsEverything(t *testing.T) {
	p := New(4)
	var n atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Go(context.Background(), func() {
			time.Sleep(time.Millisecond)
			n.Add(1)
		}))
	}
	p.Wait()
	assert.Equal(t, int64(50), n.Load())
	assert.LessOrEqual(t, p.Peak(), 4)
	assert.GreaterOrEqual(t, p.Peak(), 1)
}

func TestPoolReachesButNeverExceedsSize(t *testing.T) {
	p := New(3)
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Go(context.Background(), func() {
			started.Done()
			<-release
		}))
	}
	started.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Go(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "fourth admission waits for a permit")

	close(release)
	p.Wait()
	assert.Equal(t, 3, p.Peak())
}

func TestPoolCancelledContext(t *testing.T) {
	p := New(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := p.Go(ctx, func() { ran = true })
	p.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestNewClampsSize(t *testing.T) {
	assert.Equal(t, 1, New(0).Size())
	assert.Equal(t, 1, New(-3).Size())
	assert.Equal(t, 8, New(8).Size())
}
