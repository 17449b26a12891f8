package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(ctx context.Context) (int, error) {
	w.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return 3, w.err
}

func TestCacheWarmer_RunOnce(t *testing.T) {
	w := &countingWarmer{}
	cw := NewCacheWarmer(w, time.Minute, 10*time.Second)

	cw.RunOnce(context.Background())
	assert.Equal(t, int32(1), w.calls.Load())

	w.err = errors.New("rpc down")
	assert.NotPanics(t, func() { cw.RunOnce(context.Background()) })
	assert.Equal(t, int32(2), w.calls.Load())
}

func TestCacheWarmer_SkipsCancelledContext(t *testing.T) {
	w := &countingWarmer{}
	cw := NewCacheWarmer(w, time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw.RunOnce(ctx)
	assert.Zero(t, w.calls.Load())
}

func TestCacheWarmer_StartRunsImmediately(t *testing.T) {
	w := &countingWarmer{}
	cw := NewCacheWarmer(w, time.Hour, time.Second)

	require.NoError(t, cw.Start(context.Background()))
	defer func() { require.NoError(t, cw.Stop()) }()

	assert.Eventually(t, func() bool { return w.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestCacheWarmer_StopWithoutStart(t *testing.T) {
	cw := NewCacheWarmer(&countingWarmer{}, time.Minute, 0)
	assert.NoError(t, cw.Stop())
}
