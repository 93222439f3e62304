package daily

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	calls atomic.Int32
	err   error
}

func (f *fakeTarget) ResetDailyCounters(context.Context) (int, error) {
	f.calls.Add(1)
	return 3, f.err
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(&fakeTarget{}, "every midnight", nil)
	require.Error(t, err)
}

func TestResetter_Runs(t *testing.T) {
	target := &fakeTarget{}
	r, err := New(target, "* * * * * *", time.UTC)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	<-done
}

func TestResetter_RunLogsErrors(t *testing.T) {
	target := &fakeTarget{err: errors.New("storage down")}
	r, err := New(target, "0 0 0 * * *", time.UTC)
	require.NoError(t, err)
	assert.NotPanics(t, r.run)
	assert.EqualValues(t, 1, target.calls.Load())
}
