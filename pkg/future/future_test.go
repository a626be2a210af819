package future

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
)

func TestFuture_SettleOnlyOnce(t *testing.T) {
	f := New(nil)
	f.Settle("first")
	f.Settle("second")
	f.SettleError(apierrors.New(apierrors.IO, "ignored"))

	result, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, "first", result)
	assert.NoError(t, f.Err())
}

func TestFuture_WaitForResult_Success(t *testing.T) {
	f := New(nil)
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Settle(42)
	}()

	result, err := f.WaitForResult(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestFuture_WaitForResult_Timeout(t *testing.T) {
	f := New(nil)
	_, err := f.WaitForResult(10 * time.Millisecond)
	require.Error(t, err)
	assert.True(t, apierrors.Is(err, apierrors.Timeout))
	assert.False(t, f.Done())
}

func TestFuture_CancelBeforeRemoteID_DeferredToDispatcher(t *testing.T) {
	var enqueued []string
	f := New(func(remoteID string, future *Future) {
		enqueued = append(enqueued, remoteID)
	})

	f.Cancel() // phase B: remote id not known yet, request is recorded

	learned := f.LearnRemoteID("abc123")
	require.True(t, learned)
	f.SetRemoteStatus(apitypes.StatusPending)

	remoteID, ok := f.ConsumeDeferredCancel("abc123", apitypes.StatusPending)
	require.True(t, ok)
	assert.Equal(t, "abc123", remoteID)

	// a second consume attempt must not fire again
	_, ok = f.ConsumeDeferredCancel("abc123", apitypes.StatusPending)
	assert.False(t, ok)
}

func TestFuture_CancelAfterRemoteID_PhaseA(t *testing.T) {
	var enqueuedID string
	calls := 0
	f := New(func(remoteID string, future *Future) {
		calls++
		enqueuedID = remoteID
	})

	f.LearnRemoteID("xyz789")
	f.SetRemoteStatus(apitypes.StatusPending)

	f.Cancel()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "xyz789", enqueuedID)

	f.Cancel() // idempotent
	assert.Equal(t, 1, calls)
}

func TestFuture_CancelAfterSettle_SilentNoOp(t *testing.T) {
	f := New(func(remoteID string, future *Future) {
		t.Fatal("cancel must not enqueue once the future has settled")
	})
	f.Settle("done")
	f.Cancel()
}

func TestFuture_ApplyTiming_SetsOnce(t *testing.T) {
	f := New(nil)
	first := time.Now()
	second := first.Add(time.Hour)

	f.ApplyTiming(ObservedTiming{Received: &first})
	f.ApplyTiming(ObservedTiming{Received: &second})

	received, _, _, _ := f.Timestamps()
	assert.True(t, received.Equal(first))
}

func TestFuture_ClockOffset_SetOnce(t *testing.T) {
	f := New(nil)
	f.SetClockOffset(2 * time.Second)
	f.SetClockOffset(99 * time.Second)

	offset, ok := f.ClockOffset()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, offset)
}
