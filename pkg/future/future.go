// Package future implements the per-problem handle returned to callers
// when a problem is accepted for submission: its state machine, blocking
// accessor, and thread-safe cancellation protocol.
package future

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
)

// CancelEnqueuer is called by Future.Cancel when a problem's remote_id is
// already known and it is safe to ask the server to cancel it directly
// (the "phase A" path of spec.md §4.6).
type CancelEnqueuer func(remoteID string, f *Future)

// Future is an in-process handle for one submitted problem. It settles at
// most once; after settlement, Result()/Err() are frozen.
type Future struct {
	localID string

	mu           sync.RWMutex
	remoteID     string
	remoteStatus apitypes.RemoteStatus
	pollBackoff  time.Duration
	timeCreated  time.Time
	timeReceived time.Time
	timeSolved   time.Time
	etaMin       time.Time
	etaMax       time.Time
	clockOffsetSet bool
	clockOffset  time.Duration

	// cancelMu is the "single cancel" lock of spec.md §4.6: it serializes
	// the phase-A/phase-B race between a concurrent user Cancel() call and
	// the status dispatcher first learning the remote_id.
	cancelMu        sync.Mutex
	cancelRequested bool
	cancelSent      bool

	terminal   atomic.Bool
	settleOnce sync.Once
	done       chan struct{}
	result     interface{}
	err        error

	enqueueCancel CancelEnqueuer
}

// New creates a Future with a freshly assigned, stable local id.
func New(enqueueCancel CancelEnqueuer) *Future {
	return &Future{
		localID:       uuid.NewString(),
		timeCreated:   time.Now(),
		done:          make(chan struct{}),
		enqueueCancel: enqueueCancel,
	}
}

// LocalID returns the client-assigned identifier, stable for the life of
// the Future.
func (f *Future) LocalID() string {
	return f.localID
}

// RemoteID returns the server-assigned id, or "" if the server has not yet
// accepted the problem.
func (f *Future) RemoteID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.remoteID
}

// RemoteStatus returns the last observed remote status.
func (f *Future) RemoteStatus() apitypes.RemoteStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.remoteStatus
}

// PollBackoff returns the last poll interval used for this future, or 0 if
// it has not been polled yet.
func (f *Future) PollBackoff() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pollBackoff
}

// SetPollBackoff records the interval the poll stage is about to sleep
// for.
func (f *Future) SetPollBackoff(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollBackoff = d
}

// TimeCreated returns when this Future was constructed.
func (f *Future) TimeCreated() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.timeCreated
}

// Timestamps returns the set-at-most-once timing fields, in the order
// received/solved/etaMin/etaMax. Zero values mean "not yet set".
func (f *Future) Timestamps() (received, solved, etaMin, etaMax time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.timeReceived, f.timeSolved, f.etaMin, f.etaMax
}

// ClockOffset returns the signed skew between the server's Date header and
// the local clock at submission-response time, and whether it has been
// set yet.
func (f *Future) ClockOffset() (time.Duration, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.clockOffset, f.clockOffsetSet
}

// SetClockOffset records the clock skew exactly once; later calls are
// ignored.
func (f *Future) SetClockOffset(offset time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clockOffsetSet {
		return
	}
	f.clockOffset = offset
	f.clockOffsetSet = true
}

// ObservedTiming carries the subset of a status record's timing fields
// that the caller has parsed and knows are present.
type ObservedTiming struct {
	Received *time.Time
	Solved   *time.Time
	ETAMin   *time.Time
	ETAMax   *time.Time
}

// ApplyTiming sets each present field in t that has not already been set.
func (f *Future) ApplyTiming(t ObservedTiming) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Received != nil && f.timeReceived.IsZero() {
		f.timeReceived = *t.Received
	}
	if t.Solved != nil && f.timeSolved.IsZero() {
		f.timeSolved = *t.Solved
	}
	if t.ETAMin != nil && f.etaMin.IsZero() {
		f.etaMin = *t.ETAMin
	}
	if t.ETAMax != nil && f.etaMax.IsZero() {
		f.etaMax = *t.ETAMax
	}
}

// SetRemoteStatus updates the last observed remote status.
func (f *Future) SetRemoteStatus(status apitypes.RemoteStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteStatus = status
}

// LearnRemoteID sets the remote id exactly once (empty -> non-empty) and
// reports whether this call was the one that learned it. The caller
// (the status dispatcher) uses that to decide whether to check for a
// deferred cancel under the cancel lock.
func (f *Future) LearnRemoteID(id string) (learned bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteID != "" {
		return false
	}
	f.remoteID = id
	return true
}

// Done reports, without blocking, whether the future has settled.
func (f *Future) Done() bool {
	return f.terminal.Load()
}

// Result returns the decoded result and whether the future settled
// successfully. Only meaningful once Done() is true.
func (f *Future) Result() (interface{}, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.result, f.err == nil && f.terminal.Load()
}

// Err returns the settled error, or nil if the future settled
// successfully or has not settled yet.
func (f *Future) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Settle transitions the future to terminal with a successful result. Only
// the first call (whether to Settle or SettleError) across the future's
// lifetime has any effect.
func (f *Future) Settle(result interface{}) {
	f.settleOnce.Do(func() {
		f.mu.Lock()
		f.result = result
		f.mu.Unlock()
		f.terminal.Store(true)
		close(f.done)
	})
}

// SettleError transitions the future to terminal with a failure. Only the
// first call (whether to Settle or SettleError) across the future's
// lifetime has any effect.
func (f *Future) SettleError(err error) {
	f.settleOnce.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		f.terminal.Store(true)
		close(f.done)
	})
}

// WaitForResult blocks until the future is terminal or timeout elapses
// (timeout <= 0 means wait indefinitely). It returns the decoded result on
// success, the settled error on failure, or apierrors.Timeout if the wait
// itself expires without the future ever settling.
func (f *Future) WaitForResult(timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		<-f.done
	} else {
		select {
		case <-f.done:
		case <-time.After(timeout):
			return nil, apierrors.New(apierrors.Timeout, "wait-for-result timed out")
		}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// Cancel requests cancellation. If the remote id is already known and the
// last observed status is PENDING, it enqueues a cancel request directly
// (phase A). If the remote id is not yet known, it records the request for
// the status dispatcher to pick up once the remote id becomes known (phase
// B, spec.md §4.6). If the remote id is known but the status is not
// PENDING, the request is recorded and no cancel is sent. Cancel is
// idempotent: a second call is a silent no-op, including after the future
// has already settled.
func (f *Future) Cancel() {
	if f.terminal.Load() {
		return
	}

	f.cancelMu.Lock()
	defer f.cancelMu.Unlock()

	if f.cancelRequested {
		return
	}
	f.cancelRequested = true

	f.mu.RLock()
	remoteID := f.remoteID
	status := f.remoteStatus
	f.mu.RUnlock()

	if remoteID != "" && status == apitypes.StatusPending {
		f.cancelSent = true
		if f.enqueueCancel != nil {
			f.enqueueCancel(remoteID, f)
		}
	}
}

// ConsumeDeferredCancel is called by the status dispatcher immediately
// after it learns this future's remote id (LearnRemoteID returned true).
// Under the same cancel lock Cancel() uses, it checks whether a cancel was
// requested before the remote id was known and not yet sent, and if so
// marks it sent and returns the remote id to enqueue for cancellation.
func (f *Future) ConsumeDeferredCancel(remoteID string, status apitypes.RemoteStatus) (id string, ok bool) {
	f.cancelMu.Lock()
	defer f.cancelMu.Unlock()

	if f.cancelRequested && !f.cancelSent && status == apitypes.StatusPending {
		f.cancelSent = true
		return remoteID, true
	}
	return "", false
}
