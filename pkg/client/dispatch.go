package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/future"
)

// dispatch is the status dispatcher of spec.md §4.3: a pure routing
// function from one status record to whichever stage (or settlement) the
// future needs next. It is called from the submission, poll, and
// result-fetch stages alike, each time one of them observes a fresh status
// record for a future.
func (c *Client) dispatch(rec apitypes.StatusRecord, f *future.Future) {
	defer func() {
		if r := recover(); r != nil {
			f.SettleError(apierrors.New(apierrors.IO, fmt.Sprintf("panic while dispatching status record: %v", r)))
			c.observeSettle(f)
		}
	}()

	if rec.HasImmediateError() {
		f.SettleError(apierrors.New(apierrors.SolverFailure, rec.ErrorMsg))
		c.observeSettle(f)
		return
	}
	if rec.Status == "" || rec.ID == "" {
		f.SettleError(apierrors.New(apierrors.InvalidResponse, "status record is missing status or id"))
		c.observeSettle(f)
		return
	}

	learnedID := f.LearnRemoteID(rec.ID)
	f.SetRemoteStatus(rec.Status)
	f.ApplyTiming(parseTiming(rec))

	if learnedID {
		if remoteID, ok := f.ConsumeDeferredCancel(rec.ID, rec.Status); ok {
			c.enqueueCancel(remoteID, f)
		}
	}

	switch rec.Status {
	case apitypes.StatusCompleted:
		if len(rec.Answer) > 0 {
			result, err := c.decode(rec.Answer)
			if err != nil {
				f.SettleError(apierrors.Wrap(apierrors.IO, "decoding answer", err))
			} else {
				f.Settle(result)
			}
			c.observeSettle(f)
			return
		}
		c.enqueueFetch(f)

	case apitypes.StatusInProgress, apitypes.StatusPending:
		c.schedulePoll(f)

	case apitypes.StatusCancelled:
		f.SettleError(apierrors.New(apierrors.Cancelled, "problem was cancelled"))
		c.observeSettle(f)

	case apitypes.StatusFailed:
		if strings.Contains(rec.ErrorMessage, apitypes.SolverOfflineSentinel) {
			f.SettleError(apierrors.New(apierrors.SolverOffline, rec.ErrorMessage))
		} else {
			f.SettleError(apierrors.New(apierrors.SolverFailure, rec.ErrorMessage))
		}
		c.observeSettle(f)

	default:
		f.SettleError(apierrors.New(apierrors.InvalidResponse, fmt.Sprintf("unrecognized remote status %q", rec.Status)))
		c.observeSettle(f)
	}
}

func (c *Client) enqueueFetch(f *future.Future) {
	select {
	case c.fetchQueue <- f:
	case <-c.ctx.Done():
	}
}

func (c *Client) observeSettle(f *future.Future) {
	if c.metrics == nil {
		return
	}
	if err := f.Err(); err != nil {
		if apiErr, ok := err.(*apierrors.Error); ok {
			c.metrics.SettleOutcome(apiErr.Kind.String())
			return
		}
		c.metrics.SettleOutcome("i/o")
		return
	}
	c.metrics.SettleOutcome("result")
}

// parseTiming extracts the RFC3339 timing fields a status record may carry.
// Unparseable or absent fields are left nil; ApplyTiming only ever sets a
// field the first time it sees a non-nil value for it.
func parseTiming(rec apitypes.StatusRecord) future.ObservedTiming {
	var t future.ObservedTiming
	if v, ok := parseRFC3339(rec.SubmittedOn); ok {
		t.Received = &v
	}
	if v, ok := parseRFC3339(rec.SolvedOn); ok {
		t.Solved = &v
	}
	if v, ok := parseRFC3339(rec.EarliestEstimatedCompletion); ok {
		t.ETAMin = &v
	}
	if v, ok := parseRFC3339(rec.LatestEstimatedCompletion); ok {
		t.ETAMax = &v
	}
	return t
}

func parseRFC3339(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return v, true
}
