package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/future"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
)

// pollWorker implements the poll stage of spec.md §4.4: it blocks for the
// next due future, groups in whatever else falls within
// PollGroupingWindow of it, sleeps until the earliest one is actually due,
// then fetches the whole group's status with one request.
func (c *Client) pollWorker(id int) {
	defer c.wg.Done()
	log := c.logger.WithComponent(fmt.Sprintf("poll-worker-%d", id))

	for {
		head, ok := c.pollQueue.Pop()
		if !ok {
			return
		}

		frame := []*pollItem{head}
		frame = append(frame, c.pollQueue.DrainWithin(head.scheduledAt, PollGroupingWindow)...)
		frame = dropSettled(frame)
		if len(frame) == 0 {
			continue
		}

		sleepUntil(head.scheduledAt)
		c.pollBatch(log, frame)
		runtime.Gosched()
	}
}

func dropSettled(frame []*pollItem) []*pollItem {
	live := frame[:0]
	for _, it := range frame {
		if !it.future.Done() {
			live = append(live, it)
		}
	}
	return live
}

func sleepUntil(at time.Time) {
	d := time.Until(at)
	if d > 0 {
		time.Sleep(d)
	}
}

func (c *Client) pollBatch(log *logging.Logger, frame []*pollItem) {
	byID := make(map[string]*future.Future, len(frame))
	ids := make([]string, 0, len(frame))
	for _, it := range frame {
		remoteID := it.future.RemoteID()
		if remoteID == "" {
			// A future without a remote_id should never reach the poll
			// queue; treat it as an internal invariant violation rather
			// than silently dropping it.
			it.future.SettleError(apierrors.New(apierrors.InvalidResponse, "polled future has no remote id"))
			c.observeSettle(it.future)
			continue
		}
		byID[remoteID] = it.future
		ids = append(ids, remoteID)
	}
	if len(ids) == 0 {
		return
	}

	req, err := c.session.NewRequest(c.ctx, http.MethodGet, "/problems/?id="+strings.Join(ids, ","), nil)
	if err != nil {
		c.settleBatch(byID, apierrors.Wrap(apierrors.IO, "building poll request", err))
		return
	}

	resp, err := c.session.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.settleBatch(byID, apierrors.Wrap(apierrors.Timeout, "poll request timed out", err))
		} else {
			log.Warn("poll request failed", map[string]interface{}{"ids": len(ids), "error": err.Error()})
			c.settleBatch(byID, apierrors.Wrap(apierrors.IO, "poll request failed", err))
		}
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.settleBatch(byID, apierrors.Wrap(apierrors.IO, "reading poll response", err))
		return
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.settleBatch(byID, apierrors.New(apierrors.Auth, "unauthorized polling problems"))
		return
	case resp.StatusCode >= 500:
		// Transient: reschedule the whole group rather than settling it.
		for _, f := range byID {
			c.schedulePoll(f)
		}
		return
	case resp.StatusCode >= 400:
		c.settleBatch(byID, apierrors.Wrap(apierrors.IO, fmt.Sprintf("poll failed with status %d", resp.StatusCode), fmt.Errorf("%s", string(body))))
		return
	}

	var records []apitypes.StatusRecord
	if err := json.Unmarshal(body, &records); err != nil {
		c.settleBatch(byID, apierrors.Wrap(apierrors.IO, "parsing poll response", err))
		return
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		f, ok := byID[rec.ID]
		if !ok {
			continue
		}
		seen[rec.ID] = true
		c.dispatch(rec, f)
	}

	// Any id the server didn't report back is treated as transient and
	// simply rescheduled, rather than failing a future over a
	// server-side omission in one poll round.
	for id, f := range byID {
		if !seen[id] {
			c.schedulePoll(f)
		}
	}
}

func (c *Client) settleBatch(byID map[string]*future.Future, err error) {
	for _, f := range byID {
		f.SettleError(err)
		c.observeSettle(f)
	}
}
