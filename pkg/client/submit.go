package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
)

// submitWorker implements the submission stage of spec.md §4.2: it pulls
// one item off submitQueue, then opportunistically drains up to
// SubmitBatchSize-1 more without blocking, POSTs the whole batch in one
// request, and dispatches each returned status record to its future.
func (c *Client) submitWorker(id int) {
	defer c.wg.Done()
	log := c.logger.WithComponent(fmt.Sprintf("submit-worker-%d", id))

	for {
		item, ok := <-c.submitQueue
		if !ok {
			return
		}
		batch := []submitItem{item}
		batch = drainBatch(c.submitQueue, batch, SubmitBatchSize)

		c.submitBatch(log, batch)
		runtime.Gosched()
	}
}

// drainBatch non-blockingly appends up to limit-len(batch) more items from
// queue, stopping early if the queue is empty or closed.
func drainBatch(queue chan submitItem, batch []submitItem, limit int) []submitItem {
	for len(batch) < limit {
		select {
		case item, ok := <-queue:
			if !ok {
				return batch
			}
			batch = append(batch, item)
		default:
			return batch
		}
	}
	return batch
}

func (c *Client) submitBatch(log *logging.Logger, batch []submitItem) {
	submissions := make([]apitypes.ProblemSubmission, len(batch))
	for i, item := range batch {
		submissions[i] = item.submission
	}

	body, err := json.Marshal(submissions)
	if err != nil {
		c.settleAll(batch, apierrors.Wrap(apierrors.IO, "encoding submission batch", err))
		return
	}

	req, err := c.session.NewRequest(c.ctx, http.MethodPost, "/problems/", body)
	if err != nil {
		c.settleAll(batch, apierrors.Wrap(apierrors.IO, "building submission request", err))
		return
	}

	resp, err := c.session.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.settleAll(batch, apierrors.Wrap(apierrors.Timeout, "submission request timed out", err))
		} else {
			log.Warn("submission request failed", map[string]interface{}{"batch_size": len(batch), "error": err.Error()})
			c.settleAll(batch, apierrors.Wrap(apierrors.IO, "submission request failed", err))
		}
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.settleAll(batch, apierrors.Wrap(apierrors.IO, "reading submission response", err))
		return
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.settleAll(batch, apierrors.New(apierrors.Auth, "unauthorized submitting problems"))
		return
	case resp.StatusCode >= 400:
		c.settleAll(batch, apierrors.Wrap(apierrors.IO, fmt.Sprintf("submission failed with status %d", resp.StatusCode), fmt.Errorf("%s", string(respBody))))
		return
	}

	var records []apitypes.StatusRecord
	if err := json.Unmarshal(respBody, &records); err != nil {
		c.settleAll(batch, apierrors.Wrap(apierrors.IO, "parsing submission response", err))
		return
	}
	if len(records) != len(batch) {
		c.settleAll(batch, apierrors.New(apierrors.InvalidResponse, "submission response length does not match request"))
		return
	}

	offset, hasOffset := clockOffset(resp)
	for i, rec := range records {
		if hasOffset {
			batch[i].future.SetClockOffset(offset)
		}
		c.dispatch(rec, batch[i].future)
	}
}

func (c *Client) settleAll(batch []submitItem, err error) {
	for _, item := range batch {
		item.future.SettleError(err)
		c.observeSettle(item.future)
	}
}

// clockOffset reads the server's Date response header and reports its skew
// from the local clock, used to correct estimated-completion timestamps
// that the server expresses relative to its own clock.
func clockOffset(resp *http.Response) (time.Duration, bool) {
	raw := resp.Header.Get("Date")
	if raw == "" {
		return 0, false
	}
	serverTime, err := http.ParseTime(raw)
	if err != nil {
		return 0, false
	}
	return time.Now().Sub(serverTime), true
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
