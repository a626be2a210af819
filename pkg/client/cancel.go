package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
)

// cancelBatchSize caps how many cancel requests one DELETE groups
// together; spec.md §4.6 leaves this to the implementation, so it mirrors
// SubmitBatchSize.
const cancelBatchSize = SubmitBatchSize

// cancelWorker implements the cancel stage of spec.md §4.6: block for one
// cancel request, drain whatever else is already queued, and send a single
// DELETE. A successful DELETE settles nothing — the server reports
// CANCELLED asynchronously through the normal poll/result-fetch path; only
// a failed DELETE settles its futures directly, with a timeout error if the
// request timed out and an I/O error otherwise.
func (c *Client) cancelWorker(id int) {
	defer c.wg.Done()
	log := c.logger.WithComponent(fmt.Sprintf("cancel-worker-%d", id))

	for {
		item, ok := <-c.cancelQueue
		if !ok {
			return
		}
		batch := []cancelItem{item}
		batch = drainCancelBatch(c.cancelQueue, batch, cancelBatchSize)

		c.cancelBatch(log, batch)
		runtime.Gosched()
	}
}

func drainCancelBatch(queue chan cancelItem, batch []cancelItem, limit int) []cancelItem {
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

func (c *Client) cancelBatch(log *logging.Logger, batch []cancelItem) {
	ids := make([]string, len(batch))
	for i, item := range batch {
		ids[i] = item.remoteID
	}

	body, err := json.Marshal(ids)
	if err != nil {
		c.settleCancelBatch(batch, apierrors.Wrap(apierrors.IO, "encoding cancel batch", err))
		return
	}

	req, err := c.session.NewRequest(c.ctx, http.MethodDelete, "/problems/", body)
	if err != nil {
		c.settleCancelBatch(batch, apierrors.Wrap(apierrors.IO, "building cancel request", err))
		return
	}

	resp, err := c.session.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.settleCancelBatch(batch, apierrors.Wrap(apierrors.Timeout, "cancel request timed out", err))
		} else {
			log.Warn("cancel request failed", map[string]interface{}{"ids": len(ids), "error": err.Error()})
			c.settleCancelBatch(batch, apierrors.Wrap(apierrors.IO, "cancel request failed", err))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		c.settleCancelBatch(batch, apierrors.Wrap(apierrors.IO, fmt.Sprintf("cancel failed with status %d", resp.StatusCode), fmt.Errorf("%s", string(body))))
		return
	}

	io.Copy(io.Discard, resp.Body)
}

func (c *Client) settleCancelBatch(batch []cancelItem, err error) {
	for _, item := range batch {
		item.future.SettleError(err)
		c.observeSettle(item.future)
	}
}
