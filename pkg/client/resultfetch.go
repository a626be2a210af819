package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/future"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
)

// fetchWorker implements the result-fetch stage of spec.md §4.5: one
// future per request, no batching — a problem only lands here once it is
// already known COMPLETED without an inline answer.
func (c *Client) fetchWorker(id int) {
	defer c.wg.Done()
	log := c.logger.WithComponent(fmt.Sprintf("fetch-worker-%d", id))

	for {
		f, ok := <-c.fetchQueue
		if !ok {
			return
		}
		c.fetchResult(log, f)
		runtime.Gosched()
	}
}

func (c *Client) fetchResult(log *logging.Logger, f *future.Future) {
	remoteID := f.RemoteID()
	if remoteID == "" {
		f.SettleError(apierrors.New(apierrors.InvalidResponse, "result fetch requested with no remote id"))
		c.observeSettle(f)
		return
	}

	req, err := c.session.NewRequest(c.ctx, http.MethodGet, "/problems/"+remoteID+"/", nil)
	if err != nil {
		f.SettleError(apierrors.Wrap(apierrors.IO, "building result fetch request", err))
		c.observeSettle(f)
		return
	}

	resp, err := c.session.Do(req)
	if err != nil {
		if isTimeout(err) {
			f.SettleError(apierrors.Wrap(apierrors.Timeout, "result fetch timed out", err))
		} else {
			log.Warn("result fetch failed", map[string]interface{}{"remote_id": remoteID, "error": err.Error()})
			f.SettleError(apierrors.Wrap(apierrors.IO, "result fetch failed", err))
		}
		c.observeSettle(f)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.SettleError(apierrors.Wrap(apierrors.IO, "reading result fetch response", err))
		c.observeSettle(f)
		return
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		f.SettleError(apierrors.New(apierrors.Auth, "unauthorized fetching result"))
		c.observeSettle(f)
		return
	case resp.StatusCode >= 400:
		f.SettleError(apierrors.Wrap(apierrors.IO, fmt.Sprintf("result fetch failed with status %d", resp.StatusCode), fmt.Errorf("%s", string(body))))
		c.observeSettle(f)
		return
	}

	var rec apitypes.StatusRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		f.SettleError(apierrors.Wrap(apierrors.IO, "parsing result fetch response", err))
		c.observeSettle(f)
		return
	}
	c.dispatch(rec, f)
}
