package client

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/future"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
)

func TestCancelBatch_SuccessSettlesNothing(t *testing.T) {
	var gotBody []byte
	c, srv := newPollTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	f := future.New(c.enqueueCancel)
	c.cancelBatch(logging.Default(), []cancelItem{{remoteID: "abc", future: f}})

	assert.False(t, f.Done())
	assert.JSONEq(t, `["abc"]`, string(gotBody))
}

func TestCancelBatch_FailureSettlesIOError(t *testing.T) {
	c, srv := newPollTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	f := future.New(c.enqueueCancel)
	c.cancelBatch(logging.Default(), []cancelItem{{remoteID: "abc", future: f}})

	require.True(t, f.Done())
	assert.True(t, apierrors.Is(f.Err(), apierrors.IO))
}
