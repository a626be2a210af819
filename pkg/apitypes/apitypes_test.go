package apitypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteStatus_Terminal(t *testing.T) {
	terminal := []RemoteStatus{StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	nonTerminal := []RemoteStatus{StatusPending, StatusInProgress}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestStatusRecord_HasImmediateError(t *testing.T) {
	assert.True(t, StatusRecord{ErrorCode: 400, ErrorMsg: "bad problem"}.HasImmediateError())
	assert.False(t, StatusRecord{ErrorCode: 400}.HasImmediateError())
	assert.False(t, StatusRecord{ErrorMsg: "bad problem"}.HasImmediateError())
	assert.False(t, StatusRecord{Status: StatusPending}.HasImmediateError())
}
