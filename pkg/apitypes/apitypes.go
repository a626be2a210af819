// Package apitypes holds the JSON wire shapes exchanged with the solver
// service: problem submissions, status records, and solver descriptors.
package apitypes

import "encoding/json"

// RemoteStatus is the server-reported lifecycle state of a submitted
// problem. Transitions are monotone toward a terminal state.
type RemoteStatus string

const (
	StatusPending    RemoteStatus = "PENDING"
	StatusInProgress RemoteStatus = "IN_PROGRESS"
	StatusCompleted  RemoteStatus = "COMPLETED"
	StatusFailed     RemoteStatus = "FAILED"
	StatusCancelled  RemoteStatus = "CANCELLED"
)

// Terminal reports whether this status ends a future's lifecycle.
func (s RemoteStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ProblemSubmission is one element of the JSON array POSTed to
// {endpoint}/problems/.
type ProblemSubmission struct {
	// Label correlates a submission with its log lines; it is never
	// required for dispatch, which always keys off the server-assigned id.
	Label  string          `json:"label,omitempty"`
	Solver string          `json:"solver"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	Params json.RawMessage `json:"params,omitempty"`
}

// StatusRecord is the server's report on one problem, returned by the
// submit, poll, and result-fetch endpoints.
type StatusRecord struct {
	ID                          string          `json:"id"`
	Status                      RemoteStatus    `json:"status"`
	SubmittedOn                 string          `json:"submitted_on,omitempty"`
	SolvedOn                    string          `json:"solved_on,omitempty"`
	EarliestEstimatedCompletion string          `json:"earliest_estimated_completion,omitempty"`
	LatestEstimatedCompletion   string          `json:"latest_estimated_completion,omitempty"`
	Answer                      json.RawMessage `json:"answer,omitempty"`
	ErrorMessage                string          `json:"error_message,omitempty"`
	ErrorCode                   int             `json:"error_code,omitempty"`
	ErrorMsg                    string          `json:"error_msg,omitempty"`
}

// HasImmediateError reports whether this record is an immediate rejection
// carrying both error_code and error_msg, as opposed to a normal status.
func (r StatusRecord) HasImmediateError() bool {
	return r.ErrorCode != 0 && r.ErrorMsg != ""
}

// SolverDescriptor is the JSON record returned by the catalog endpoint
// describing one solver's parameters, properties, and derived attributes.
type SolverDescriptor struct {
	ID         string                 `json:"id"`
	Parameters map[string]interface{} `json:"parameters"`
	Properties map[string]interface{} `json:"properties"`
}

// SolverOfflineSentinel is the substring the original service uses in
// error_message to indicate a solver is offline rather than merely having
// failed this submission.
const SolverOfflineSentinel = "is offline"
