package types

import "time"

// Outcome classifies one entry of a mutating operation
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// EntryAction says what kind of write the entry attempted
type EntryAction string

const (
	ActionSet   EntryAction = "set"
	ActionUnset EntryAction = "unset"
)

// EntryResult is the recorded outcome of a single Set/Unset attempt
type EntryResult struct {
	Key          string      `json:"key"`
	Action       EntryAction `json:"action"`
	Outcome      Outcome     `json:"outcome"`
	AppliedValue string      `json:"applied_value,omitempty"`
	Detail       string      `json:"detail,omitempty"`
}

// Report is the itemized result of an apply or restore. Partial failure is
// never silent: every attempted entry appears here, in catalog/profile
// order, regardless of outcome.
type Report struct {
	Operation  string        `json:"operation"`
	Profile    string        `json:"profile,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	SnapshotAt time.Time     `json:"snapshot_at,omitempty"`
	Entries    []EntryResult `json:"entries"`
	Errors     []string      `json:"errors,omitempty"`
}

// Add appends one entry result
func (r *Report) Add(e EntryResult) {
	r.Entries = append(r.Entries, e)
}

// Failed counts entries whose write was rejected
func (r *Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Succeeded counts entries that applied
func (r *Report) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

// AllOK reports whether no entry failed
func (r *Report) AllOK() bool {
	return r.Failed() == 0 && len(r.Errors) == 0
}
