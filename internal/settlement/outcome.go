package settlement

import (
	"fmt"

	"github.com/tradeboard/rewards-core/internal/chain"
)

// Status is the settlement state of a submission attempt. Sent and
// Confirming are transient; SubmitAndTrack only ever returns a terminal
// status, and once a terminal status is produced no further transition
// occurs for that submission.
type Status string

const (
	StatusSent       Status = "sent"
	StatusConfirming Status = "confirming"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
)

// Outcome is the terminal result of submitting and tracking a transaction.
type Outcome struct {
	Status    Status
	Signature string
	Slot      uint64
	Level     chain.ConfirmationLevel
	Reason    string // populated for StatusFailed
}

// Terminal reports whether the status is one of the three terminal states.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusTimedOut
}

// SubmissionError indicates the node rejected the transaction before it
// entered the network. Terminal; never retried by this component.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction rejected at submission: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
