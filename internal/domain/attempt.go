package domain

import "time"

// State is a stage in the mint pipeline. An attempt walks the chain
// Idle → ValidatingInput → PinningMedia → PinningMetadata →
// SubmittingTransaction → AwaitingConfirmation → Confirmed | Failed
// with no back-edges and no re-entry.
type State string

const (
	StateIdle                  State = "IDLE"
	StateValidatingInput       State = "VALIDATING_INPUT"
	StatePinningMedia          State = "PINNING_MEDIA"
	StatePinningMetadata       State = "PINNING_METADATA"
	StateSubmittingTransaction State = "SUBMITTING_TRANSACTION"
	StateAwaitingConfirmation  State = "AWAITING_CONFIRMATION"
	StateConfirmed             State = "CONFIRMED"
	StateFailed                State = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// next maps each non-terminal state to the states it may transition to.
var next = map[State][]State{
	StateIdle:                  {StateValidatingInput},
	StateValidatingInput:       {StatePinningMedia, StateFailed},
	StatePinningMedia:          {StatePinningMetadata, StateFailed},
	StatePinningMetadata:       {StateSubmittingTransaction, StateFailed},
	StateSubmittingTransaction: {StateAwaitingConfirmation, StateFailed},
	StateAwaitingConfirmation:  {StateConfirmed, StateFailed},
}

// CanTransition reports whether from → to is a legal pipeline edge.
func CanTransition(from, to State) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// MintInput is the user-supplied payload for one mint action.
type MintInput struct {
	Name        string // token name, required
	Description string // token description, required
	Image       []byte // raw image bytes, required
	ContentType string // e.g. "image/png"
}

// Attempt is the aggregate root for one end-to-end mint run. It owns its
// nested pin results and transaction handle; nothing mutates them
// concurrently. A new user action always creates a fresh Attempt.
type Attempt struct {
	ID      string // uuid
	Account string // connected wallet address (0x…)
	Input   MintInput

	MediaURI    string // gateway URI of the pinned image
	MetadataURI string // gateway URI of the pinned metadata document

	Tx *TransactionHandle // set once submission is accepted

	State   State
	Failure *Failure // set iff State == StateFailed

	StartedAt  time.Time
	FinishedAt time.Time // zero until terminal
}

// Snapshot returns a copy safe to hand to observers while the pipeline
// keeps mutating the original. The image bytes are shared (read-only by
// convention); the handle and failure are copied.
func (a *Attempt) Snapshot() Attempt {
	cp := *a
	if a.Tx != nil {
		tx := *a.Tx
		cp.Tx = &tx
	}
	if a.Failure != nil {
		f := *a.Failure
		cp.Failure = &f
	}
	return cp
}
