package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSigningDeclined means the key holder refused to sign. Never
	// retried automatically.
	ErrSigningDeclined = errors.New("signing declined")

	// ErrRelayFailed means the relay reported the submitted transaction
	// as FAILED on-chain. Retrying requires a fresh nonce and a new
	// signature; the same signed payload must never be resubmitted.
	ErrRelayFailed = errors.New("relay reported transaction failed")

	// ErrPollTimeout means the poll budget was exhausted without a
	// terminal state. The transaction may still land; callers must
	// re-check state directly instead of assuming failure.
	ErrPollTimeout = errors.New("poll budget exhausted without terminal state")

	// ErrStaleNonce means the relay rejected a submission because the
	// nonce was already consumed. The whole signed struct must be
	// rebuilt with a fresh nonce.
	ErrStaleNonce = errors.New("nonce already consumed")
)

// Stage names the point an operation had reached when it failed.
type Stage string

const (
	StageChecking   Stage = "checking"
	StageSigning    Stage = "signing"
	StageSubmitting Stage = "submitting"
	StagePolling    Stage = "polling"
	StageVerifying  Stage = "verifying"
)

// StageError wraps a failure with the stage reached and the relay
// transaction id, if one was obtained, so the caller can decide whether
// a retry is safe.
type StageError struct {
	Stage         Stage
	TransactionID string
	Err           error
}

func (e *StageError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("%s (tx %s): %v", e.Stage, e.TransactionID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
