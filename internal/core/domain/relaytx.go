package domain

import "time"

// RelayTransactionState is the relay-side lifecycle state of a submitted
// transaction, using the relay's wire names.
type RelayTransactionState string

const (
	StateNew       RelayTransactionState = "STATE_NEW"
	StateExecuted  RelayTransactionState = "STATE_EXECUTED"
	StateMined     RelayTransactionState = "STATE_MINED"
	StateConfirmed RelayTransactionState = "STATE_CONFIRMED"
	StateFailed    RelayTransactionState = "STATE_FAILED"
)

// Terminal reports whether the state ends the poll loop.
func (s RelayTransactionState) Terminal() bool {
	return s == StateMined || s == StateConfirmed || s == StateFailed
}

// Success reports whether the state is a successful terminal state.
func (s RelayTransactionState) Success() bool {
	return s == StateMined || s == StateConfirmed
}

// RelayTransactionRecord tracks one relay submission. Created on submit,
// mutated only by polling. Absence of a terminal state after the poll
// budget is exhausted is a timeout, not a failure.
type RelayTransactionRecord struct {
	TransactionID string
	Hash          string
	State         RelayTransactionState
}

// SubmissionKind labels journal entries by the operation that produced them.
type SubmissionKind string

const (
	SubmissionDeploy    SubmissionKind = "deploy"
	SubmissionApprovals SubmissionKind = "approvals"
)

// SubmissionRecord is the journal row persisted for every relay submission.
type SubmissionRecord struct {
	ID            int64                  `db:"id"`
	TransactionID string                 `db:"transaction_id"`
	Wallet        string                 `db:"wallet"`
	Kind          SubmissionKind         `db:"kind"`
	Nonce         string                 `db:"nonce"`
	State         RelayTransactionState  `db:"state"`
	CreatedAt     time.Time              `db:"created_at"`
	UpdatedAt     time.Time              `db:"updated_at"`
}
