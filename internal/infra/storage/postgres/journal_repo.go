package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marketdesk/relay/internal/core/domain"
)

// JournalRepo persists relay submissions for audit and status views.
type JournalRepo struct {
	db *DB
}

// NewJournalRepo creates a journal repository.
func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Record inserts a new submission row.
func (r *JournalRepo) Record(ctx context.Context, rec domain.SubmissionRecord) error {
	const query = `
		INSERT INTO relay_txns (transaction_id, wallet, kind, nonce, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		rec.TransactionID, rec.Wallet, rec.Kind, rec.Nonce, rec.State, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// UpdateState records the latest observed relay state for a submission.
func (r *JournalRepo) UpdateState(ctx context.Context, transactionID string, state domain.RelayTransactionState) error {
	const query = `
		UPDATE relay_txns SET state = $1, updated_at = NOW()
		WHERE transaction_id = $2`

	_, err := r.db.ExecContext(ctx, query, state, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update submission state: %w", err)
	}
	return nil
}

// GetByTransactionID fetches one journal row, or nil when absent.
func (r *JournalRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.SubmissionRecord, error) {
	const query = `
		SELECT id, transaction_id, wallet, kind, nonce, state, created_at, updated_at
		FROM relay_txns WHERE transaction_id = $1`

	var rec domain.SubmissionRecord
	err := r.db.GetContext(ctx, &rec, query, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &rec, nil
}

// ListByWallet returns a wallet's submissions, newest first.
func (r *JournalRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.SubmissionRecord, error) {
	const query = `
		SELECT id, transaction_id, wallet, kind, nonce, state, created_at, updated_at
		FROM relay_txns WHERE wallet = $1
		ORDER BY created_at DESC LIMIT $2`

	var recs []domain.SubmissionRecord
	if err := r.db.SelectContext(ctx, &recs, query, wallet, limit); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return recs, nil
}
