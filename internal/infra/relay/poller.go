package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketdesk/relay/internal/core/domain"
	"github.com/marketdesk/relay/internal/metrics"
)

// StatusFunc fetches the current state of a relay transaction.
type StatusFunc func(ctx context.Context, id string) (domain.RelayTransactionRecord, error)

// Poller drives a fixed-interval status loop with a bounded attempt budget.
// Exhausting the budget without a terminal state yields ErrPollTimeout,
// which is distinct from failure: the transaction may still land after the
// window closes, so callers re-check state directly instead of assuming
// anything.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int

	// sleep is replaceable in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller with the given interval and attempt budget.
func NewPoller(interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		sleep:       sleepCtx,
	}
}

// Wait polls until a terminal state, the attempt budget, or context
// cancellation. A FAILED state returns ErrRelayFailed immediately with no
// further polling; MINED or CONFIRMED returns the record at that attempt.
func (p *Poller) Wait(ctx context.Context, id string, fetch StatusFunc) (domain.RelayTransactionRecord, error) {
	last := domain.RelayTransactionRecord{TransactionID: id, State: domain.StateNew}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		record, err := fetch(ctx, id)
		metrics.RelayPollAttempts.Inc()
		if err != nil {
			// A single failed status read is transient; the budget keeps
			// the loop bounded either way.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return last, err
			}
		} else {
			last = record
			if record.State == domain.StateFailed {
				return record, fmt.Errorf("transaction %s: %w", id, domain.ErrRelayFailed)
			}
			if record.State.Terminal() {
				return record, nil
			}
		}

		if attempt == p.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, p.Interval); err != nil {
			return last, err
		}
	}

	return last, fmt.Errorf("transaction %s after %d attempts: %w", id, p.MaxAttempts, domain.ErrPollTimeout)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
