package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketdesk/relay/internal/core/domain"
)

func testPoller(maxAttempts int) *Poller {
	p := NewPoller(time.Second, maxAttempts)
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func sequenceFetch(states []domain.RelayTransactionState, calls *int) StatusFunc {
	return func(ctx context.Context, id string) (domain.RelayTransactionRecord, error) {
		i := *calls
		*calls++
		if i >= len(states) {
			i = len(states) - 1
		}
		return domain.RelayTransactionRecord{TransactionID: id, State: states[i]}, nil
	}
}

func TestPoller_SuccessBeforeBudget(t *testing.T) {
	calls := 0
	fetch := sequenceFetch([]domain.RelayTransactionState{
		domain.StateNew, domain.StateExecuted, domain.StateMined,
	}, &calls)

	record, err := testPoller(10).Wait(context.Background(), "tx-1", fetch)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if record.State != domain.StateMined {
		t.Errorf("state = %s, want MINED", record.State)
	}
	if calls != 3 {
		t.Errorf("fetch calls = %d, want 3 (stop at terminal state)", calls)
	}
}

func TestPoller_ConfirmedIsTerminal(t *testing.T) {
	calls := 0
	fetch := sequenceFetch([]domain.RelayTransactionState{domain.StateConfirmed}, &calls)

	record, err := testPoller(5).Wait(context.Background(), "tx-2", fetch)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if record.State != domain.StateConfirmed {
		t.Errorf("state = %s, want CONFIRMED", record.State)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestPoller_FailedStopsImmediately(t *testing.T) {
	calls := 0
	fetch := sequenceFetch([]domain.RelayTransactionState{
		domain.StateNew, domain.StateFailed,
	}, &calls)

	_, err := testPoller(10).Wait(context.Background(), "tx-3", fetch)
	if !errors.Is(err, domain.ErrRelayFailed) {
		t.Fatalf("err = %v, want ErrRelayFailed", err)
	}
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (no polling past FAILED)", calls)
	}
}

func TestPoller_TimeoutIsNotFailure(t *testing.T) {
	calls := 0
	fetch := sequenceFetch([]domain.RelayTransactionState{domain.StateExecuted}, &calls)

	record, err := testPoller(4).Wait(context.Background(), "tx-4", fetch)
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if errors.Is(err, domain.ErrRelayFailed) {
		t.Fatal("timeout must not be reported as failure")
	}
	if calls != 4 {
		t.Errorf("fetch calls = %d, want exactly the budget of 4", calls)
	}
	if record.State != domain.StateExecuted {
		t.Errorf("last observed state = %s, want EXECUTED", record.State)
	}
}

func TestPoller_ContextCancelDuringSleep(t *testing.T) {
	p := NewPoller(time.Second, 10)
	p.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	calls := 0
	fetch := sequenceFetch([]domain.RelayTransactionState{domain.StateNew}, &calls)

	_, err := p.Wait(context.Background(), "tx-5", fetch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestPoller_TransientFetchErrorsConsumeBudget(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, id string) (domain.RelayTransactionRecord, error) {
		calls++
		return domain.RelayTransactionRecord{}, errors.New("connection reset")
	}

	_, err := testPoller(3).Wait(context.Background(), "tx-6", fetch)
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if calls != 3 {
		t.Errorf("fetch calls = %d, want 3", calls)
	}
}
