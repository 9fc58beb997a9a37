package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/marketdesk/relay/internal/core/domain"
	"github.com/marketdesk/relay/internal/infra/relay"
)

// RelayService is the relay HTTP surface the coordinators consume.
type RelayService interface {
	GetNonce(ctx context.Context, wallet common.Address) (string, error)
	IsDeployed(ctx context.Context, wallet common.Address) (bool, error)
	Deploy(ctx context.Context, req relay.DeployRequest) (string, error)
	Execute(ctx context.Context, req relay.ExecuteRequest) (string, error)
	GetTransaction(ctx context.Context, id string) (domain.RelayTransactionRecord, error)
}

// ChainReader performs the side-effect-free chain queries the coordinators
// need: the deployment fallback check and the approval satisfaction reads.
type ChainReader interface {
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error)
}

// Journal persists relay submissions. A nil journal disables persistence.
type Journal interface {
	Record(ctx context.Context, rec domain.SubmissionRecord) error
	UpdateState(ctx context.Context, transactionID string, state domain.RelayTransactionState) error
}

// Locker serializes wallet operations across processes. A nil locker means
// only the in-process mutex applies.
type Locker interface {
	Acquire(ctx context.Context, wallet string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, wallet string) error
}

// Config holds the static parameters of one wallet session.
type Config struct {
	ChainID      int64
	Factory      common.Address
	Multisend    common.Address
	Requirements []domain.ApprovalRequirement
	PollInterval time.Duration
	PollAttempts int
	LockTTL      time.Duration
}

// Deps are the collaborators a Client operates with. Signer, Relay and
// Chain are required; Journal, Locker and Logger are optional.
type Deps struct {
	Signer  Signer
	Relay   RelayService
	Chain   ChainReader
	Journal Journal
	Locker  Locker
	Logger  *slog.Logger
}

// Client is the gasless relay client for one wallet. It owns the
// deployment and approval coordinators and holds no state besides the
// identity's deployed flag, which is always re-read from the relay before
// use. At most one operation per wallet runs at a time: both coordinators
// consume a nonce and the relay cannot serialize concurrent submissions
// from the same caller.
type Client struct {
	cfg    Config
	signer Signer
	relay  RelayService
	chain  ChainReader

	nonces  *NonceSource
	poller  *relay.Poller
	journal Journal
	locker  Locker
	log     *slog.Logger

	mu       sync.Mutex
	identity domain.WalletIdentity
}

// New creates a relay client for the signer's wallet. The counterfactual
// address is derived once here; it is a pure function of owner and factory.
func New(cfg Config, deps Deps) *Client {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = 40
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	owner := deps.Signer.Address()
	return &Client{
		cfg:     cfg,
		signer:  deps.Signer,
		relay:   deps.Relay,
		chain:   deps.Chain,
		nonces:  NewNonceSource(deps.Relay),
		poller:  relay.NewPoller(cfg.PollInterval, cfg.PollAttempts),
		journal: deps.Journal,
		locker:  deps.Locker,
		log:     log.With("wallet", DeriveWalletAddress(owner, cfg.Factory).Hex()),
		identity: domain.WalletIdentity{
			Owner:   owner,
			Factory: cfg.Factory,
			Address: DeriveWalletAddress(owner, cfg.Factory),
		},
	}
}

// WalletAddress returns the counterfactual wallet address.
func (c *Client) WalletAddress() common.Address {
	return c.identity.Address
}

// Identity returns a snapshot of the wallet identity.
func (c *Client) Identity() domain.WalletIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// EnsureDeployed deploys the wallet if it does not exist yet. Calling it
// on an already-deployed wallet is a no-op that reports success.
func (c *Client) EnsureDeployed(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	release, err := c.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer release()

	return c.ensureDeployedLocked(ctx)
}

// EnsureApproved grants every unsatisfied approval requirement in one
// atomically executed relay transaction, deploying the wallet first when
// needed. With nothing to do it performs only the read-only check.
func (c *Client) EnsureApproved(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	release, err := c.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer release()

	return c.ensureApprovedLocked(ctx)
}

// ApprovalStatus recomputes the satisfaction state of every requirement
// from chain state. Read-only; safe to call at any time.
func (c *Client) ApprovalStatus(ctx context.Context) ([]domain.ApprovalRequirement, error) {
	return c.checkApprovals(ctx)
}

func (c *Client) acquireLock(ctx context.Context) (func(), error) {
	if c.locker == nil {
		return func() {}, nil
	}
	key := c.identity.Address.Hex()
	ok, err := c.locker.Acquire(ctx, key, c.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire wallet lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("wallet %s has an operation in flight", key)
	}
	return func() {
		if err := c.locker.Release(context.Background(), key); err != nil {
			c.log.Warn("failed to release wallet lock", "error", err)
		}
	}, nil
}
