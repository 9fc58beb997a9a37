package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/marketdesk/relay/internal/core/domain"
	"github.com/marketdesk/relay/internal/infra/relay"
	"github.com/marketdesk/relay/internal/metrics"
)

// DeployState tracks first-time deployment progress.
type DeployState string

const (
	DeployNotDeployed DeployState = "NOT_DEPLOYED"
	DeployChecking    DeployState = "CHECKING"
	DeploySigning     DeployState = "SIGNING"
	DeploySubmitting  DeployState = "SUBMITTING"
	DeployPolling     DeployState = "POLLING"
	DeployDeployed    DeployState = "DEPLOYED"
	DeployFailed      DeployState = "FAILED"
)

// ensureDeployedLocked drives NOT_DEPLOYED through DEPLOYED. The caller
// holds the wallet lock.
func (c *Client) ensureDeployedLocked(ctx context.Context) error {
	// CHECKING
	deployed, err := c.isDeployed(ctx)
	if err != nil {
		return &domain.StageError{Stage: domain.StageChecking, Err: err}
	}
	if deployed {
		c.markDeployed()
		return nil
	}

	// SIGNING: zero-payment create message under the factory's own domain.
	c.log.Info("deploying wallet", "state", DeploySigning)
	digest, err := DeploymentDigest(c.cfg.ChainID, c.cfg.Factory)
	if err != nil {
		return &domain.StageError{Stage: domain.StageSigning, Err: err}
	}
	sig, err := c.signer.SignHash(ctx, digest)
	if err != nil {
		return &domain.StageError{Stage: domain.StageSigning, Err: fmt.Errorf("%w: %v", domain.ErrSigningDeclined, err)}
	}
	packed, err := PackSignature(sig)
	if err != nil {
		return &domain.StageError{Stage: domain.StageSigning, Err: err}
	}

	// SUBMITTING
	c.log.Info("deploying wallet", "state", DeploySubmitting)
	txID, err := c.relay.Deploy(ctx, relay.DeployRequest{
		EOAAddress:         c.identity.Owner.Hex(),
		Signature:          hexutil.Encode(packed),
		ProxyAddress:       c.identity.Address.Hex(),
		SafeFactoryAddress: c.cfg.Factory.Hex(),
	})
	if err != nil {
		return &domain.StageError{Stage: domain.StageSubmitting, Err: err}
	}
	c.journalRecord(ctx, domain.SubmissionRecord{
		TransactionID: txID,
		Wallet:        c.identity.Address.Hex(),
		Kind:          domain.SubmissionDeploy,
		Nonce:         "0",
		State:         domain.StateNew,
	})

	// POLLING
	c.log.Info("deploying wallet", "state", DeployPolling, "tx", txID)
	record, err := c.poller.Wait(ctx, txID, c.relay.GetTransaction)
	c.journalState(ctx, txID, record.State)
	if err != nil {
		if errors.Is(err, domain.ErrPollTimeout) {
			// Deployment may have completed despite an unobserved poll
			// result; re-run the check once before concluding failure.
			deployed, checkErr := c.isDeployed(ctx)
			if checkErr == nil && deployed {
				c.markDeployed()
				return nil
			}
			return &domain.StageError{Stage: domain.StagePolling, TransactionID: txID, Err: err}
		}
		return &domain.StageError{Stage: domain.StagePolling, TransactionID: txID, Err: err}
	}

	c.markDeployed()
	c.log.Info("wallet deployed", "state", DeployDeployed, "tx", txID)
	return nil
}

// isDeployed asks the relay first and falls back to a direct bytecode
// check when the relay call errors.
func (c *Client) isDeployed(ctx context.Context) (bool, error) {
	deployed, err := c.relay.IsDeployed(ctx, c.identity.Address)
	if err == nil {
		return deployed, nil
	}
	c.log.Warn("relay deployed check failed, falling back to chain", "error", err)

	hasCode, chainErr := c.chain.HasCode(ctx, c.identity.Address)
	if chainErr != nil {
		return false, fmt.Errorf("relay: %v; chain fallback: %w", err, chainErr)
	}
	return hasCode, nil
}

func (c *Client) markDeployed() {
	c.identity.Deployed = true
	metrics.WalletDeployed.WithLabelValues(c.identity.Address.Hex()).Set(1)
}

func (c *Client) journalRecord(ctx context.Context, rec domain.SubmissionRecord) {
	if c.journal == nil {
		return
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	if err := c.journal.Record(ctx, rec); err != nil {
		c.log.Warn("failed to journal submission", "tx", rec.TransactionID, "error", err)
	}
}

func (c *Client) journalState(ctx context.Context, txID string, state domain.RelayTransactionState) {
	if c.journal == nil || txID == "" {
		return
	}
	if err := c.journal.UpdateState(ctx, txID, state); err != nil {
		c.log.Warn("failed to update journal state", "tx", txID, "error", err)
	}
}

// metadataLabel builds the free-text label attached to relay submissions.
func metadataLabel(kind domain.SubmissionKind) string {
	return fmt.Sprintf("%s/%s", kind, uuid.NewString())
}
