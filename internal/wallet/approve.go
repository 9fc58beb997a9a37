package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/marketdesk/relay/internal/core/domain"
	"github.com/marketdesk/relay/internal/infra/chain/evm"
	"github.com/marketdesk/relay/internal/infra/relay"
	"github.com/marketdesk/relay/internal/metrics"
)

// allowanceFloor is the level below which an ERC20 allowance counts as
// unsatisfied. Approvals grant max uint256; an allowance that has been
// spent down past half of that is treated as needing a re-grant.
var allowanceFloor = new(big.Int).Rsh(math.MaxBig256, 1)

// checkApprovals recomputes the satisfaction state of every requirement
// with read-only chain calls. Nothing is persisted or cached.
func (c *Client) checkApprovals(ctx context.Context) ([]domain.ApprovalRequirement, error) {
	wallet := c.identity.Address
	out := make([]domain.ApprovalRequirement, len(c.cfg.Requirements))

	for i, req := range c.cfg.Requirements {
		out[i] = req
		switch req.Standard {
		case domain.StandardERC20:
			allowance, err := c.chain.Allowance(ctx, req.Token, wallet, req.Spender)
			if err != nil {
				return nil, fmt.Errorf("check %s: %w", req.Name, err)
			}
			out[i].Satisfied = allowance.Cmp(allowanceFloor) >= 0
		case domain.StandardERC1155:
			approved, err := c.chain.IsApprovedForAll(ctx, req.Token, wallet, req.Spender)
			if err != nil {
				return nil, fmt.Errorf("check %s: %w", req.Name, err)
			}
			out[i].Satisfied = approved
		default:
			return nil, fmt.Errorf("check %s: unknown token standard %q", req.Name, req.Standard)
		}
	}
	return out, nil
}

// buildApprovalCall encodes the grant for one unsatisfied requirement:
// approve-max-allowance for ERC20 spenders, set-operator-true for ERC1155
// operators.
func buildApprovalCall(req domain.ApprovalRequirement) (domain.CallDescriptor, error) {
	var data []byte
	var err error
	switch req.Standard {
	case domain.StandardERC20:
		data, err = evm.PackApprove(req.Spender, math.MaxBig256)
	case domain.StandardERC1155:
		data, err = evm.PackSetApprovalForAll(req.Spender, true)
	default:
		return domain.CallDescriptor{}, fmt.Errorf("unknown token standard %q", req.Standard)
	}
	if err != nil {
		return domain.CallDescriptor{}, fmt.Errorf("encode %s: %w", req.Name, err)
	}
	return domain.CallDescriptor{
		To:        req.Token,
		Value:     new(big.Int),
		Data:      data,
		Operation: domain.OperationCall,
	}, nil
}

// ensureApprovedLocked grants all unsatisfied requirements in one batched
// transaction. The caller holds the wallet lock.
func (c *Client) ensureApprovedLocked(ctx context.Context) error {
	requirements, err := c.checkApprovals(ctx)
	if err != nil {
		return &domain.StageError{Stage: domain.StageChecking, Err: err}
	}

	var pending []domain.ApprovalRequirement
	for _, req := range requirements {
		if !req.Satisfied {
			pending = append(pending, req)
		}
	}
	if len(pending) == 0 {
		c.log.Debug("all approvals satisfied, nothing to do")
		return nil
	}

	// Approvals execute inside the wallet, so the wallet must exist first.
	if err := c.ensureDeployedLocked(ctx); err != nil {
		return err
	}

	calls := make([]domain.CallDescriptor, len(pending))
	for i, req := range pending {
		call, err := buildApprovalCall(req)
		if err != nil {
			return &domain.StageError{Stage: domain.StageSigning, Err: err}
		}
		calls[i] = call
	}

	batched, err := BatchCalls(c.cfg.Multisend, calls)
	if err != nil {
		return &domain.StageError{Stage: domain.StageSigning, Err: err}
	}

	txID, err := c.submitWalletTransaction(ctx, batched, domain.SubmissionApprovals)
	if err != nil {
		return err
	}
	for _, req := range pending {
		metrics.ApprovalsGranted.WithLabelValues(req.Name).Inc()
	}

	// POLLING
	record, pollErr := c.poller.Wait(ctx, txID, c.relay.GetTransaction)
	c.journalState(ctx, txID, record.State)
	if pollErr != nil && !errors.Is(pollErr, domain.ErrPollTimeout) {
		return &domain.StageError{Stage: domain.StagePolling, TransactionID: txID, Err: pollErr}
	}

	// VERIFYING: confirm with the read-only check rather than trusting the
	// relay's report. On a poll timeout this is also what disambiguates.
	verified, err := c.checkApprovals(ctx)
	if err != nil {
		return &domain.StageError{Stage: domain.StageVerifying, TransactionID: txID, Err: err}
	}
	for _, req := range verified {
		if !req.Satisfied {
			cause := pollErr
			if cause == nil {
				cause = fmt.Errorf("requirement %s still unsatisfied after relay success", req.Name)
			}
			return &domain.StageError{Stage: domain.StageVerifying, TransactionID: txID, Err: cause}
		}
	}

	c.log.Info("approvals granted", "count", len(pending), "tx", txID)
	return nil
}

// submitWalletTransaction fetches a fresh nonce, signs the wallet
// transaction and submits it. On a stale-nonce rejection the whole signed
// struct is rebuilt from a re-fetched nonce; the nonce participates in the
// signed hash, so re-signing only the nonce field is never enough.
func (c *Client) submitWalletTransaction(ctx context.Context, call domain.CallDescriptor, kind domain.SubmissionKind) (string, error) {
	const maxNonceRebuilds = 2

	var lastErr error
	for attempt := 0; attempt < maxNonceRebuilds; attempt++ {
		nonceStr, nonce, err := c.nonces.Next(ctx, c.identity.Address)
		if err != nil {
			return "", &domain.StageError{Stage: domain.StageSubmitting, Err: fmt.Errorf("fetch nonce: %w", err)}
		}

		tx := domain.NewWalletTransaction(call, nonce)
		digest, err := WalletTransactionDigest(c.cfg.ChainID, c.identity.Address, tx)
		if err != nil {
			return "", &domain.StageError{Stage: domain.StageSigning, Err: err}
		}
		sig, err := c.signer.SignHash(ctx, digest)
		if err != nil {
			return "", &domain.StageError{Stage: domain.StageSigning, Err: fmt.Errorf("%w: %v", domain.ErrSigningDeclined, err)}
		}
		packed, err := PackSignature(sig)
		if err != nil {
			return "", &domain.StageError{Stage: domain.StageSigning, Err: err}
		}

		txID, err := c.relay.Execute(ctx, relay.ExecuteRequest{
			From:        c.identity.Owner.Hex(),
			To:          tx.To.Hex(),
			ProxyWallet: c.identity.Address.Hex(),
			Data:        hexutil.Encode(tx.Data),
			Nonce:       nonceStr,
			Signature:   hexutil.Encode(packed),
			SignatureParams: relay.SignatureParams{
				GasPrice:       "0",
				Operation:      fmt.Sprintf("%d", tx.Operation),
				SafeTxnGas:     "0",
				BaseGas:        "0",
				GasToken:       tx.GasToken.Hex(),
				RefundReceiver: tx.RefundReceiver.Hex(),
			},
			Metadata: metadataLabel(kind),
		})
		if err == nil {
			c.journalRecord(ctx, domain.SubmissionRecord{
				TransactionID: txID,
				Wallet:        c.identity.Address.Hex(),
				Kind:          kind,
				Nonce:         nonceStr,
				State:         domain.StateNew,
			})
			return txID, nil
		}

		lastErr = err
		if !errors.Is(err, domain.ErrStaleNonce) {
			return "", &domain.StageError{Stage: domain.StageSubmitting, Err: err}
		}
		c.log.Warn("nonce already consumed, rebuilding transaction", "nonce", nonceStr)
	}

	return "", &domain.StageError{Stage: domain.StageSubmitting, Err: lastErr}
}
