package wallet

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/marketdesk/relay/internal/core/domain"
)

// ExchangeContracts names the fixed contracts an exchange deployment needs
// approvals against.
type ExchangeContracts struct {
	Collateral        common.Address
	ConditionalTokens common.Address
	Exchange          common.Address
	NegRiskExchange   common.Address
	NegRiskAdapter    common.Address
}

// StandardRequirements builds the statically-known approval list: one
// collateral allowance and one outcome-token operator grant per settlement
// contract.
func StandardRequirements(c ExchangeContracts) []domain.ApprovalRequirement {
	spenders := []struct {
		name string
		addr common.Address
	}{
		{"exchange", c.Exchange},
		{"neg-risk-exchange", c.NegRiskExchange},
		{"neg-risk-adapter", c.NegRiskAdapter},
	}

	var reqs []domain.ApprovalRequirement
	for _, s := range spenders {
		reqs = append(reqs, domain.ApprovalRequirement{
			Name:     "collateral/" + s.name,
			Standard: domain.StandardERC20,
			Token:    c.Collateral,
			Spender:  s.addr,
		})
	}
	for _, s := range spenders {
		reqs = append(reqs, domain.ApprovalRequirement{
			Name:     "conditional/" + s.name,
			Standard: domain.StandardERC1155,
			Token:    c.ConditionalTokens,
			Spender:  s.addr,
		})
	}
	return reqs
}
