// internal/workers/decision/build-contract-chain/models.go
package buildcontractchain

import "dealsense/internal/decision/chain"

type Input struct {
	Message           string      `json:"message"`
	Intent            string      `json:"intent"`
	Scope             chain.Scope `json:"scope,omitempty"`
	ProposedContracts []string    `json:"proposedContracts,omitempty"`
}

type Output struct {
	ContractChain chain.ContractChain `json:"contractChain"`
}
