// internal/workers/decision/decide-intent/models.go
package decideintent

import (
	"dealsense/internal/decision/chain"
	"dealsense/internal/decision/intent"
	"dealsense/internal/decision/layers"
)

type Input struct {
	Message       string                `json:"message"`
	ThreadContext *intent.ThreadContext `json:"threadContext,omitempty"`
	Flags         layers.Flags          `json:"flags,omitempty"`
	Scope         chain.Scope           `json:"scope,omitempty"`
}

type Output struct {
	Classification intent.IntentClassification `json:"classification"`
	ContextLayers  layers.ContextLayers        `json:"contextLayers"`
	ContractChain  chain.ContractChain         `json:"contractChain"`
}
