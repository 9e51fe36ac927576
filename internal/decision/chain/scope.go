// Package chain plans the ordered contract list for a classified request.
// Building is deterministic and makes no network calls; the LLM-facing
// selection stages live with the engine, not here.
package chain

import "dealsense/internal/decision/contracts"

// ScopeType is the resolved data boundary a chain operates over.
type ScopeType string

const (
	ScopeSingleMeeting ScopeType = "single_meeting"
	ScopeMultiMeeting  ScopeType = "multi_meeting"
	ScopeNone          ScopeType = "none"
)

// Filters narrow a multi-meeting scope.
type Filters struct {
	Company   string `json:"company,omitempty"`
	Topic     string `json:"topic,omitempty"`
	TimeRange string `json:"timeRange,omitempty"`
}

// Scope is supplied by an external resolver and read-only here.
type Scope struct {
	Type       ScopeType `json:"type"`
	MeetingID  string    `json:"meetingId,omitempty"`
	MeetingIDs []string  `json:"meetingIds,omitempty"`
	CompanyID  string    `json:"companyId,omitempty"`
	Filters    Filters   `json:"filters,omitempty"`
	Coverage   string    `json:"coverage,omitempty"`
}

// SelectionMethod records which stage of the selection state machine
// produced the final chain. The stages are strictly ordered with no
// re-entry.
type SelectionMethod string

const (
	SelectionLLMProposed       SelectionMethod = "llm_proposed"
	SelectionKeywordBuilt      SelectionMethod = "keyword_built"
	SelectionLLMFallback       SelectionMethod = "llm_fallback"
	SelectionValidationFailure SelectionMethod = "validation_failure"
)

// ContractChain is built once per request and consumed immediately.
// Defaulted marks a chain whose intent matched no task rule, so the
// (intent, scope) default was planned instead; later selection stages use
// it to decide whether an LLM fallback is worth a call.
type ContractChain struct {
	Contracts       []contracts.AnswerContract `json:"contracts"`
	SelectionMethod SelectionMethod            `json:"selectionMethod"`
	PrimaryContract contracts.AnswerContract   `json:"primaryContract"`
	ClarifyReason   string                     `json:"clarifyReason,omitempty"`
	Defaulted       bool                       `json:"-"`
}

func newChain(method SelectionMethod, cs ...contracts.AnswerContract) ContractChain {
	return ContractChain{
		Contracts:       cs,
		SelectionMethod: method,
		PrimaryContract: cs[0],
	}
}
