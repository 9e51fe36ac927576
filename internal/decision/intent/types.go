// Package intent classifies free-text user requests into a single top-level
// intent. Deterministic tiers run first and short-circuit; the LLM
// interpreter is a fallback, never the primary path.
package intent

import "context"

// Intent is the single top-level classification of a request.
type Intent string

const (
	IntentSingleMeeting    Intent = "single_meeting"
	IntentMultiMeeting     Intent = "multi_meeting"
	IntentProductKnowledge Intent = "product_knowledge"
	IntentExternalResearch Intent = "external_research"
	IntentSlackSearch      Intent = "slack_search"
	IntentGeneralHelp      Intent = "general_help"
	IntentRefuse           Intent = "refuse"
	IntentClarify          Intent = "clarify"
)

// Parse maps a wire string to an Intent; ok is false for unknown values.
func Parse(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentSingleMeeting, IntentMultiMeeting, IntentProductKnowledge,
		IntentExternalResearch, IntentSlackSearch, IntentGeneralHelp,
		IntentRefuse, IntentClarify:
		return Intent(s), true
	}
	return "", false
}

// DetectionMethod records which mechanism produced a classification.
type DetectionMethod string

const (
	MethodPattern DetectionMethod = "pattern"
	MethodEntity  DetectionMethod = "entity"
	MethodLLM     DetectionMethod = "llm_interpretation"
	MethodDefault DetectionMethod = "default"
)

// DecisionMetadata is the audit trail attached to every classification.
type DecisionMetadata struct {
	DecisionID        string            `json:"decisionId"`
	MatchedSignals    []string          `json:"matchedSignals"`
	CompanyID         string            `json:"companyId,omitempty"`
	CompanyName       string            `json:"companyName,omitempty"`
	ProposedContracts []string          `json:"proposedContracts,omitempty"`
	ExtractedEntities map[string]string `json:"extractedEntities,omitempty"`
}

// IntentClassification is the immutable result of classifying one message.
type IntentClassification struct {
	Intent          Intent           `json:"intent"`
	Confidence      float64          `json:"confidence"`
	DetectionMethod DetectionMethod  `json:"detectionMethod"`
	Reason          string           `json:"reason"`
	NeedsSplit      bool             `json:"needsSplit,omitempty"`
	SplitOptions    []string         `json:"splitOptions,omitempty"`
	Metadata        DecisionMetadata `json:"decisionMetadata"`
}

// ThreadContext carries the single resolved-entity carryover from the prior
// turn. Read-only; reuse is decided by ShouldReuseContext.
type ThreadContext struct {
	PriorCompanyID              string `json:"priorCompanyId,omitempty"`
	PriorCompanyName            string `json:"priorCompanyName,omitempty"`
	PriorMeetingID              string `json:"priorMeetingId,omitempty"`
	PriorAwaitingClarification  bool   `json:"priorAwaitingClarification,omitempty"`
	PriorProposedInterpretation string `json:"priorProposedInterpretation,omitempty"`
}

// Interpretation is the LLM interpreter's view of a message.
type Interpretation struct {
	Intent            string            `json:"intent"`
	ProposedContracts []string          `json:"proposedContracts"`
	ExtractedEntities map[string]string `json:"extractedEntities"`
	IsAmbiguous       bool              `json:"isAmbiguous"`
	Confidence        float64           `json:"confidence"`
	Reason            string            `json:"reason"`
}

// Validation is the LLM's verdict on a low-confidence classification.
type Validation struct {
	Confirmed       bool   `json:"confirmed"`
	SuggestedIntent string `json:"suggestedIntent,omitempty"`
}

// Interpreter is the LLM collaborator. Both calls are fallible and
// timeout-bounded; callers must degrade to a safe default on any error.
type Interpreter interface {
	Interpret(ctx context.Context, message string, tc *ThreadContext) (*Interpretation, error)
	ValidateIntent(ctx context.Context, intent Intent, reason string, signals []string) (*Validation, error)
}
