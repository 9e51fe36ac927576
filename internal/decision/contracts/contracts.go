// Package contracts defines the answer contracts the decision layer can plan
// and the static constraints table that governs how each one may execute.
// The table is the single source of truth for authority level, evidence and
// citation obligations, and output shape; no other component hardcodes these.
package contracts

import "sort"

// AnswerContract identifies a fixed, task-shaped unit of work. Identity is
// never parameterized by topic or entity.
type AnswerContract string

const (
	// Extraction contracts: lift verbatim facts out of meeting transcripts.
	ExtractiveFact        AnswerContract = "EXTRACTIVE_FACT"
	NextSteps             AnswerContract = "NEXT_STEPS"
	CustomerQuestions     AnswerContract = "CUSTOMER_QUESTIONS"
	KeyDecisions          AnswerContract = "KEY_DECISIONS"
	PricingDiscussion     AnswerContract = "PRICING_DISCUSSION"
	CompetitorMentions    AnswerContract = "COMPETITOR_MENTIONS"
	CrossMeetingQuestions AnswerContract = "CROSS_MEETING_QUESTIONS"
	SlackSearchResults    AnswerContract = "SLACK_SEARCH_RESULTS"

	// Analysis contracts: grounded interpretation over extracted material.
	MeetingSummary     AnswerContract = "MEETING_SUMMARY"
	ObjectionAnalysis  AnswerContract = "OBJECTION_ANALYSIS"
	SentimentOverview  AnswerContract = "SENTIMENT_OVERVIEW"
	AggregativeList    AnswerContract = "AGGREGATIVE_LIST"
	PatternAnalysis    AnswerContract = "PATTERN_ANALYSIS"
	Comparison         AnswerContract = "COMPARISON"
	Timeline           AnswerContract = "TIMELINE"
	StakeholderMap     AnswerContract = "STAKEHOLDER_MAP"
	RiskFlags          AnswerContract = "RISK_FLAGS"
	SlackThreadSummary AnswerContract = "SLACK_THREAD_SUMMARY"
	ExternalResearch   AnswerContract = "EXTERNAL_RESEARCH"
	FeatureGapAnalysis AnswerContract = "FEATURE_GAP_ANALYSIS"

	// Product-knowledge contracts backed by the product SSOT.
	ProductExplanation AnswerContract = "PRODUCT_EXPLANATION"
	FAQAnswer          AnswerContract = "FAQ_ANSWER"

	// Drafting contracts: produce user-ready prose from earlier phases.
	FollowupEmailDraft AnswerContract = "FOLLOWUP_EMAIL_DRAFT"
	MeetingPrepBrief   AnswerContract = "MEETING_PREP_BRIEF"
	GeneralResponse    AnswerContract = "GENERAL_RESPONSE"

	// Terminal contracts. Never chained after anything else.
	Clarify AnswerContract = "CLARIFY"
	Refuse  AnswerContract = "REFUSE"
)

// SSOTMode is the authority level of a contract's claims.
type SSOTMode string

const (
	SSOTNone          SSOTMode = "none"          // extractive, claims nothing beyond the transcript
	SSOTDescriptive   SSOTMode = "descriptive"   // grounded, non-authoritative
	SSOTAuthoritative SSOTMode = "authoritative" // falsifiable, requires a trusted source
)

// Phase orders contracts within a chain.
type Phase string

const (
	PhaseExtraction Phase = "extraction"
	PhaseAnalysis   Phase = "analysis"
	PhaseDrafting   Phase = "drafting"
)

// Rank returns the sort rank of a phase; extraction runs first.
func (p Phase) Rank() int {
	switch p {
	case PhaseExtraction:
		return 1
	case PhaseAnalysis:
		return 2
	case PhaseDrafting:
		return 3
	}
	return 2
}

// ResponseFormat is the output shape the generation layer must honor.
type ResponseFormat string

const (
	FormatText       ResponseFormat = "text"
	FormatList       ResponseFormat = "list"
	FormatStructured ResponseFormat = "structured"
)

// EmptyResultBehavior dictates what the generation layer does when a
// contract produces no content.
type EmptyResultBehavior string

const (
	EmptyReturn  EmptyResultBehavior = "return_empty"
	EmptyClarify EmptyResultBehavior = "clarify"
	EmptyRefuse  EmptyResultBehavior = "refuse"
)

// Constraints is the immutable per-contract row.
type Constraints struct {
	SSOTMode             SSOTMode            `json:"ssotMode"`
	RequiresEvidence     bool                `json:"requiresEvidence"`
	RequiresCitation     bool                `json:"requiresCitation"`
	ResponseFormat       ResponseFormat      `json:"responseFormat"`
	EmptyResultBehavior  EmptyResultBehavior `json:"emptyResultBehavior"`
	MinEvidenceThreshold int                 `json:"minEvidenceThreshold,omitempty"` // 0 means unset
	Phase                Phase               `json:"phase"`
}

// constraintsTable holds exactly one row per contract. Exhaustiveness is
// enforced by test, not by a runtime default.
var constraintsTable = map[AnswerContract]Constraints{
	ExtractiveFact:        {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	NextSteps:             {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	CustomerQuestions:     {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	KeyDecisions:          {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	PricingDiscussion:     {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatText, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	CompetitorMentions:    {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},
	CrossMeetingQuestions: {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 2, Phase: PhaseExtraction},
	SlackSearchResults:    {SSOTMode: SSOTNone, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseExtraction},

	MeetingSummary:     {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	ObjectionAnalysis:  {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	SentimentOverview:  {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	AggregativeList:    {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 2, Phase: PhaseAnalysis},
	PatternAnalysis:    {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 3, Phase: PhaseAnalysis},
	Comparison:         {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 2, Phase: PhaseAnalysis},
	Timeline:           {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 2, Phase: PhaseAnalysis},
	StakeholderMap:     {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: false, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	RiskFlags:          {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatList, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	SlackThreadSummary: {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatText, EmptyResultBehavior: EmptyReturn, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	ExternalResearch:   {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},
	FeatureGapAnalysis: {SSOTMode: SSOTAuthoritative, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},

	// ProductExplanation is authoritative without an evidence obligation and
	// is allowed to chain after extraction contracts in some call paths.
	// That contradicts the none+authoritative mixing rule; the chain
	// validator carries the exemption explicitly. See DESIGN.md.
	ProductExplanation: {SSOTMode: SSOTAuthoritative, RequiresEvidence: false, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, Phase: PhaseAnalysis},
	FAQAnswer:          {SSOTMode: SSOTAuthoritative, RequiresEvidence: true, RequiresCitation: true, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseAnalysis},

	FollowupEmailDraft: {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseDrafting},
	MeetingPrepBrief:   {SSOTMode: SSOTDescriptive, RequiresEvidence: true, RequiresCitation: false, ResponseFormat: FormatStructured, EmptyResultBehavior: EmptyClarify, MinEvidenceThreshold: 1, Phase: PhaseDrafting},
	GeneralResponse:    {SSOTMode: SSOTNone, RequiresEvidence: false, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyReturn, Phase: PhaseDrafting},

	Clarify: {SSOTMode: SSOTNone, RequiresEvidence: false, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyClarify, Phase: PhaseDrafting},
	Refuse:  {SSOTMode: SSOTNone, RequiresEvidence: false, RequiresCitation: false, ResponseFormat: FormatText, EmptyResultBehavior: EmptyRefuse, Phase: PhaseDrafting},
}

// Get returns the constraints row for a contract.
func Get(c AnswerContract) (Constraints, bool) {
	row, ok := constraintsTable[c]
	return row, ok
}

// MustGet returns the constraints row and panics on an unknown contract.
// Unknown contracts are a programming error: the table is exhaustive.
func MustGet(c AnswerContract) Constraints {
	row, ok := constraintsTable[c]
	if !ok {
		panic("contracts: no constraints row for " + string(c))
	}
	return row
}

// IsKnown reports whether c is a defined answer contract.
func IsKnown(c AnswerContract) bool {
	_, ok := constraintsTable[c]
	return ok
}

// IsTerminal reports whether c ends a conversation turn on its own.
// Terminal contracts are excluded from chain continuation.
func IsTerminal(c AnswerContract) bool {
	return c == Clarify || c == Refuse
}

// All returns every defined contract in a stable lexical order.
func All() []AnswerContract {
	out := make([]AnswerContract, 0, len(constraintsTable))
	for c := range constraintsTable {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
