package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allContracts is the authoritative list used to prove the constraints table
// covers every variant. A new contract added without a row fails here.
var allContracts = []AnswerContract{
	ExtractiveFact,
	NextSteps,
	CustomerQuestions,
	KeyDecisions,
	PricingDiscussion,
	CompetitorMentions,
	CrossMeetingQuestions,
	SlackSearchResults,
	MeetingSummary,
	ObjectionAnalysis,
	SentimentOverview,
	AggregativeList,
	PatternAnalysis,
	Comparison,
	Timeline,
	StakeholderMap,
	RiskFlags,
	SlackThreadSummary,
	ExternalResearch,
	FeatureGapAnalysis,
	ProductExplanation,
	FAQAnswer,
	FollowupEmailDraft,
	MeetingPrepBrief,
	GeneralResponse,
	Clarify,
	Refuse,
}

func TestConstraintsTable_Exhaustive(t *testing.T) {
	for _, c := range allContracts {
		row, ok := Get(c)
		require.True(t, ok, "missing constraints row for %s", c)
		assert.NotEmpty(t, row.SSOTMode, "%s has no ssot mode", c)
		assert.NotEmpty(t, row.Phase, "%s has no phase", c)
		assert.NotEmpty(t, row.ResponseFormat, "%s has no response format", c)
		assert.NotEmpty(t, row.EmptyResultBehavior, "%s has no empty-result behavior", c)
	}

	// And nothing extra: the table defines exactly the enum.
	assert.Equal(t, len(allContracts), len(All()), "constraints table has rows for undeclared contracts")
}

func TestConstraintsTable_TerminalContracts(t *testing.T) {
	clarify := MustGet(Clarify)
	assert.Equal(t, EmptyClarify, clarify.EmptyResultBehavior)

	refuse := MustGet(Refuse)
	assert.Equal(t, EmptyRefuse, refuse.EmptyResultBehavior)

	assert.True(t, IsTerminal(Clarify))
	assert.True(t, IsTerminal(Refuse))
	assert.False(t, IsTerminal(NextSteps))
}

func TestConstraintsTable_EvidenceThresholds(t *testing.T) {
	for _, c := range allContracts {
		row := MustGet(c)
		if row.RequiresEvidence {
			assert.GreaterOrEqual(t, row.MinEvidenceThreshold, 1,
				"%s requires evidence but has no minimum threshold", c)
		}
	}
}

func TestConstraintsTable_ProductExplanationException(t *testing.T) {
	// Documented exception: authoritative without an evidence obligation.
	row := MustGet(ProductExplanation)
	assert.Equal(t, SSOTAuthoritative, row.SSOTMode)
	assert.False(t, row.RequiresEvidence)
}

func TestPhaseRank_Ordering(t *testing.T) {
	assert.Less(t, PhaseExtraction.Rank(), PhaseAnalysis.Rank())
	assert.Less(t, PhaseAnalysis.Rank(), PhaseDrafting.Rank())
}

func TestMustGet_PanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { MustGet(AnswerContract("NOT_A_CONTRACT")) })
}
