package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsense/internal/common/logger"
)

type mockInterpreter struct {
	interpretCalls int
	validateCalls  int
	interpretFn    func(message string) (*Interpretation, error)
	validateFn     func(intent Intent) (*Validation, error)
}

func (m *mockInterpreter) Interpret(_ context.Context, message string, _ *ThreadContext) (*Interpretation, error) {
	m.interpretCalls++
	if m.interpretFn == nil {
		return nil, errors.New("not configured")
	}
	return m.interpretFn(message)
}

func (m *mockInterpreter) ValidateIntent(_ context.Context, intent Intent, _ string, _ []string) (*Validation, error) {
	m.validateCalls++
	if m.validateFn == nil {
		return nil, errors.New("not configured")
	}
	return m.validateFn(intent)
}

func newTestClassifier(interp Interpreter) *Classifier {
	return NewClassifier(interp, DefaultLowConfidenceThreshold, logger.NewTestLogger())
}

func TestClassifyDeterministicTiersSkipLLM(t *testing.T) {
	interp := &mockInterpreter{}
	c := newTestClassifier(interp)
	snap := testSnapshot()

	tests := []struct {
		name    string
		message string
		intent  Intent
		method  DetectionMethod
	}{
		{"refusal", "what's the weather like", IntentRefuse, MethodPattern},
		{"greeting", "hello", IntentGeneralHelp, MethodPattern},
		{"multi intent", "summarize the call and then draft an email", IntentClarify, MethodPattern},
		{"entity", "What did Acme say about pricing?", IntentSingleMeeting, MethodEntity},
		{"keyword", "what were the trends across recent calls", IntentMultiMeeting, MethodPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(context.Background(), tt.message, nil, snap)
			assert.Equal(t, tt.intent, result.Intent)
			assert.Equal(t, tt.method, result.DetectionMethod)
			assert.NotEmpty(t, result.Metadata.DecisionID)
		})
	}

	// Every case above resolved without touching the network.
	assert.Zero(t, interp.interpretCalls)
	assert.Zero(t, interp.validateCalls)
}

func TestClassifyMultiIntentSplitOptions(t *testing.T) {
	c := newTestClassifier(nil)

	result := c.Classify(context.Background(), "pull the key decisions and also check our roadmap coverage", nil, nil)
	assert.Equal(t, IntentClarify, result.Intent)
	assert.True(t, result.NeedsSplit)
	assert.GreaterOrEqual(t, len(result.SplitOptions), 2)
}

func TestClassifyLLMTier(t *testing.T) {
	t.Run("confident interpretation wins", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) {
				return &Interpretation{
					Intent:            string(IntentExternalResearch),
					Confidence:        0.8,
					Reason:            "asks about an outside organization",
					ProposedContracts: []string{"EXTERNAL_RESEARCH"},
				}, nil
			},
		}
		c := newTestClassifier(interp)

		result := c.Classify(context.Background(), "anything notable about Initech lately?", nil, nil)
		assert.Equal(t, IntentExternalResearch, result.Intent)
		assert.Equal(t, MethodLLM, result.DetectionMethod)
		assert.Equal(t, []string{"EXTERNAL_RESEARCH"}, result.Metadata.ProposedContracts)
		assert.Equal(t, 1, interp.interpretCalls)
		assert.Zero(t, interp.validateCalls, "confident answers skip validation")
	})

	t.Run("ambiguous interpretation clarifies", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) {
				return &Interpretation{IsAmbiguous: true, Confidence: 0.4, Reason: "could be several things"}, nil
			},
		}
		c := newTestClassifier(interp)

		result := c.Classify(context.Background(), "tell me about the thing", nil, nil)
		assert.Equal(t, IntentClarify, result.Intent)
	})

	t.Run("low confidence triggers validation", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) {
				return &Interpretation{Intent: string(IntentGeneralHelp), Confidence: 0.4}, nil
			},
			validateFn: func(Intent) (*Validation, error) {
				return &Validation{Confirmed: false, SuggestedIntent: string(IntentProductKnowledge)}, nil
			},
		}
		c := newTestClassifier(interp)

		result := c.Classify(context.Background(), "tell me about the overage thing", nil, nil)
		assert.Equal(t, IntentProductKnowledge, result.Intent)
		assert.Equal(t, 1, interp.validateCalls)
	})

	t.Run("validation error keeps original guess", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) {
				return &Interpretation{Intent: string(IntentGeneralHelp), Confidence: 0.4}, nil
			},
			validateFn: func(Intent) (*Validation, error) {
				return nil, errors.New("timeout")
			},
		}
		c := newTestClassifier(interp)

		result := c.Classify(context.Background(), "tell me about the overage thing", nil, nil)
		assert.Equal(t, IntentGeneralHelp, result.Intent)
		assert.Equal(t, 0.4, result.Confidence)
	})
}

func TestClassifySafeDefault(t *testing.T) {
	t.Run("interpreter error yields general help", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) { return nil, errors.New("llm down") },
		}
		c := newTestClassifier(interp)

		result := c.Classify(context.Background(), "tell me about the thing", nil, nil)
		assert.Equal(t, IntentGeneralHelp, result.Intent)
		assert.Equal(t, MethodDefault, result.DetectionMethod)
		assert.LessOrEqual(t, result.Confidence, 0.5)
	})

	t.Run("no interpreter yields general help", func(t *testing.T) {
		c := newTestClassifier(nil)
		result := c.Classify(context.Background(), "tell me about the thing", nil, nil)
		assert.Equal(t, IntentGeneralHelp, result.Intent)
	})

	t.Run("pending clarification stays in clarify", func(t *testing.T) {
		c := newTestClassifier(nil)
		tc := &ThreadContext{PriorAwaitingClarification: true}
		result := c.Classify(context.Background(), "tell me about the thing", tc, nil)
		assert.Equal(t, IntentClarify, result.Intent)
	})

	t.Run("unknown llm intent yields safe default", func(t *testing.T) {
		interp := &mockInterpreter{
			interpretFn: func(string) (*Interpretation, error) {
				return &Interpretation{Intent: "WORLD_DOMINATION", Confidence: 0.9}, nil
			},
		}
		c := newTestClassifier(interp)
		result := c.Classify(context.Background(), "tell me about the thing", nil, nil)
		assert.Equal(t, IntentGeneralHelp, result.Intent)
	})
}

func TestClassifyThreadCarryover(t *testing.T) {
	snap := testSnapshot()
	tc := &ThreadContext{PriorCompanyID: "c-1", PriorCompanyName: "Acme", PriorMeetingID: "m-1"}
	c := newTestClassifier(nil)

	t.Run("follow-up inherits prior company", func(t *testing.T) {
		result := c.Classify(context.Background(), "what were the action items from the meeting", tc, snap)
		assert.Equal(t, IntentSingleMeeting, result.Intent)
		assert.Equal(t, "c-1", result.Metadata.CompanyID)
		assert.Equal(t, "Acme", result.Metadata.CompanyName)
	})

	t.Run("different company overrides carryover", func(t *testing.T) {
		result := c.Classify(context.Background(), "what did Globex Corporation say in the call", tc, snap)
		assert.Equal(t, "c-2", result.Metadata.CompanyID)
	})
}

func TestParse(t *testing.T) {
	for _, valid := range []string{"single_meeting", "multi_meeting", "product_knowledge",
		"external_research", "slack_search", "general_help", "refuse", "clarify"} {
		parsed, ok := Parse(valid)
		require.True(t, ok, valid)
		assert.Equal(t, valid, string(parsed))
	}

	_, ok := Parse("SOMETHING_ELSE")
	assert.False(t, ok)
}
