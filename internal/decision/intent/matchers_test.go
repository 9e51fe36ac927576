package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsense/internal/entities"
)

func testSnapshot() *entities.Snapshot {
	return entities.NewSnapshot([]entities.Company{
		{ID: "c-1", Name: "Acme"},
		{ID: "c-2", Name: "Globex Corporation"},
	})
}

func TestRefusalMatcher(t *testing.T) {
	tests := []struct {
		name    string
		message string
		match   bool
	}{
		{"weather", "What's the weather in Berlin today?", true},
		{"stock price", "what is the stock price of AAPL", true},
		{"joke", "tell me a joke", true},
		{"personal data", "what is John's phone number", true},
		{"clock", "what time is it", true},
		{"sales question passes", "What did the customer say about pricing?", false},
	}

	m := refusalMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Try(NewMatchInput(tt.message, nil))
			if !tt.match {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, IntentRefuse, result.Intent)
			assert.Equal(t, 1.0, result.Confidence)
			assert.Equal(t, MethodPattern, result.DetectionMethod)
		})
	}
}

func TestGreetingMatcher(t *testing.T) {
	m := greetingMatcher{}

	for _, msg := range []string{"hi", "Hello!", "  thanks ", "Good morning"} {
		result := m.Try(NewMatchInput(msg, nil))
		require.NotNil(t, result, "expected greeting match for %q", msg)
		assert.Equal(t, IntentGeneralHelp, result.Intent)
	}

	assert.Nil(t, m.Try(NewMatchInput("hi, what did Acme say?", nil)))
}

func TestMultiIntentMatcher(t *testing.T) {
	m := multiIntentMatcher{}

	result := m.Try(NewMatchInput("Summarize the Acme call and then draft a follow-up email", nil))
	require.NotNil(t, result)
	assert.Equal(t, IntentClarify, result.Intent)
	assert.True(t, result.NeedsSplit)
	require.Len(t, result.SplitOptions, 2)
	assert.Equal(t, "Summarize the Acme call", result.SplitOptions[0])
	assert.Equal(t, "draft a follow-up email", result.SplitOptions[1])

	// Leading whitespace must not skew the split points.
	result = m.Try(NewMatchInput("   summarize the call and then draft the email", nil))
	require.NotNil(t, result)
	require.Len(t, result.SplitOptions, 2)
	assert.Equal(t, "summarize the call", result.SplitOptions[0])
	assert.Equal(t, "draft the email", result.SplitOptions[1])

	// Characters whose lowercase form is byte-longer must not skew them
	// either: the split offsets have to come from the raw message.
	result = m.Try(NewMatchInput("Ⱥcme recap first and then draft the follow-up email", nil))
	require.NotNil(t, result)
	require.Len(t, result.SplitOptions, 2)
	assert.Equal(t, "Ⱥcme recap first", result.SplitOptions[0])
	assert.Equal(t, "draft the follow-up email", result.SplitOptions[1])

	// Uppercased separators still split.
	result = m.Try(NewMatchInput("Summarize the call AND THEN draft the email", nil))
	require.NotNil(t, result)
	require.Len(t, result.SplitOptions, 2)
	assert.Equal(t, "Summarize the call", result.SplitOptions[0])

	// A compound verb is not two requests.
	assert.Nil(t, m.Try(NewMatchInput("rinse and then repeat", nil)))
	assert.Nil(t, m.Try(NewMatchInput("summarize the last meeting", nil)))
}

func TestEntityMatcher(t *testing.T) {
	m := entityMatcher{}
	snap := testSnapshot()

	t.Run("known company yields single meeting", func(t *testing.T) {
		result := m.Try(NewMatchInput("What did Acme say about pricing?", snap))
		require.NotNil(t, result)
		assert.Equal(t, IntentSingleMeeting, result.Intent)
		assert.Equal(t, MethodEntity, result.DetectionMethod)
		assert.Equal(t, "c-1", result.Metadata.CompanyID)
		assert.Contains(t, result.Metadata.MatchedSignals, "company:Acme")
	})

	t.Run("aggregate scope defers to keyword tier", func(t *testing.T) {
		assert.Nil(t, m.Try(NewMatchInput("Compare concerns across our Acme calls", snap)))
	})

	t.Run("slack marker defers to keyword tier", func(t *testing.T) {
		assert.Nil(t, m.Try(NewMatchInput("find the Acme thread in slack", snap)))
	})

	t.Run("nil snapshot declines", func(t *testing.T) {
		assert.Nil(t, m.Try(NewMatchInput("What did Acme say?", nil)))
	})
}

func TestEntityConfidenceBuckets(t *testing.T) {
	assert.Equal(t, 0.95, entityConfidence(0.6))
	assert.Equal(t, 0.85, entityConfidence(0.3))
	assert.Equal(t, 0.75, entityConfidence(0.1))
}

func TestKeywordMatcher(t *testing.T) {
	tests := []struct {
		name    string
		message string
		intent  Intent
	}{
		{"slack channel", "search #sales-wins for the pricing thread", IntentSlackSearch},
		{"slack word", "look for that discussion in slack", IntentSlackSearch},
		{"last n meetings", "what were the objections in the last 5 meetings", IntentMultiMeeting},
		{"recent calls", "summarize trends from recent calls", IntentMultiMeeting},
		{"compare", "compare the concerns raised by both accounts", IntentMultiMeeting},
		{"single meeting noun", "what were the action items from the meeting", IntentSingleMeeting},
		{"product our", "how does our pricing model handle overages", IntentProductKnowledge},
		{"research", "research recent funding news about Initech", IntentExternalResearch},
		{"help", "what can you do", IntentGeneralHelp},
	}

	m := keywordMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Try(NewMatchInput(tt.message, nil))
			require.NotNil(t, result)
			assert.Equal(t, tt.intent, result.Intent)
			assert.Equal(t, MethodPattern, result.DetectionMethod)
		})
	}

	t.Run("no signals declines", func(t *testing.T) {
		assert.Nil(t, m.Try(NewMatchInput("hmm interesting", nil)))
	})

	t.Run("hour and colour are not our-phrasing", func(t *testing.T) {
		assert.Nil(t, m.Try(NewMatchInput("what did the prospect decide an hour ago", nil)))
		assert.Nil(t, m.Try(NewMatchInput("what colour scheme does the deck use", nil)))
	})

	t.Run("slack outranks aggregate", func(t *testing.T) {
		result := m.Try(NewMatchInput("search slack across all our recent calls", nil))
		require.NotNil(t, result)
		assert.Equal(t, IntentSlackSearch, result.Intent)
	})

	t.Run("aggregate outranks our-phrasing", func(t *testing.T) {
		result := m.Try(NewMatchInput("what came up across our recent calls", nil))
		require.NotNil(t, result)
		assert.Equal(t, IntentMultiMeeting, result.Intent)
	})
}

func TestCollectSignals(t *testing.T) {
	assert.Contains(t, CollectSignals("how does our pricing work"), "keyword:our")
	assert.NotContains(t, CollectSignals("what happened an hour ago"), "keyword:our")
	assert.Contains(t, CollectSignals("search slack for the thread"), "keyword:slack")
}

func TestShouldReuseContext(t *testing.T) {
	prior := &ThreadContext{PriorCompanyID: "c-1", PriorCompanyName: "Acme", PriorMeetingID: "m-1"}
	snap := testSnapshot()

	tests := []struct {
		name    string
		prior   *ThreadContext
		message string
		want    bool
	}{
		{"follow-up question reuses", prior, "what about next steps?", true},
		{"different known company breaks reuse", prior, "what did Globex Corporation say?", false},
		{"another meeting breaks reuse", prior, "show me another meeting with them", false},
		{"explicit date range breaks reuse", prior, "what happened last quarter", false},
		{"between range breaks reuse", prior, "meetings between March and May", false},
		{"nil prior never reuses", nil, "what about next steps?", false},
		{"empty prior never reuses", &ThreadContext{}, "what about next steps?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReuseContext(tt.prior, tt.message, snap))
		})
	}
}
