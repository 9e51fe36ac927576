package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealsense/internal/decision/intent"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		intent intent.Intent
		flags  Flags
		want   ContextLayers
	}{
		{
			name:   "single meeting",
			intent: intent.IntentSingleMeeting,
			want:   ContextLayers{ProductIdentity: true, SingleMeeting: true},
		},
		{
			name:   "multi meeting",
			intent: intent.IntentMultiMeeting,
			want:   ContextLayers{ProductIdentity: true, MultiMeeting: true},
		},
		{
			name:   "slack search",
			intent: intent.IntentSlackSearch,
			want:   ContextLayers{ProductIdentity: true, SlackSearch: true},
		},
		{
			name:   "product knowledge opens ssot",
			intent: intent.IntentProductKnowledge,
			want:   ContextLayers{ProductIdentity: true, ProductSSOT: true},
		},
		{
			name:   "flag opens ssot on meeting intent",
			intent: intent.IntentSingleMeeting,
			flags:  Flags{RequiresProductKnowledge: true},
			want:   ContextLayers{ProductIdentity: true, ProductSSOT: true, SingleMeeting: true},
		},
		{
			name:   "refuse gets identity only",
			intent: intent.IntentRefuse,
			want:   ContextLayers{ProductIdentity: true},
		},
		{
			name:   "clarify gets identity only",
			intent: intent.IntentClarify,
			want:   ContextLayers{ProductIdentity: true},
		},
		{
			name:   "external research gets identity only",
			intent: intent.IntentExternalResearch,
			want:   ContextLayers{ProductIdentity: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.intent, tt.flags))
		})
	}
}

func TestResolveMeetingLayersMutuallyExclusive(t *testing.T) {
	for _, it := range []intent.Intent{
		intent.IntentSingleMeeting, intent.IntentMultiMeeting, intent.IntentProductKnowledge,
		intent.IntentExternalResearch, intent.IntentSlackSearch, intent.IntentGeneralHelp,
		intent.IntentRefuse, intent.IntentClarify,
	} {
		cl := Resolve(it, Flags{})
		active := 0
		for _, on := range []bool{cl.SingleMeeting, cl.MultiMeeting, cl.SlackSearch} {
			if on {
				active++
			}
		}
		assert.LessOrEqual(t, active, 1, "intent %s activates more than one scope layer", it)
		assert.True(t, cl.ProductIdentity)
	}
}

func TestResolveIsPure(t *testing.T) {
	a := Resolve(intent.IntentMultiMeeting, Flags{RequiresSemantic: true})
	b := Resolve(intent.IntentMultiMeeting, Flags{RequiresSemantic: true})
	assert.Equal(t, a, b)
}
