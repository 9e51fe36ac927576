// Package layers resolves which context sources an answer pipeline may draw
// on for a classified request. Resolution is pure: same intent and flags,
// same layers.
package layers

import "dealsense/internal/decision/intent"

// Flags are capability hints supplied by the caller alongside the request.
// They widen the resolved layers but never change which meeting-scope layer
// is active.
type Flags struct {
	RequiresSemantic         bool `json:"requiresSemantic,omitempty"`
	RequiresProductKnowledge bool `json:"requiresProductKnowledge,omitempty"`
	RequiresStyleMatching    bool `json:"requiresStyleMatching,omitempty"`
}

// ContextLayers enumerates the sources available to downstream contracts.
// ProductIdentity is always on; the meeting-scope layers are mutually
// exclusive per intent.
type ContextLayers struct {
	ProductIdentity bool `json:"productIdentity"`
	ProductSSOT     bool `json:"productSsot"`
	SingleMeeting   bool `json:"singleMeeting"`
	MultiMeeting    bool `json:"multiMeeting"`
	SlackSearch     bool `json:"slackSearch"`
}

// Resolve maps an intent and caller flags to the active context layers.
func Resolve(it intent.Intent, flags Flags) ContextLayers {
	cl := ContextLayers{ProductIdentity: true}

	switch it {
	case intent.IntentSingleMeeting:
		cl.SingleMeeting = true
	case intent.IntentMultiMeeting:
		cl.MultiMeeting = true
	case intent.IntentSlackSearch:
		cl.SlackSearch = true
	case intent.IntentProductKnowledge:
		cl.ProductSSOT = true
	case intent.IntentExternalResearch, intent.IntentGeneralHelp,
		intent.IntentRefuse, intent.IntentClarify:
		// Identity only; these intents read no meeting or product store.
	}

	if flags.RequiresProductKnowledge {
		cl.ProductSSOT = true
	}
	return cl
}
