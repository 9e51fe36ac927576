package chain

import (
	"fmt"
	"sort"

	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/common/metrics"
	"dealsense/internal/decision/contracts"
	"dealsense/internal/decision/intent"
)

// maxChainLength is the first validation gate; a request planning this many
// independent tasks almost certainly packed several intents into one
// message.
const maxChainLength = 4

// Builder plans contract chains from keyword task rules. Deterministic; the
// same message, intent, and scope always yield a byte-identical chain.
type Builder struct {
	log logger.Logger
}

func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Builder{log: log}
}

// Build resolves message and scope into an ordered, validated chain.
// Validation failures collapse the whole chain to [CLARIFY] with a
// user-facing reason; Build never returns an empty chain.
func (b *Builder) Build(message string, it intent.Intent, scope Scope) ContractChain {
	switch it {
	case intent.IntentRefuse:
		return newChain(SelectionKeywordBuilt, contracts.Refuse)
	case intent.IntentClarify:
		return newChain(SelectionKeywordBuilt, contracts.Clarify)
	}

	rules := extractTasks(message, it)

	var resolved []contracts.AnswerContract
	for _, rule := range rules {
		resolved = append(resolved, resolveContract(rule, scope))
	}
	defaulted := len(resolved) == 0
	if defaulted {
		resolved = []contracts.AnswerContract{defaultContract(it, scope)}
	}

	SortByPhase(resolved)

	if reason := b.validate(resolved); reason != "" {
		chain := newChain(SelectionValidationFailure, contracts.Clarify)
		chain.ClarifyReason = reason
		return chain
	}

	chain := newChain(SelectionKeywordBuilt, resolved...)
	chain.Defaulted = defaulted
	return chain
}

// resolveContract applies the scope overrides in precedence order, then
// falls back to the rule's first candidate.
func resolveContract(rule taskRule, scope Scope) contracts.AnswerContract {
	if scope.Type == ScopeSingleMeeting && rule.singleVariant != "" {
		return rule.singleVariant
	}
	if scope.Type == ScopeMultiMeeting && rule.multiVariant != "" {
		return rule.multiVariant
	}
	if rule.name == "analyze_patterns" && scope.Type == ScopeMultiMeeting {
		// Topic-scoped listing is more precise than broad pattern
		// inference; direct comparison beats pattern-mining over few
		// points.
		if scope.Filters.Topic != "" {
			return contracts.AggregativeList
		}
		if n := len(scope.MeetingIDs); n > 0 && n <= 3 {
			return contracts.Comparison
		}
	}
	return rule.candidates[0]
}

// defaultContract is the pure (intent, scope)-keyed fallback when no task
// rule matched.
func defaultContract(it intent.Intent, scope Scope) contracts.AnswerContract {
	switch it {
	case intent.IntentSingleMeeting:
		return contracts.ExtractiveFact
	case intent.IntentMultiMeeting:
		if scope.Filters != (Filters{}) {
			return contracts.AggregativeList
		}
		return contracts.PatternAnalysis
	case intent.IntentProductKnowledge:
		return contracts.ProductExplanation
	case intent.IntentExternalResearch:
		return contracts.ExternalResearch
	case intent.IntentSlackSearch:
		return contracts.SlackSearchResults
	default:
		return contracts.GeneralResponse
	}
}

// SortByPhase stable-sorts contracts by phase rank; ties preserve the
// incoming order.
func SortByPhase(cs []contracts.AnswerContract) {
	sort.SliceStable(cs, func(i, j int) bool {
		return contracts.MustGet(cs[i]).Phase.Rank() < contracts.MustGet(cs[j]).Phase.Rank()
	})
}

// validate runs the post-sort invariants. A non-empty return is the
// user-facing clarify reason.
func (b *Builder) validate(cs []contracts.AnswerContract) string {
	if rule, reason := ViolatedInvariant(cs); rule != "" {
		metrics.ChainValidationFailures.WithLabelValues(rule).Inc()
		serr := cerrors.NewChainInvariantViolationError(rule, reason)
		b.log.Warn("contract chain failed validation", map[string]interface{}{
			"rule":  rule,
			"error": serr.Error(),
		})
		return reason
	}

	if MixesThroughProductExplanation(cs) {
		b.log.Warn("chain mixes extractive contracts with product explanation", map[string]interface{}{
			"contracts": cs,
		})
	}

	// Soft check. The sort above already ordered by phase, so a violation
	// here indicates a planner defect worth logging, not repairing.
	for i := 1; i < len(cs); i++ {
		if contracts.MustGet(cs[i-1]).Phase.Rank() > contracts.MustGet(cs[i]).Phase.Rank() {
			metrics.ChainValidationFailures.WithLabelValues("phase_order").Inc()
			b.log.Warn("chain phase order violated after sort", map[string]interface{}{
				"contracts": cs,
			})
			break
		}
	}
	return ""
}

// ViolatedInvariant reports the first always-true chain invariant cs
// breaks, no matter which selection stage produced the chain. rule is the
// short label, reason the user-facing clarify text; both empty means the
// chain holds.
func ViolatedInvariant(cs []contracts.AnswerContract) (rule, reason string) {
	if len(cs) >= maxChainLength {
		return "chain_length", fmt.Sprintf("your request maps to %d separate tasks; please ask one at a time", len(cs))
	}
	if r := authorityMixReason(cs); r != "" {
		return "authority_mix", r
	}
	return "", ""
}

func splitSSOTModes(cs []contracts.AnswerContract) (hasNone bool, authoritative []contracts.AnswerContract) {
	for _, c := range cs {
		switch contracts.MustGet(c).SSOTMode {
		case contracts.SSOTNone:
			hasNone = true
		case contracts.SSOTAuthoritative:
			authoritative = append(authoritative, c)
		}
	}
	return hasNone, authoritative
}

// authorityMixReason rejects chains mixing meeting-grounded extraction with
// authoritative product claims. PRODUCT_EXPLANATION is the documented
// exception: it carries ssotMode authoritative without an evidence
// requirement and is allowed to chain after extractive contracts, so a mix
// through it alone passes.
func authorityMixReason(cs []contracts.AnswerContract) string {
	hasNone, authoritative := splitSSOTModes(cs)
	if !hasNone || len(authoritative) == 0 {
		return ""
	}
	for _, c := range authoritative {
		if c != contracts.ProductExplanation {
			return "your request mixes meeting facts with product claims; please split it into separate questions"
		}
	}
	return ""
}

// MixesThroughProductExplanation reports the exempt authority mix so every
// selection stage can keep the exemption auditable in its logs.
func MixesThroughProductExplanation(cs []contracts.AnswerContract) bool {
	hasNone, authoritative := splitSSOTModes(cs)
	return hasNone && len(authoritative) > 0 && authorityMixReason(cs) == ""
}
