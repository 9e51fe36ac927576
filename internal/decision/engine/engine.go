// Package engine orchestrates the full decision pass for one message:
// classify, resolve context layers, then select the contract chain through
// the ordered stages llm_proposed, keyword_built, llm_fallback and
// validation_failure.
package engine

import (
	"context"
	"time"

	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/common/metrics"
	"dealsense/internal/decision/chain"
	"dealsense/internal/decision/contracts"
	"dealsense/internal/decision/intent"
	"dealsense/internal/decision/layers"
	"dealsense/internal/entities"
)

// ContractSelector is the LLM fallback for chain selection, used only when
// the keyword builder planned nothing beyond an intent default.
type ContractSelector interface {
	SelectContracts(ctx context.Context, message string, it intent.Intent) ([]string, error)
}

// SnapshotProvider yields the entity snapshot for one request. Current may
// return nil before the first refresh completes.
type SnapshotProvider interface {
	Current() *entities.Snapshot
}

// Request is one inbound message plus its caller-resolved context.
type Request struct {
	Message       string                `json:"message"`
	ThreadContext *intent.ThreadContext `json:"threadContext,omitempty"`
	Flags         layers.Flags          `json:"flags,omitempty"`
	Scope         chain.Scope           `json:"scope"`
}

// Decision is the complete output for one request.
type Decision struct {
	Classification intent.IntentClassification `json:"classification"`
	Layers         layers.ContextLayers        `json:"contextLayers"`
	Chain          chain.ContractChain         `json:"contractChain"`
}

// Engine wires the classifier and chain builder behind a single entry
// point. selector and snapshots may be nil; the engine then runs fully
// deterministic.
type Engine struct {
	classifier *intent.Classifier
	builder    *chain.Builder
	selector   ContractSelector
	snapshots  SnapshotProvider
	log        logger.Logger
}

func New(classifier *intent.Classifier, builder *chain.Builder, selector ContractSelector, snapshots SnapshotProvider, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		classifier: classifier,
		builder:    builder,
		selector:   selector,
		snapshots:  snapshots,
		log:        log,
	}
}

// Decide runs the full pass. It never returns an error: every collaborator
// failure has already been degraded to a conservative classification or
// chain by the stage that owns it.
func (e *Engine) Decide(ctx context.Context, req Request) Decision {
	started := time.Now()

	var snap *entities.Snapshot
	if e.snapshots != nil {
		snap = e.snapshots.Current()
	}

	classifyStart := time.Now()
	classification := e.classifier.Classify(ctx, req.Message, req.ThreadContext, snap)
	metrics.DecisionDuration.WithLabelValues("classify").Observe(time.Since(classifyStart).Seconds())
	metrics.ClassificationsTotal.WithLabelValues(string(classification.Intent), string(classification.DetectionMethod)).Inc()

	resolved := layers.Resolve(classification.Intent, req.Flags)

	chainStart := time.Now()
	built := e.selectChain(ctx, req, classification)
	metrics.DecisionDuration.WithLabelValues("chain").Observe(time.Since(chainStart).Seconds())
	metrics.ChainsBuilt.WithLabelValues(string(built.SelectionMethod)).Inc()
	metrics.DecisionDuration.WithLabelValues("total").Observe(time.Since(started).Seconds())

	e.log.Info("decision complete", map[string]interface{}{
		"decisionId":      classification.Metadata.DecisionID,
		"intent":          string(classification.Intent),
		"detectionMethod": string(classification.DetectionMethod),
		"confidence":      classification.Confidence,
		"selectionMethod": string(built.SelectionMethod),
		"primaryContract": string(built.PrimaryContract),
		"chainLength":     len(built.Contracts),
	})

	return Decision{
		Classification: classification,
		Layers:         resolved,
		Chain:          built,
	}
}

// selectChain walks the selection stages in order. Each stage either
// produces the final chain or passes control to the next; validation
// failure inside the keyword builder is terminal.
func (e *Engine) selectChain(ctx context.Context, req Request, c intent.IntentClassification) chain.ContractChain {
	return e.BuildChain(ctx, req.Message, c.Intent, req.Scope, c.Metadata.ProposedContracts)
}

// BuildChain runs the chain-selection state machine for an already
// classified intent. proposed carries the Tier-5 interpreter's contract
// names, if any.
func (e *Engine) BuildChain(ctx context.Context, message string, it intent.Intent, scope chain.Scope, proposed []string) chain.ContractChain {
	if c, ok := e.proposedChain(it, proposed); ok {
		return c
	}

	built := e.builder.Build(message, it, scope)
	if built.SelectionMethod == chain.SelectionValidationFailure {
		return built
	}

	if fallback, ok := e.fallbackChain(ctx, message, it, built); ok {
		return fallback
	}
	return built
}

// proposedChain promotes the Tier-5 interpreter's contract names when every
// name is a known, non-terminal contract and the whole chain passes the
// always-true invariants. Terminal intents always go through the builder so
// REFUSE and CLARIFY stay single-element chains.
func (e *Engine) proposedChain(it intent.Intent, names []string) (chain.ContractChain, bool) {
	if it == intent.IntentRefuse || it == intent.IntentClarify {
		return chain.ContractChain{}, false
	}
	if len(names) == 0 {
		return chain.ContractChain{}, false
	}

	proposed := make([]contracts.AnswerContract, 0, len(names))
	for _, name := range names {
		candidate := contracts.AnswerContract(name)
		if !contracts.IsKnown(candidate) || contracts.IsTerminal(candidate) {
			e.log.Warn("llm proposed unusable contract, falling back to builder", map[string]interface{}{
				"contract": name,
			})
			return chain.ContractChain{}, false
		}
		proposed = append(proposed, candidate)
	}

	if rule, reason := chain.ViolatedInvariant(proposed); rule != "" {
		e.log.Warn("llm proposed chain violates invariants, falling back to builder", map[string]interface{}{
			"rule":   rule,
			"reason": reason,
		})
		return chain.ContractChain{}, false
	}
	if chain.MixesThroughProductExplanation(proposed) {
		e.log.Warn("llm proposed chain mixes extractive contracts with product explanation", map[string]interface{}{
			"contracts": proposed,
		})
	}

	chain.SortByPhase(proposed)
	return chain.ContractChain{
		Contracts:       proposed,
		SelectionMethod: chain.SelectionLLMProposed,
		PrimaryContract: proposed[0],
	}, true
}

// fallbackChain issues the single scoped LLM selection call, only for a
// chain the builder defaulted. Any failure or unusable answer keeps the
// keyword default.
func (e *Engine) fallbackChain(ctx context.Context, message string, it intent.Intent, built chain.ContractChain) (chain.ContractChain, bool) {
	if e.selector == nil || !built.Defaulted {
		return chain.ContractChain{}, false
	}
	switch it {
	case intent.IntentRefuse, intent.IntentClarify, intent.IntentGeneralHelp:
		return chain.ContractChain{}, false
	}

	names, err := e.selector.SelectContracts(ctx, message, it)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues("select_contracts", "error").Inc()
		serr := cerrors.NewChainSelectionFailedError(err.Error())
		e.log.Warn("llm contract selection failed, keeping keyword default", map[string]interface{}{
			"intent":  string(it),
			"error":   serr.Error(),
			"details": serr.Details,
		})
		return chain.ContractChain{}, false
	}
	metrics.LLMCallsTotal.WithLabelValues("select_contracts", "success").Inc()

	selected := make([]contracts.AnswerContract, 0, len(names))
	for _, name := range names {
		candidate := contracts.AnswerContract(name)
		if contracts.IsKnown(candidate) && !contracts.IsTerminal(candidate) {
			selected = append(selected, candidate)
		}
	}
	if len(selected) == 0 {
		return chain.ContractChain{}, false
	}

	if rule, reason := chain.ViolatedInvariant(selected); rule != "" {
		e.log.Warn("llm fallback chain violates invariants, keeping keyword default", map[string]interface{}{
			"rule":   rule,
			"reason": reason,
		})
		return chain.ContractChain{}, false
	}

	chain.SortByPhase(selected)
	return chain.ContractChain{
		Contracts:       selected,
		SelectionMethod: chain.SelectionLLMFallback,
		PrimaryContract: selected[0],
	}, true
}
