package intent

import (
	"context"

	"github.com/google/uuid"

	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/entities"
)

// DefaultLowConfidenceThreshold gates the second LLM validation call.
const DefaultLowConfidenceThreshold = 0.6

// Classifier runs the tiered cascade. Deterministic matchers short-circuit
// in order; the interpreter is consulted only when every tier declines.
type Classifier struct {
	matchers      []Matcher
	interpreter   Interpreter
	lowConfidence float64
	log           logger.Logger
}

// NewClassifier builds a classifier over the default matcher cascade.
// interpreter may be nil, in which case unmatched messages fall back to the
// safe default without any network call.
func NewClassifier(interpreter Interpreter, lowConfidence float64, log logger.Logger) *Classifier {
	if lowConfidence <= 0 {
		lowConfidence = DefaultLowConfidenceThreshold
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Classifier{
		matchers:      DefaultMatchers(),
		interpreter:   interpreter,
		lowConfidence: lowConfidence,
		log:           log,
	}
}

// Classify resolves message to exactly one intent. It never returns an
// error and never panics: interpreter failures degrade to the safe default.
// snap is the single entity snapshot for this request; tc may be nil.
func (c *Classifier) Classify(ctx context.Context, message string, tc *ThreadContext, snap *entities.Snapshot) IntentClassification {
	in := NewMatchInput(message, snap)
	reuse := ShouldReuseContext(tc, message, snap)

	for _, m := range c.matchers {
		result := m.Try(in)
		if result == nil {
			continue
		}
		c.finalize(result, tc, reuse)
		c.log.Debug("intent matched deterministically", map[string]interface{}{
			"matcher":    m.Name(),
			"intent":     string(result.Intent),
			"confidence": result.Confidence,
			"decisionId": result.Metadata.DecisionID,
		})
		if result.NeedsSplit {
			serr := cerrors.NewAmbiguousInputError(result.Reason, result.SplitOptions)
			c.log.Info("multi-intent message held for clarification", map[string]interface{}{
				"decisionId":   result.Metadata.DecisionID,
				"error":        serr.Error(),
				"splitOptions": result.SplitOptions,
			})
		}
		return *result
	}

	result := c.interpret(ctx, message, tc, in)
	c.finalize(result, tc, reuse)
	return *result
}

// interpret is the tier running after every deterministic matcher declined.
func (c *Classifier) interpret(ctx context.Context, message string, tc *ThreadContext, in MatchInput) *IntentClassification {
	if c.interpreter == nil {
		return c.safeDefault(tc, "no interpreter configured")
	}

	interp, err := c.interpreter.Interpret(ctx, message, tc)
	if err != nil {
		c.log.Warn("llm interpretation failed, using safe default", map[string]interface{}{
			"error": err.Error(),
		})
		return c.safeDefault(tc, "interpretation unavailable")
	}

	if interp.IsAmbiguous {
		return &IntentClassification{
			Intent:          IntentClarify,
			Confidence:      interp.Confidence,
			DetectionMethod: MethodLLM,
			Reason:          interp.Reason,
			Metadata: DecisionMetadata{
				ProposedContracts: interp.ProposedContracts,
				ExtractedEntities: interp.ExtractedEntities,
			},
		}
	}

	parsed, ok := Parse(interp.Intent)
	if !ok {
		c.log.Warn("llm returned unknown intent, using safe default", map[string]interface{}{
			"intent": interp.Intent,
		})
		return c.safeDefault(tc, "interpretation returned unknown intent")
	}

	result := &IntentClassification{
		Intent:          parsed,
		Confidence:      interp.Confidence,
		DetectionMethod: MethodLLM,
		Reason:          interp.Reason,
		Metadata: DecisionMetadata{
			ProposedContracts: interp.ProposedContracts,
			ExtractedEntities: interp.ExtractedEntities,
		},
	}

	if result.Confidence < c.lowConfidence {
		c.validateLowConfidence(ctx, result, in)
	}
	return result
}

// validateLowConfidence asks the interpreter to confirm or override a guess
// below the confidence threshold. Validation errors keep the original guess.
func (c *Classifier) validateLowConfidence(ctx context.Context, result *IntentClassification, in MatchInput) {
	signals := CollectSignals(in.Normalized)
	verdict, err := c.interpreter.ValidateIntent(ctx, result.Intent, result.Reason, signals)
	if err != nil {
		c.log.Warn("low-confidence validation failed, keeping original guess", map[string]interface{}{
			"intent": string(result.Intent),
			"error":  err.Error(),
		})
		return
	}

	if verdict.Confirmed {
		result.Confidence = c.lowConfidence
		return
	}
	if suggested, ok := Parse(verdict.SuggestedIntent); ok {
		c.log.Info("low-confidence intent overridden by validation", map[string]interface{}{
			"original":  string(result.Intent),
			"suggested": string(suggested),
		})
		result.Intent = suggested
		result.Confidence = c.lowConfidence
		result.Reason = result.Reason + " (revised by validation)"
		return
	}

	serr := cerrors.NewLowConfidenceMatchError(string(result.Intent), result.Confidence)
	c.log.Warn("low-confidence guess kept without confirmation", map[string]interface{}{
		"error":   serr.Error(),
		"details": serr.Details,
	})
}

// safeDefault is the never-fail terminal answer. A thread already awaiting
// clarification stays in clarification rather than silently changing topic.
func (c *Classifier) safeDefault(tc *ThreadContext, reason string) *IntentClassification {
	if tc != nil && tc.PriorAwaitingClarification {
		return &IntentClassification{
			Intent:          IntentClarify,
			Confidence:      0.5,
			DetectionMethod: MethodDefault,
			Reason:          reason,
		}
	}
	return &IntentClassification{
		Intent:          IntentGeneralHelp,
		Confidence:      0.3,
		DetectionMethod: MethodDefault,
		Reason:          reason,
	}
}

// finalize stamps the decision id and carries the prior turn's company onto
// results that resolved no company of their own.
func (c *Classifier) finalize(result *IntentClassification, tc *ThreadContext, reuse bool) {
	if result.Metadata.DecisionID == "" {
		result.Metadata.DecisionID = uuid.New().String()
	}
	if reuse && result.Metadata.CompanyID == "" && tc != nil {
		result.Metadata.CompanyID = tc.PriorCompanyID
		result.Metadata.CompanyName = tc.PriorCompanyName
	}
}
