package intent

import (
	"context"
	"regexp"

	"github.com/Ziolli/Case-Indicium/internal/observability"
	"github.com/Ziolli/Case-Indicium/internal/textnorm"
)

// DefaultRuleConfidenceThreshold is the rule-confidence floor below
// which the arbiter consults the model classifier.
const DefaultRuleConfidenceThreshold = 0.55

// followUpRe flags turns that look like a continuation of the previous
// one ("e em SP?", "and in RJ?"). Authored against normalized text.
var followUpRe = regexp.MustCompile(`\be (em|no|na|nos|nas|para|de)\b|\band (in|at|for)\b`)

// Arbiter reconciles the rule classifier and the model classifier into
// one final Intent per turn. The rule path stays authoritative unless
// the model strictly improves on it; that keeps the common case cheap
// and the behavior explainable.
type Arbiter struct {
	rules       *RuleClassifier
	model       ModelClassifier
	threshold   float64
	alwaysModel bool
	logger      *observability.Logger
}

// ArbiterOption mutates construction-time settings.
type ArbiterOption func(*Arbiter)

// WithThreshold overrides the rule-confidence threshold.
func WithThreshold(t float64) ArbiterOption {
	return func(a *Arbiter) { a.threshold = t }
}

// WithAlwaysModel forces the model classifier on every turn.
func WithAlwaysModel(on bool) ArbiterOption {
	return func(a *Arbiter) { a.alwaysModel = on }
}

// NewArbiter wires the rule classifier and an optional model
// classifier. A nil model disables the fallback path entirely.
func NewArbiter(rules *RuleClassifier, model ModelClassifier, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		rules:     rules,
		model:     model,
		threshold: DefaultRuleConfidenceThreshold,
		logger:    observability.NewLogger("intent-arbiter"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classify resolves one turn. Policy, in order:
//  1. run the rule classifier;
//  2. invoke the model when always-model is set, rule confidence is
//     below the threshold, or the text looks like a follow-up;
//  3. return the model's Intent only when it is not unknown and its
//     confidence is at least the rule confidence.
func (a *Arbiter) Classify(ctx context.Context, text string, previous *Intent) Intent {
	ruleIntent := a.rules.Classify(text)

	if a.model == nil || !a.shouldConsultModel(text, ruleIntent) {
		return ruleIntent
	}

	modelIntent := a.model.Classify(ctx, text, previous)
	if modelIntent.Kind != KindUnknown && modelIntent.Confidence >= ruleIntent.Confidence {
		a.logger.Debug(ctx, "Model intent preferred over rule intent", map[string]interface{}{
			"rule_kind":  string(ruleIntent.Kind),
			"model_kind": string(modelIntent.Kind),
		})
		return modelIntent.Canonical()
	}
	return ruleIntent
}

func (a *Arbiter) shouldConsultModel(text string, ruleIntent Intent) bool {
	if a.alwaysModel {
		return true
	}
	if ruleIntent.Confidence < a.threshold {
		return true
	}
	return followUpRe.MatchString(textnorm.Normalize(text))
}
