package intent

import (
	"context"
	"log/slog"
	"strings"
)

// Classifier is the composite classification strategy: neural when a probe
// succeeded at startup, rule-based otherwise — and always rule-based as the
// fallback when inference fails at runtime. Classify is total; it never
// returns an error to the caller.
type Classifier struct {
	rules  *Rules
	neural *Neural // nil when the startup probe failed or neural is disabled
}

// NewClassifier builds the composite. Pass neural == nil to run rules only.
func NewClassifier(rules *Rules, neural *Neural) *Classifier {
	return &Classifier{rules: rules, neural: neural}
}

// HasNeural reports whether the neural path is active.
func (c *Classifier) HasNeural() bool {
	return c.neural != nil
}

// Classify maps an utterance to an intent. Inference failures are swallowed
// and logged at debug level; the rule-based result is returned instead.
//
// The neural model supplies only a label, so entity extraction always runs
// through the rule path afterwards — a model-labeled play_search still
// carries its query entity.
func (c *Classifier) Classify(ctx context.Context, utterance string) Result {
	if strings.TrimSpace(utterance) == "" {
		return Result{Intent: IntentNone, Confidence: 1.0}
	}

	if c.neural != nil {
		label, err := c.neural.Infer(ctx, utterance)
		if err == nil {
			res := Result{Intent: label, Confidence: 0.95}
			if queryBearing(label) {
				if ruleRes := c.rules.Classify(utterance); ruleRes.Query() != "" {
					res.Entities = map[string]string{EntityQuery: ruleRes.Query()}
				}
			}
			res.Confidence = clamp01(res.Confidence)
			return res
		}
		slog.Debug("neural classification failed, falling back to rules", "error", err)
	}

	res := c.rules.Classify(utterance)
	res.Confidence = clamp01(res.Confidence)
	return res
}
