package core

import (
	"fmt"
	"math"
)

// Evaluate scores g against items and capacity under the soft penalty policy.
func Evaluate(g Genome, items []Item, capacity float64, metric Metric) (float64, error) {
	return EvaluateWithPolicy(g, items, capacity, metric, PenaltySoft)
}

// EvaluateWithPolicy scores g. It has no side effects and is deterministic.
func EvaluateWithPolicy(g Genome, items []Item, capacity float64, metric Metric, policy PenaltyPolicy) (float64, error) {
	if len(g) != len(items) {
		return 0, fmt.Errorf("%w: genome has %d bits for %d items", ErrInvalidGenomeLength, len(g), len(items))
	}

	var totalValue float64
	var totalWeight int
	for i, bit := range g {
		if bit == 1 {
			totalValue += items[i].Value
			totalWeight += items[i].Weight
		}
	}

	factor, err := penaltyFactor(g, items, float64(totalWeight), capacity, policy)
	if err != nil {
		return 0, err
	}

	switch metric {
	case MetricBenefitWeight:
		if totalWeight == 0 {
			return 0, nil
		}
		return totalValue / float64(totalWeight) * factor, nil
	case MetricBenefit:
		return totalValue * factor, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}
}

// penaltyFactor is 1 inside capacity. Over capacity the soft policy walks the
// selected items in genome order until their weight covers the excess; the item
// that crosses the line contributes its value pro rata.
func penaltyFactor(g Genome, items []Item, totalWeight, capacity float64, policy PenaltyPolicy) (float64, error) {
	if totalWeight <= capacity {
		return 1, nil
	}
	switch policy {
	case PenaltyHard:
		return 0, nil
	case PenaltySoft:
	default:
		return 0, fmt.Errorf("%w: unknown penalty policy %q", ErrInvalidParams, policy)
	}

	excess := totalWeight - capacity
	var count, excessValue float64
	for i, bit := range g {
		if bit != 1 || excess <= 0 {
			continue
		}
		w := float64(items[i].Weight)
		count++
		if w <= excess {
			excessValue += items[i].Value
			excess -= w
			continue
		}
		excessValue += items[i].Value * (excess / w)
		break
	}

	penalty := 1.0
	if excessValue > 0 {
		penalty = count / excessValue
	}
	return math.Max(0, 1-penalty), nil
}

// Evaluator binds a problem, metric and penalty policy.
type Evaluator struct {
	problem Problem
	metric  Metric
	policy  PenaltyPolicy
}

// NewEvaluator validates metric and policy once so per-genome calls only fail
// on length mismatches.
func NewEvaluator(p Problem, metric Metric, policy PenaltyPolicy) (*Evaluator, error) {
	m, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	pol, err := ParsePenaltyPolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Evaluator{problem: p, metric: m, policy: pol}, nil
}

func (e *Evaluator) Evaluate(g Genome) (float64, error) {
	return EvaluateWithPolicy(g, e.problem.Items, e.problem.Capacity, e.metric, e.policy)
}

func (e *Evaluator) Problem() Problem { return e.problem }

func (e *Evaluator) Metric() Metric { return e.metric }
