package core

import "fmt"

// FeasibilityCritic accepts a genome only when its selected weight fits the
// capacity.
type FeasibilityCritic struct{}

func NewFeasibilityCritic() *FeasibilityCritic { return &FeasibilityCritic{} }

func (c *FeasibilityCritic) Accept(p Problem, g Genome) (bool, string) {
	if len(g) != len(p.Items) {
		return false, "genome length mismatch"
	}
	w, _ := p.Totals(g)
	if float64(w) > p.Capacity {
		return false, fmt.Sprintf("weight %d exceeds capacity %g", w, p.Capacity)
	}
	return true, "within capacity"
}
