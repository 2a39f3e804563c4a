package core

import "sort"

// Generation is a read-only view over one fully evaluated population. It
// memoizes the cumulative fitness sums so roulette draws within a generation
// all see the same wheel.
type Generation struct {
	Index      int
	Candidates []*Candidate

	cumulative []float64
}

func NewGeneration(index int, cands []*Candidate) *Generation {
	return &Generation{Index: index, Candidates: cands}
}

func (g *Generation) Len() int { return len(g.Candidates) }

// Cumulative returns running fitness sums, computed on first use.
func (g *Generation) Cumulative() []float64 {
	if g.cumulative == nil {
		g.cumulative = make([]float64, len(g.Candidates))
		var acc float64
		for i, c := range g.Candidates {
			acc += c.Score()
			g.cumulative[i] = acc
		}
	}
	return g.cumulative
}

// TotalFitness is the last cumulative sum.
func (g *Generation) TotalFitness() float64 {
	cum := g.Cumulative()
	if len(cum) == 0 {
		return 0
	}
	return cum[len(cum)-1]
}

// SearchAbove returns the first index whose running sum exceeds pick, clamped
// to the last index to absorb rounding at the top of the wheel.
func (g *Generation) SearchAbove(pick float64) int {
	cum := g.Cumulative()
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > pick })
	if i == len(cum) {
		i = len(cum) - 1
	}
	return i
}

// Best returns the index of the fittest candidate; ties keep the first.
func (g *Generation) Best() int {
	best := -1
	for i, c := range g.Candidates {
		if best < 0 || c.Score() > g.Candidates[best].Score() {
			best = i
		}
	}
	return best
}

// GenerationStats summarises a generation for observers.
type GenerationStats struct {
	Index       int     `json:"generation"`
	Best        float64 `json:"best"`
	Mean        float64 `json:"mean"`
	Worst       float64 `json:"worst"`
	GlobalBest  float64 `json:"global_best"`
	Feasible    int     `json:"feasible"`
	Size        int     `json:"size"`
	Improvement bool    `json:"improvement"`
}

// Summarize computes best, mean and worst fitness.
func (g *Generation) Summarize() GenerationStats {
	s := GenerationStats{Index: g.Index, Size: len(g.Candidates)}
	if len(g.Candidates) == 0 {
		return s
	}
	s.Worst = g.Candidates[0].Score()
	for _, c := range g.Candidates {
		f := c.Score()
		if f > s.Best {
			s.Best = f
		}
		if f < s.Worst {
			s.Worst = f
		}
	}
	s.Mean = g.TotalFitness() / float64(len(g.Candidates))
	return s
}
