package backtest

import (
	"fmt"
	"slices"
)

// SearchPolicy is the candidate grid and the limits of the greedy search.
type SearchPolicy struct {
	Leverages   []int
	Percents    []float64
	Allocations []float64

	// TopAllocations is how many of the highest allocations the sweep tries
	// for each (leverage, percent) pair. The rest are only tried while
	// refining the winner.
	TopAllocations int

	// MaxTests bounds the number of simulations in the sweep.
	MaxTests int

	// PruneRatio abandons lower leverages once a whole leverage level fails
	// to reach PruneRatio times the best balance seen before it.
	PruneRatio float64

	// DefaultAllocation is reported when the search found no parameters.
	DefaultAllocation float64
}

func DefaultPolicy() SearchPolicy {
	return SearchPolicy{
		Leverages:         []int{2, 5, 10, 20},
		Percents:          []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 15, 20, 25, 30, 50},
		Allocations:       []float64{0.5, 0.7, 0.8, 0.9, 0.95, 0.99},
		TopAllocations:    2,
		MaxTests:          100,
		PruneRatio:        0.5,
		DefaultAllocation: 0.9,
	}
}

func (p SearchPolicy) Validate() error {
	if len(p.Leverages) == 0 {
		return fmt.Errorf("search.leverages is required")
	}
	for _, l := range p.Leverages {
		if l <= 0 {
			return fmt.Errorf("search.leverages must be positive")
		}
	}
	if len(p.Percents) == 0 {
		return fmt.Errorf("search.percents is required")
	}
	for _, v := range p.Percents {
		if v <= 0 || v >= 100 {
			return fmt.Errorf("search.percents must be between 0 and 100")
		}
	}
	if len(p.Allocations) == 0 {
		return fmt.Errorf("search.allocations is required")
	}
	for _, a := range p.Allocations {
		if a <= 0 || a > 1 {
			return fmt.Errorf("search.allocations must be between 0 and 1")
		}
	}
	if p.TopAllocations <= 0 {
		return fmt.Errorf("search.top_allocations must be positive")
	}
	if p.MaxTests <= 0 {
		return fmt.Errorf("search.max_tests must be positive")
	}
	if p.PruneRatio < 0 || p.PruneRatio > 1 {
		return fmt.Errorf("search.prune_ratio must be between 0 and 1")
	}
	if p.DefaultAllocation <= 0 || p.DefaultAllocation > 1 {
		return fmt.Errorf("search.default_allocation must be between 0 and 1")
	}
	return nil
}

// leveragesDesc returns the leverages from highest to lowest.
func (p SearchPolicy) leveragesDesc() []int {
	out := slices.Clone(p.Leverages)
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// allocationsDesc returns the allocations from highest to lowest.
func (p SearchPolicy) allocationsDesc() []float64 {
	out := slices.Clone(p.Allocations)
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// sweepAllocations is the reduced allocation set tried during the sweep.
func (p SearchPolicy) sweepAllocations() []float64 {
	all := p.allocationsDesc()
	return all[:min(p.TopAllocations, len(all))]
}
