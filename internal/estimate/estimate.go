// Package estimate runs repeated battles and tabulates how they end.
package estimate

import (
	"fmt"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/dice"
)

// Histogram counts wins keyed by how many units the winner lost.
type Histogram struct {
	Counts []int
}

// Bin is one row of a histogram expressed as probabilities.
type Bin struct {
	Index       int
	Count       int
	Probability float64
	Cumulative  float64
}

// Total returns the number of trials recorded in the histogram.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Bins converts counts into per-bin and cumulative probabilities over trials.
func (h Histogram) Bins(trials int) []Bin {
	bins := make([]Bin, len(h.Counts))
	running := 0
	for i, c := range h.Counts {
		running += c
		bins[i] = Bin{Index: i, Count: c}
		if trials > 0 {
			bins[i].Probability = float64(c) / float64(trials)
			bins[i].Cumulative = float64(running) / float64(trials)
		}
	}
	return bins
}

// Result is the outcome tally of many battles between the same forces.
type Result struct {
	Attackers int
	Defenders int
	Trials    int
	// AttackerWins is indexed by attacker losses in battles the attacker won.
	AttackerWins Histogram
	// DefenderWins is indexed by defender losses in battles the defender won.
	DefenderWins Histogram
}

// NewResult allocates empty histograms sized to each side's units.
func NewResult(attackers, defenders int) Result {
	if attackers <= 0 || defenders <= 0 {
		panic(fmt.Sprintf("estimate: unit counts must be positive, got %d vs %d", attackers, defenders))
	}
	return Result{
		Attackers:    attackers,
		Defenders:    defenders,
		AttackerWins: Histogram{Counts: make([]int, attackers)},
		DefenderWins: Histogram{Counts: make([]int, defenders)},
	}
}

// Record classifies one finished battle.
func (r *Result) Record(b battle.Result) {
	if b.AttackerLosses < r.Attackers {
		r.AttackerWins.Counts[b.AttackerLosses]++
	} else {
		r.DefenderWins.Counts[b.DefenderLosses]++
	}
	r.Trials++
}

// Merge adds the tallies of other, which must cover the same forces.
func (r *Result) Merge(other Result) {
	if other.Attackers != r.Attackers || other.Defenders != r.Defenders {
		panic("estimate: merging results for different forces")
	}
	for i, c := range other.AttackerWins.Counts {
		r.AttackerWins.Counts[i] += c
	}
	for i, c := range other.DefenderWins.Counts {
		r.DefenderWins.Counts[i] += c
	}
	r.Trials += other.Trials
}

// AttackerBins returns the attacker-win histogram as probabilities.
func (r Result) AttackerBins() []Bin {
	return r.AttackerWins.Bins(r.Trials)
}

// DefenderBins returns the defender-win histogram as probabilities.
func (r Result) DefenderBins() []Bin {
	return r.DefenderWins.Bins(r.Trials)
}

// WinProbability returns the share of trials won by side.
func (r Result) WinProbability(side battle.Side) float64 {
	if r.Trials == 0 {
		return 0
	}
	switch side {
	case battle.SideAttacker:
		return float64(r.AttackerWins.Total()) / float64(r.Trials)
	case battle.SideDefender:
		return float64(r.DefenderWins.Total()) / float64(r.Trials)
	default:
		return 0
	}
}

// ExpectedLosses returns the mean losses of each side across all trials.
// A losing side always loses every unit.
func (r Result) ExpectedLosses() (attacker, defender float64) {
	if r.Trials == 0 {
		return 0, 0
	}
	var sumA, sumD int
	for i, c := range r.AttackerWins.Counts {
		sumA += i * c
		sumD += r.Defenders * c
	}
	for i, c := range r.DefenderWins.Counts {
		sumD += i * c
		sumA += r.Attackers * c
	}
	n := float64(r.Trials)
	return float64(sumA) / n, float64(sumD) / n
}

// Estimate fights trials independent battles with roller and tallies them.
func Estimate(roller *dice.Roller, attackers, defenders, trials int) Result {
	if trials <= 0 {
		panic(fmt.Sprintf("estimate: trials must be positive, got %d", trials))
	}
	res := NewResult(attackers, defenders)
	for i := 0; i < trials; i++ {
		res.Record(battle.Simulate(roller, attackers, defenders))
	}
	return res
}
