package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/estimate"
)

// RenderBattle prints the losses and winner of a single battle.
func RenderBattle(w io.Writer, res battle.Result) error {
	lines := []string{
		"results:",
		fmt.Sprintf("attacker loses %d armies", res.AttackerLosses),
		fmt.Sprintf("defender loses %d armies", res.DefenderLosses),
		fmt.Sprintf("%s wins", res.Winner()),
	}
	return writeLines(w, lines)
}

// RenderRolls prints every roll of a battle with the units left after it.
func RenderRolls(w io.Writer, attackers, defenders int, rolls []battle.Roll) error {
	headers := []string{"roll", "attack", "defend", "lost", "left"}
	rows := make([][]string, 0, len(rolls))
	remA, remD := attackers, defenders
	for i, r := range rolls {
		remA -= r.AttackerLosses
		remD -= r.DefenderLosses
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatDice(r.AttackDice()),
			formatDice(r.DefendDice()),
			fmt.Sprintf("%d/%d", r.AttackerLosses, r.DefenderLosses),
			fmt.Sprintf("%d/%d", remA, remD),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true}))
}

// RenderEstimate prints both outcome histograms of an estimate.
func RenderEstimate(w io.Writer, res estimate.Result) error {
	attackerLoss, defenderLoss := res.ExpectedLosses()
	lines := []string{
		"results:",
		fmt.Sprintf("attacker wins %s, expected losses %.2f", percent(res.WinProbability(battle.SideAttacker)), attackerLoss),
		fmt.Sprintf("defender wins %s, expected losses %.2f", percent(res.WinProbability(battle.SideDefender)), defenderLoss),
		"attacker wins:",
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}
	if err := RenderHistogram(w, res.AttackerBins()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "defender wins:"); err != nil {
		return err
	}
	return RenderHistogram(w, res.DefenderBins())
}

// RenderHistogram prints one histogram keyed by the winner's losses.
func RenderHistogram(w io.Writer, bins []estimate.Bin) error {
	headers := []string{"armies lost", "probability", "cumulative"}
	rows := make([][]string, 0, len(bins))
	for _, b := range bins {
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			percent(b.Probability),
			percent(b.Cumulative),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true}))
}

// CumulativeSeries turns an estimate into one curve per side for PlotCurves.
func CumulativeSeries(res estimate.Result) []Series {
	toValues := func(bins []estimate.Bin) []float64 {
		values := make([]float64, len(bins))
		for i, b := range bins {
			values[i] = b.Cumulative
		}
		return values
	}
	return []Series{
		{Name: "attacker wins", Values: toValues(res.AttackerBins())},
		{Name: "defender wins", Values: toValues(res.DefenderBins())},
	}
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", 100*p)
}

func formatDice(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
