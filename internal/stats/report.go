package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/risk/internal/estimate"
	"github.com/verte-zerg/risk/internal/model"
	"github.com/verte-zerg/risk/internal/store"
)

// History contains stored runs prepared for rendering.
type History struct {
	Runs []model.RunRecord
}

// BuildHistory loads stored runs matching cfg.
func BuildHistory(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (History, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return History{}, err
	}
	return History{Runs: runs}, nil
}

// LoadEstimate rebuilds the estimate of a stored run from its bins.
func LoadEstimate(ctx context.Context, st *store.Store, run model.RunRecord) (estimate.Result, error) {
	bins, err := st.ListBins(ctx, run.ID)
	if err != nil {
		return estimate.Result{}, err
	}
	return EstimateFromRecords(run, bins)
}

// EstimateFromRecords rebuilds an estimate from a run and its bins.
func EstimateFromRecords(run model.RunRecord, bins []model.BinRecord) (estimate.Result, error) {
	if run.Attackers <= 0 || run.Defenders <= 0 {
		return estimate.Result{}, fmt.Errorf("run %d has invalid forces %dv%d", run.ID, run.Attackers, run.Defenders)
	}
	res := estimate.NewResult(run.Attackers, run.Defenders)
	res.Trials = run.Trials
	for _, b := range bins {
		var counts []int
		switch b.Side {
		case model.SideAttacker:
			counts = res.AttackerWins.Counts
		case model.SideDefender:
			counts = res.DefenderWins.Counts
		default:
			return estimate.Result{}, fmt.Errorf("run %d: unknown side %q", run.ID, b.Side)
		}
		if b.Losses < 0 || b.Losses >= len(counts) {
			return estimate.Result{}, fmt.Errorf("run %d: %s bin %d out of range", run.ID, b.Side, b.Losses)
		}
		counts[b.Losses] = b.Count
	}
	return res, nil
}

// RecordsFromEstimate flattens an estimate into storable bins. Empty bins are skipped.
func RecordsFromEstimate(res estimate.Result) []model.BinRecord {
	var bins []model.BinRecord
	add := func(side string, h estimate.Histogram) {
		for i, c := range h.Counts {
			if c > 0 {
				bins = append(bins, model.BinRecord{Side: side, Losses: i, Count: c})
			}
		}
	}
	add(model.SideAttacker, res.AttackerWins)
	add(model.SideDefender, res.DefenderWins)
	return bins
}

// RenderRuns prints stored runs as a table.
func RenderRuns(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	headers := []string{"id", "date", "forces", "trials", "attacker", "defender", "seed"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, RunRow(run))
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true}))
}

// RunRow formats the summary columns of a run.
func RunRow(run model.RunRecord) []string {
	attacker, defender := 0.0, 0.0
	if run.Trials > 0 {
		attacker = float64(run.AttackerWins) / float64(run.Trials)
		defender = float64(run.DefenderWins) / float64(run.Trials)
	}
	return []string{
		strconv.FormatInt(run.ID, 10),
		run.CreatedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%dv%d", run.Attackers, run.Defenders),
		strconv.Itoa(run.Trials),
		percent(attacker),
		percent(defender),
		strconv.FormatInt(run.Seed, 10),
	}
}
