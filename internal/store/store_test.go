package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/risk/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "risk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		run := model.RunRecord{
			CreatedAt:    time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Hour),
			Attackers:    3 + i,
			Defenders:    2,
			Trials:       100,
			Workers:      1,
			Seed:         int64(i),
			AttackerWins: 60,
			DefenderWins: 40,
			DurationMs:   5,
		}
		bins := []model.BinRecord{
			{Side: model.SideAttacker, Losses: 0, Count: 50},
			{Side: model.SideAttacker, Losses: 1, Count: 10},
			{Side: model.SideDefender, Losses: 1, Count: 25},
			{Side: model.SideDefender, Losses: 0, Count: 15},
		}
		id, err := st.InsertRun(ctx, run, bins)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[2].ID != ids[2] || runs[2].Attackers != 5 || !runs[2].CreatedAt.Equal(time.Unix(0, 0).Add(2*time.Hour)) {
		t.Fatalf("unexpected last run %+v", runs[2])
	}

	last, err := st.ListRuns(ctx, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(last) != 2 || last[0].ID != ids[1] {
		t.Fatalf("unexpected last-2 runs %+v", last)
	}

	since := time.Unix(0, 0).UTC().Add(90 * time.Minute)
	recent, err := st.ListRuns(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != ids[2] {
		t.Fatalf("unexpected runs since filter %+v", recent)
	}

	bins, err := st.ListBins(ctx, ids[0])
	if err != nil {
		t.Fatalf("list bins: %v", err)
	}
	if len(bins) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(bins))
	}
	if bins[0].Side != model.SideAttacker || bins[0].Losses != 0 || bins[0].Count != 50 {
		t.Fatalf("unexpected first bin %+v", bins[0])
	}
	if bins[2].Side != model.SideDefender || bins[2].Losses != 0 || bins[2].Count != 15 {
		t.Fatalf("unexpected defender bin order %+v", bins[2:])
	}
}

func TestListBinsUnknownRun(t *testing.T) {
	st := openTestStore(t)
	bins, err := st.ListBins(context.Background(), 404)
	if err != nil {
		t.Fatalf("list bins: %v", err)
	}
	if len(bins) != 0 {
		t.Fatalf("expected no bins, got %v", bins)
	}
}
