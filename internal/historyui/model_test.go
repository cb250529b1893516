package historyui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/risk/internal/estimate"
	"github.com/verte-zerg/risk/internal/model"
)

func testRuns() []model.RunRecord {
	return []model.RunRecord{
		{ID: 1, CreatedAt: time.Unix(0, 0), Attackers: 3, Defenders: 2, Trials: 4, AttackerWins: 3, DefenderWins: 1},
		{ID: 2, CreatedAt: time.Unix(60, 0), Attackers: 1, Defenders: 1, Trials: 4, AttackerWins: 2, DefenderWins: 2},
	}
}

func stubLoader(calls *[]int64) Loader {
	return func(_ context.Context, run model.RunRecord) (estimate.Result, error) {
		*calls = append(*calls, run.ID)
		res := estimate.NewResult(run.Attackers, run.Defenders)
		res.AttackerWins.Counts[0] = run.AttackerWins
		res.DefenderWins.Counts[0] = run.DefenderWins
		res.Trials = run.Trials
		return res, nil
	}
}

func TestEnterLoadsSelectedRun(t *testing.T) {
	var calls []int64
	m := NewModel(testRuns(), stubLoader(&calls))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(calls) != 1 || calls[0] != 2 {
		t.Fatalf("expected newest run to load, got %v", calls)
	}
	if m.activeTab != tabOutcome {
		t.Fatalf("expected outcome tab after enter")
	}
	view := m.View()
	if !strings.Contains(view, "Run 2: 1 attackers vs. 1 defenders") {
		t.Fatalf("expected run header in view:\n%s", view)
	}
}

func TestLoaderErrorShown(t *testing.T) {
	m := NewModel(testRuns(), func(context.Context, model.RunRecord) (estimate.Result, error) {
		return estimate.Result{}, errors.New("disk gone")
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.errMsg, "disk gone") {
		t.Fatalf("expected error message, got %q", m.errMsg)
	}
	if !strings.Contains(m.View(), "disk gone") {
		t.Fatalf("expected error in footer")
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewModel(nil, stubLoader(new([]int64)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeTab != tabRuns {
		t.Fatalf("enter should not leave the runs tab without runs")
	}
	if !strings.Contains(m.View(), "No runs found.") {
		t.Fatalf("expected empty message")
	}
}

func TestMoveTabWraps(t *testing.T) {
	m := NewModel(testRuns(), stubLoader(new([]int64)))
	m.moveTab(-1)
	if m.activeTab != tabOutcome {
		t.Fatalf("expected wrap to last tab, got %d", m.activeTab)
	}
	m.moveTab(1)
	if m.activeTab != tabRuns {
		t.Fatalf("expected wrap to first tab, got %d", m.activeTab)
	}
}
