package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/verte-zerg/risk/internal/config"
	"github.com/verte-zerg/risk/internal/dice"
	"github.com/verte-zerg/risk/internal/estimate"
	"github.com/verte-zerg/risk/internal/export"
	"github.com/verte-zerg/risk/internal/model"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("RISK_DB", filepath.Join(dir, "risk.db"))
	t.Setenv("RISK_SEED", "")
	t.Setenv("RISK_TRIALS", "")
	t.Setenv("RISK_WORKERS", "")
	for _, key := range []string{"RISK_SEED", "RISK_TRIALS", "RISK_WORKERS"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimCommand(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "sim", "5", "3", "--seed", "42", "--verbose")
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if !strings.HasPrefix(out, "simulating battle with 5 attackers vs. 3 defenders\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	for _, want := range []string{"roll", "results:", "attacker loses", "defender loses", " wins"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	again, err := execute(t, "sim", "5", "3", "--seed", "42", "--verbose")
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if again != out {
		t.Fatalf("same seed gave different output:\n%s\n---\n%s", out, again)
	}
}

func TestSimLargeBattleAllocatesLittle(t *testing.T) {
	setupEnv(t)
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	out, err := execute(t, "sim", "1000000", "1000000", "--seed", "1")
	runtime.ReadMemStats(&after)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if !strings.Contains(out, " wins") {
		t.Fatalf("expected a winner:\n%s", out)
	}
	if alloc := after.TotalAlloc - before.TotalAlloc; alloc > 16<<20 {
		t.Fatalf("non-verbose sim allocated %d bytes", alloc)
	}
}

func TestSimRejectsBadForces(t *testing.T) {
	setupEnv(t)
	for _, args := range [][]string{
		{"sim", "0", "3"},
		{"sim", "3", "-1"},
		{"sim", "x", "3"},
		{"sim", "3"},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestProbTableReport(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "prob", "3", "2", "500", "--seed", "7", "--workers", "2")
	if err != nil {
		t.Fatalf("prob: %v", err)
	}
	for _, want := range []string{
		"calculating probabilities for 3 attackers vs. 2 defenders using 500 runs",
		"attacker wins:",
		"defender wins:",
		"armies lost",
		"cumulative",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestProbJSON(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "prob", "4", "3", "--trials", "300", "--seed", "9", "--format", "json")
	if err != nil {
		t.Fatalf("prob: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if doc.Trials != 300 || doc.Seed != 9 || doc.Attackers != 4 || doc.Defenders != 3 {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if got := doc.AttackerWin + doc.DefenderWin; math.Abs(got-1) > 1e-9 {
		t.Fatalf("win probabilities sum to %v", got)
	}
}

func TestProbTrialsConflict(t *testing.T) {
	setupEnv(t)
	if _, err := execute(t, "prob", "3", "2", "100", "--trials", "50", "--seed", "1"); err == nil {
		t.Fatalf("expected error when trials given twice")
	}
}

func TestProbRejectsUnknownFormat(t *testing.T) {
	setupEnv(t)
	if _, err := execute(t, "prob", "3", "2", "10", "--seed", "1", "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestProbUsesEnvAndFile(t *testing.T) {
	setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[prob]\ntrials = 120\nseed = 5\nformat = \"json\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RISK_TRIALS", "80")

	out, err := execute(t, "prob", "2", "2")
	if err != nil {
		t.Fatalf("prob: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if doc.Trials != 80 {
		t.Fatalf("expected env trials 80, got %d", doc.Trials)
	}
	if doc.Seed != 5 {
		t.Fatalf("expected file seed 5, got %d", doc.Seed)
	}

	out, err = execute(t, "prob", "2", "2", "--trials", "60")
	if err != nil {
		t.Fatalf("prob: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if doc.Trials != 60 {
		t.Fatalf("expected flag trials 60, got %d", doc.Trials)
	}
}

func TestSaveAndHistory(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "history", "--plain")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs found.") {
		t.Fatalf("expected empty history:\n%s", out)
	}

	if _, err := execute(t, "prob", "3", "2", "200", "--seed", "11", "--save"); err != nil {
		t.Fatalf("prob --save: %v", err)
	}
	if _, err := execute(t, "prob", "6", "4", "200", "--seed", "12", "--save"); err != nil {
		t.Fatalf("prob --save: %v", err)
	}

	out, err = execute(t, "history", "--plain")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "3v2") || !strings.Contains(out, "6v4") {
		t.Fatalf("expected both runs in history:\n%s", out)
	}

	out, err = execute(t, "history", "--plain", "--last", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Contains(out, "3v2") || !strings.Contains(out, "6v4") {
		t.Fatalf("expected only the newest run:\n%s", out)
	}
}

func TestHistoryRejectsBadSince(t *testing.T) {
	setupEnv(t)
	if _, err := execute(t, "history", "--plain", "--since", "yesterday"); err == nil {
		t.Fatalf("expected --since error")
	}
}

func TestConfigTemplateLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk", "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensureConfigFile: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Prob.Trials != nil || cfg.Sim.Seed != nil {
		t.Fatalf("template should leave every value unset: %+v", cfg)
	}
}

func TestProbPlotColorFollowsWriter(t *testing.T) {
	cfg := model.ProbConfig{Attackers: 3, Defenders: 2, Trials: 200, Seed: 3, Plot: true}
	res := estimate.Estimate(dice.NewSeeded(cfg.Seed), cfg.Attackers, cfg.Defenders, cfg.Trials)

	plain, err := renderProbOutput(export.FormatTable, cfg, res, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain report contains escape codes:\n%s", plain)
	}
	colored, err := renderProbOutput(export.FormatTable, cfg, res, true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(colored, "\x1b[") {
		t.Fatalf("expected escape codes in colored report")
	}

	setupEnv(t)
	out, err := execute(t, "prob", "3", "2", "200", "--seed", "3", "--plot")
	if err != nil {
		t.Fatalf("prob --plot: %v", err)
	}
	if !strings.Contains(out, "Legend:") || strings.Contains(out, "\x1b[") {
		t.Fatalf("expected an uncolored plot for a buffer writer:\n%s", out)
	}
}
