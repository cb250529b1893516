package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotCurves(t *testing.T) {
	var buf bytes.Buffer
	err := PlotCurves(&buf, "Cumulative", []Series{
		{Name: "attacker wins", Values: []float64{0.2, 0.4, 0.6}},
		{Name: "defender wins", Values: []float64{0.1, 0.4}},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotCurves failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Cumulative") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend: ⣿ attacker wins  ⣿ defender wins") {
		t.Fatalf("expected legend in output: %s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1+1 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "100% │ ") || !strings.HasPrefix(lines[4], "  0% │ ") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
	if got := utf8.RuneCountInString(strings.TrimPrefix(lines[1], "100% │ ")); got != 12 {
		t.Fatalf("expected 12 plot cells, got %d", got)
	}
}

func TestPlotCurvesFullProbabilityOnTopRow(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotCurves(&buf, "", []Series{{Name: "all", Values: []float64{1, 1}}}, 10, 3, false); err != nil {
		t.Fatalf("PlotCurves failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	top := strings.TrimPrefix(lines[0], "100% │ ")
	if strings.ContainsRune(top, '\u2800') {
		t.Fatalf("expected every top cell to carry dots: %q", top)
	}
	bottom := strings.TrimPrefix(lines[2], "  0% │ ")
	if strings.Trim(bottom, "\u2800") != "" {
		t.Fatalf("expected empty bottom row: %q", bottom)
	}
}

func TestPlotCurvesSkipsEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotCurves(&buf, "empty", []Series{{Name: "none"}}, 10, 3, false); err != nil {
		t.Fatalf("PlotCurves failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
