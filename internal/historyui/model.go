// Package historyui provides the Bubble Tea browser for stored runs.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/risk/internal/estimate"
	"github.com/verte-zerg/risk/internal/model"
	"github.com/verte-zerg/risk/internal/stats"
)

const (
	tabRuns = iota
	tabOutcome
)

const plotHeight = 8

var (
	activeNavStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Loader fetches the estimate behind a stored run.
type Loader func(ctx context.Context, run model.RunRecord) (estimate.Result, error)

// Model implements the Bubble Tea history UI.
type Model struct {
	runs []model.RunRecord
	load Loader

	tabs      []string
	activeTab int
	runTable  table.Model
	outcome   viewport.Model
	selected  int
	errMsg    string

	width  int
	height int
}

// NewModel constructs a history UI over runs, newest last.
func NewModel(runs []model.RunRecord, load Loader) *Model {
	m := &Model{
		runs:     runs,
		load:     load,
		tabs:     []string{"Runs", "Outcome"},
		selected: -1,
		outcome:  viewport.New(0, 0),
	}
	m.runTable = buildRunTable(runs)
	m.runTable.Focus()
	if len(runs) > 0 {
		m.runTable.GotoBottom()
	}
	m.outcome.SetContent("Select a run and press enter.")
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		if m.selected >= 0 {
			m.showRun(m.selected)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l", "tab":
			m.moveTab(1)
			return m, nil
		case "enter":
			if m.activeTab == tabRuns && len(m.runs) > 0 {
				m.showRun(m.runTable.Cursor())
				m.activeTab = tabOutcome
				m.runTable.Blur()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabRuns {
				m.runTable.GotoTop()
			} else {
				m.outcome.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRuns {
				m.runTable.GotoBottom()
			} else {
				m.outcome.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabRuns {
			m.runTable, cmd = m.runTable.Update(msg)
		} else {
			m.outcome, cmd = m.outcome.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), headerHeight)
	body := fitLines(m.renderBody(), bodyHeight)
	footer := fitLines(m.renderFooter(), footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.runTable.SetWidth(m.width)
	m.runTable.SetHeight(max(1, bodyHeight-1))
	m.outcome.Width = m.width
	m.outcome.Height = bodyHeight
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabRuns {
		m.runTable.Focus()
	} else {
		m.runTable.Blur()
	}
}

func (m *Model) showRun(idx int) {
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	m.selected = idx
	run := m.runs[idx]
	res, err := m.load(context.Background(), run)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load run %d: %v", run.ID, err)
		m.outcome.SetContent("Failed to load run.")
		return
	}
	m.errMsg = ""
	m.outcome.SetContent(renderOutcome(run, res, m.width))
	m.outcome.GotoTop()
}

func renderOutcome(run model.RunRecord, res estimate.Result, width int) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Run %d: %d attackers vs. %d defenders, %d trials, seed %d\n",
		run.ID, run.Attackers, run.Defenders, run.Trials, run.Seed)
	if err := stats.RenderEstimate(&buf, res); err != nil {
		return fmt.Sprintf("Failed to render run: %v", err)
	}
	buf.WriteString("\n")
	if width <= 0 {
		width = 80
	}
	if err := stats.PlotCurves(&buf, "Cumulative probability", stats.CumulativeSeries(res), stats.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render plot: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabRuns {
		if len(m.runs) == 0 {
			return "No runs found. Save one with: risk prob --save"
		}
		return m.runTable.View()
	}
	return m.outcome.View()
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Select: enter  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func buildRunTable(runs []model.RunRecord) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 16},
		{Title: "Forces", Width: 9},
		{Title: "Trials", Width: 9},
		{Title: "Attacker", Width: 9},
		{Title: "Defender", Width: 9},
		{Title: "Seed", Width: 20},
	}
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row(stats.RunRow(run)))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(10),
	)
	t.SetStyles(runTableStyles())
	return t
}

func runTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func fitLines(s string, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
