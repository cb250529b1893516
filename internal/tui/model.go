// Package tui provides the Bubble Tea roll-by-roll battle interface.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/dice"
)

const logSize = 8

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	attackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	defendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4DA3FF")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	dieStyle    = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true)
	winnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea battle UI.
type Model struct {
	attackers int
	defenders int
	roller    *dice.Roller

	battle *battle.Battle
	last   *battle.Roll
	// log holds the most recent rolls, at most logSize.
	log    []battle.Roll
	rolls  int

	width  int
	height int
}

// NewModel constructs a battle UI for the given forces.
func NewModel(attackers, defenders int, roller *dice.Roller) *Model {
	m := &Model{
		attackers: attackers,
		defenders: defenders,
		roller:    roller,
	}
	m.reset()
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
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ", "space", "enter":
			m.step()
		case "a":
			for !m.battle.Done() {
				m.step()
			}
		case "r":
			m.reset()
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render(fmt.Sprintf("Battle: %d attackers vs. %d defenders", m.attackers, m.defenders)),
		m.renderForces(),
		m.renderLastRoll(),
		m.renderLog(),
		m.renderFooter(),
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) reset() {
	m.battle = battle.New(m.attackers, m.defenders)
	m.last = nil
	m.log = nil
	m.rolls = 0
}

func (m *Model) step() {
	if m.battle.Done() {
		return
	}
	r := m.battle.Step(m.roller)
	m.last = &r
	m.rolls++
	m.log = append(m.log, r)
	if len(m.log) > logSize {
		m.log = append(m.log[:0], m.log[len(m.log)-logSize:]...)
	}
}

func (m *Model) renderForces() string {
	remA, remD := m.battle.Remaining()
	attack := fmt.Sprintf("%s %d/%d", attackStyle.Render("Attacker"), remA, m.attackers)
	defend := fmt.Sprintf("%s %d/%d", defendStyle.Render("Defender"), remD, m.defenders)
	return panelStyle.Render(attack + "    " + defend)
}

func (m *Model) renderLastRoll() string {
	if m.last == nil {
		return mutedStyle.Render("No dice rolled yet.")
	}
	attack := renderDice(m.last.AttackDice(), attackStyle)
	defend := renderDice(m.last.DefendDice(), defendStyle)
	outcome := mutedStyle.Render(fmt.Sprintf("attacker -%d  defender -%d", m.last.AttackerLosses, m.last.DefenderLosses))
	return lipgloss.JoinVertical(lipgloss.Left, attack, defend, outcome)
}

func renderDice(values []int, style lipgloss.Style) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = dieStyle.BorderForeground(style.GetForeground()).Render(style.Render(strconv.Itoa(v)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderLog() string {
	if len(m.log) == 0 {
		return ""
	}
	first := m.rolls - len(m.log) + 1
	lines := make([]string, 0, len(m.log))
	for i, r := range m.log {
		lines = append(lines, fmt.Sprintf("#%-3d %-7s vs %-5s  -%d/-%d",
			first+i, joinDice(r.AttackDice()), joinDice(r.DefendDice()), r.AttackerLosses, r.DefenderLosses))
	}
	return mutedStyle.Render(strings.Join(lines, "\n"))
}

func joinDice(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	if m.battle.Done() {
		res := m.battle.Result()
		summary := fmt.Sprintf("%s wins after %d rolls (attacker lost %d, defender lost %d)",
			res.Winner(), res.Rolls, res.AttackerLosses, res.DefenderLosses)
		return winnerStyle.Render(summary) + "\n" + footerStyle.Render("r: restart  q: quit")
	}
	return footerStyle.Render(fmt.Sprintf("Roll %d  space: roll  a: auto-resolve  r: restart  q: quit", m.rolls+1))
}
