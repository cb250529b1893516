// Package model defines shared data structures.
package model

import "time"

// SimConfig defines settings for a single battle.
type SimConfig struct {
	Attackers int
	Defenders int
	Seed      int64
	Verbose   bool
}

// ProbConfig defines settings for a probability estimate.
type ProbConfig struct {
	Attackers int
	Defenders int
	Trials    int
	Workers   int
	Seed      int64
	Format    string
	Save      bool
	Plot      bool
	Copy      bool
}

// HistoryConfig defines filters for stored runs.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}

// RunRecord is a stored probability estimate.
type RunRecord struct {
	ID           int64
	CreatedAt    time.Time
	Attackers    int
	Defenders    int
	Trials       int
	Workers      int
	Seed         int64
	AttackerWins int
	DefenderWins int
	DurationMs   int64
}

// Side labels used for stored histogram bins.
const (
	SideAttacker = "attacker"
	SideDefender = "defender"
)

// BinRecord is one stored histogram bin of a run.
type BinRecord struct {
	Side   string
	Losses int
	Count  int
}
