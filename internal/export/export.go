// Package export writes estimates in machine-readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/estimate"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// Document is the serialized form of an estimate.
type Document struct {
	Attackers      int        `json:"attackers" yaml:"attackers"`
	Defenders      int        `json:"defenders" yaml:"defenders"`
	Trials         int        `json:"trials" yaml:"trials"`
	Seed           int64      `json:"seed" yaml:"seed"`
	AttackerWin    float64    `json:"attacker_win" yaml:"attacker_win"`
	DefenderWin    float64    `json:"defender_win" yaml:"defender_win"`
	AttackerLosses float64    `json:"expected_attacker_losses" yaml:"expected_attacker_losses"`
	DefenderLosses float64    `json:"expected_defender_losses" yaml:"expected_defender_losses"`
	AttackerWins   []BinEntry `json:"attacker_wins" yaml:"attacker_wins"`
	DefenderWins   []BinEntry `json:"defender_wins" yaml:"defender_wins"`
}

// BinEntry is one histogram row.
type BinEntry struct {
	ArmiesLost  int     `json:"armies_lost" yaml:"armies_lost"`
	Count       int     `json:"count" yaml:"count"`
	Probability float64 `json:"probability" yaml:"probability"`
	Cumulative  float64 `json:"cumulative" yaml:"cumulative"`
}

// NewDocument builds a Document from an estimate.
func NewDocument(res estimate.Result, seed int64) Document {
	lossA, lossD := res.ExpectedLosses()
	return Document{
		Attackers:      res.Attackers,
		Defenders:      res.Defenders,
		Trials:         res.Trials,
		Seed:           seed,
		AttackerWin:    res.WinProbability(battle.SideAttacker),
		DefenderWin:    res.WinProbability(battle.SideDefender),
		AttackerLosses: lossA,
		DefenderLosses: lossD,
		AttackerWins:   entries(res.AttackerBins()),
		DefenderWins:   entries(res.DefenderBins()),
	}
}

func entries(bins []estimate.Bin) []BinEntry {
	out := make([]BinEntry, len(bins))
	for i, b := range bins {
		out[i] = BinEntry{ArmiesLost: b.Index, Count: b.Count, Probability: b.Probability, Cumulative: b.Cumulative}
	}
	return out
}

// Write encodes doc to w. FormatTable is not handled here.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("format %q cannot be encoded", format)
	}
}
