// Package battle resolves dice combat between an attacker and a defender.
package battle

import (
	"fmt"

	"github.com/verte-zerg/risk/internal/dice"
)

// Dice caps per roll.
const (
	MaxAttackDice = 3
	MaxDefendDice = 2
)

// Roll is a single dice exchange.
type Roll struct {
	Attack         [MaxAttackDice]int
	Defend         [MaxDefendDice]int
	NAttack        int
	NDefend        int
	AttackerLosses int
	DefenderLosses int
}

// AttackDice returns the attacker's dice, highest first.
func (r Roll) AttackDice() []int {
	return r.Attack[:r.NAttack]
}

// DefendDice returns the defender's dice, highest first.
func (r Roll) DefendDice() []int {
	return r.Defend[:r.NDefend]
}

// RollDice rolls nAttack attacker dice against nDefend defender dice.
// nAttack must be in [1, MaxAttackDice] and nDefend in [1, MaxDefendDice].
func RollDice(roller *dice.Roller, nAttack, nDefend int) Roll {
	if nAttack < 1 || nAttack > MaxAttackDice {
		panic(fmt.Sprintf("battle: attacker dice %d outside [1, %d]", nAttack, MaxAttackDice))
	}
	if nDefend < 1 || nDefend > MaxDefendDice {
		panic(fmt.Sprintf("battle: defender dice %d outside [1, %d]", nDefend, MaxDefendDice))
	}
	r := Roll{NAttack: nAttack, NDefend: nDefend}
	roller.Sorted(r.Attack[:nAttack])
	roller.Sorted(r.Defend[:nDefend])
	r.AttackerLosses, r.DefenderLosses = Compare(r.Attack[:nAttack], r.Defend[:nDefend])
	return r
}

// ResolveRoll rolls the dice and returns the losses for that roll only.
func ResolveRoll(roller *dice.Roller, nAttack, nDefend int) (attackerLosses, defenderLosses int) {
	r := RollDice(roller, nAttack, nDefend)
	return r.AttackerLosses, r.DefenderLosses
}

// Compare pairs already sorted dice by rank. The defender loses a unit when
// its die is strictly lower; otherwise the attacker loses one, so ties go to
// the defender. Unpaired dice have no effect.
func Compare(attack, defend []int) (attackerLosses, defenderLosses int) {
	pairs := min(len(attack), len(defend))
	for i := 0; i < pairs; i++ {
		if defend[i] < attack[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return attackerLosses, defenderLosses
}
