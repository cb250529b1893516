package battle

import (
	"fmt"

	"github.com/verte-zerg/risk/internal/dice"
)

// Side identifies a combatant.
type Side int

const (
	SideNone Side = iota
	SideAttacker
	SideDefender
)

func (s Side) String() string {
	switch s {
	case SideAttacker:
		return "attacker"
	case SideDefender:
		return "defender"
	default:
		return "none"
	}
}

// Result totals the losses of a battle.
type Result struct {
	Attackers      int
	Defenders      int
	AttackerLosses int
	DefenderLosses int
	Rolls          int
}

// Winner reports the side left standing, or SideNone while both remain.
func (r Result) Winner() Side {
	switch {
	case r.AttackerLosses == r.Attackers:
		return SideDefender
	case r.DefenderLosses == r.Defenders:
		return SideAttacker
	default:
		return SideNone
	}
}

// Battle tracks the remaining units of a battle fought roll by roll.
type Battle struct {
	attackers int
	defenders int
	remAttack int
	remDefend int
	rolls     int
}

// New starts a battle. Both unit counts must be positive.
func New(attackers, defenders int) *Battle {
	if attackers <= 0 || defenders <= 0 {
		panic(fmt.Sprintf("battle: unit counts must be positive, got %d vs %d", attackers, defenders))
	}
	return &Battle{
		attackers: attackers,
		defenders: defenders,
		remAttack: attackers,
		remDefend: defenders,
	}
}

// Done reports whether either side has no units left.
func (b *Battle) Done() bool {
	return b.remAttack == 0 || b.remDefend == 0
}

// Remaining returns the units each side still has.
func (b *Battle) Remaining() (attackers, defenders int) {
	return b.remAttack, b.remDefend
}

// Step commits as many dice as each side may use and applies one roll.
// Each roll removes at least one unit, and never more than a side committed.
func (b *Battle) Step(roller *dice.Roller) Roll {
	if b.Done() {
		panic("battle: step after the battle ended")
	}
	r := RollDice(roller, min(b.remAttack, MaxAttackDice), min(b.remDefend, MaxDefendDice))
	b.remAttack -= r.AttackerLosses
	b.remDefend -= r.DefenderLosses
	b.rolls++
	return r
}

// Result returns the losses so far.
func (b *Battle) Result() Result {
	return Result{
		Attackers:      b.attackers,
		Defenders:      b.defenders,
		AttackerLosses: b.attackers - b.remAttack,
		DefenderLosses: b.defenders - b.remDefend,
		Rolls:          b.rolls,
	}
}

// Simulate fights a battle until one side is eliminated.
func Simulate(roller *dice.Roller, attackers, defenders int) Result {
	b := New(attackers, defenders)
	for !b.Done() {
		b.Step(roller)
	}
	return b.Result()
}

// SimulateTrace is Simulate that also returns every roll in order.
func SimulateTrace(roller *dice.Roller, attackers, defenders int) (Result, []Roll) {
	b := New(attackers, defenders)
	var rolls []Roll
	for !b.Done() {
		rolls = append(rolls, b.Step(roller))
	}
	return b.Result(), rolls
}
