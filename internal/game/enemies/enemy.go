// Package enemies holds enemy templates and move selection.
package enemies

import (
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

// Eligibility gates a move on the enemy's health. Zero fields impose no
// condition; all set conditions must hold.
type Eligibility struct {
	// HPAboveFraction requires hp > maxHp * fraction.
	HPAboveFraction float64 `json:"hp_above_fraction,omitempty" yaml:"hp_above_fraction"`
	// HPBelowFraction requires hp < maxHp * fraction.
	HPBelowFraction float64 `json:"hp_below_fraction,omitempty" yaml:"hp_below_fraction"`
	// HPAbove requires hp > n.
	HPAbove int `json:"hp_above,omitempty" yaml:"hp_above"`
}

// Allows evaluates the conditions against the given health.
func (e *Eligibility) Allows(hp, maxHP int) bool {
	if e == nil {
		return true
	}
	if e.HPAboveFraction > 0 && !(float64(hp) > float64(maxHP)*e.HPAboveFraction) {
		return false
	}
	if e.HPBelowFraction > 0 && !(float64(hp) < float64(maxHP)*e.HPBelowFraction) {
		return false
	}
	if e.HPAbove > 0 && hp <= e.HPAbove {
		return false
	}
	return true
}

// Move is one entry of an enemy's move table.
type Move struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Script      string          `json:"-" yaml:"effect"`
	Effect      effects.Program `json:"-" yaml:"-"`
	When        *Eligibility    `json:"-" yaml:"when"`
}

// Confused is used when no move of the table is eligible.
var Confused = Move{Name: "Confused", Description: "Does nothing"}

// Template describes an enemy type.
type Template struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	MaxHP int    `json:"max_hp" yaml:"hp"`
	Moves []Move `json:"moves" yaml:"moves"`
}

// Clone returns a copy whose move table can be held by one battle.
func (t Template) Clone() Template {
	t.Moves = append([]Move(nil), t.Moves...)
	return t
}

// EligibleMoves filters the move table against the given health, keeping
// table order.
func EligibleMoves(moves []Move, hp, maxHP int) []Move {
	var eligible []Move
	for _, m := range moves {
		if m.When.Allows(hp, maxHP) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

// SelectMove picks the next intent uniformly among eligible moves, or
// Confused when none is eligible. It only reads its arguments.
func SelectMove(moves []Move, hp, maxHP int, src rng.Source) Move {
	eligible := EligibleMoves(moves, hp, maxHP)
	if len(eligible) == 0 {
		return Confused
	}
	return eligible[src.IntN(len(eligible))]
}
