package battle

import (
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
)

// Combatant is the state shared by the player and the enemy.
type Combatant struct {
	HP       int
	MaxHP    int
	Block    int
	Statuses *status.Table
}

func newCombatant(hp, maxHP int, registry *status.Registry) Combatant {
	return Combatant{
		HP:       hp,
		MaxHP:    maxHP,
		Statuses: status.NewTable(registry),
	}
}

// Dead reports whether hp reached 0.
func (c *Combatant) Dead() bool {
	return c.HP <= 0
}

// absorb applies final damage: block first, hp second, hp floored at 0.
// The report counts only hp actually lost.
func (c *Combatant) absorb(amount int) effects.DamageReport {
	if amount <= 0 {
		return effects.DamageReport{}
	}
	blocked := min(c.Block, amount)
	c.Block -= blocked
	toHP := min(amount-blocked, c.HP)
	c.HP -= toHP
	return effects.DamageReport{DamageToHP: toHP, BlockAbsorbed: blocked}
}

func (c *Combatant) heal(amount int) int {
	if amount <= 0 || c.Dead() {
		return 0
	}
	healed := min(amount, c.MaxHP-c.HP)
	c.HP += healed
	return healed
}

func (c *Combatant) loseHP(amount int) int {
	lost := min(max(amount, 0), c.HP)
	c.HP -= lost
	return lost
}

// Player is the player's side of a battle.
type Player struct {
	Combatant
	Energy    int
	MaxEnergy int
}

// Enemy is the enemy's side of a battle.
type Enemy struct {
	Combatant
	TemplateID int
	Name       string
	Moves      []enemies.Move
	Intent     *enemies.Move
}
