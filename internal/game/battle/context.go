package battle

import (
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
)

// playerContext runs card programs with the player as actor.
type playerContext struct {
	s *Session
}

var _ effects.Context = (*playerContext)(nil)

func (c *playerContext) DealDamage(base int) effects.DamageReport {
	return c.s.dealDamageToEnemy(base)
}

func (c *playerContext) GainBlock(amount int) {
	c.s.gainBlock(&c.s.Player.Combatant, rules.TargetPlayer, amount)
}

func (c *playerContext) ApplyStatus(target effects.Target, name string, amount int) {
	if target == effects.TargetFoe {
		c.s.applyStatus(&c.s.Enemy.Combatant, rules.TargetEnemy, name, amount)
		return
	}
	c.s.applyStatus(&c.s.Player.Combatant, rules.TargetPlayer, name, amount)
}

func (c *playerContext) DrawCards(n int) int {
	if c.s.Player.Statuses.Has(string(status.KindNoDraw)) {
		c.s.logf("You cannot draw additional cards this turn.")
		return 0
	}
	return c.s.draw(n)
}

func (c *playerContext) Heal(amount int) int {
	return c.s.heal(&c.s.Player.Combatant, rules.TargetPlayer, amount)
}

func (c *playerContext) Hurt(amount int) effects.DamageReport {
	rep := c.s.hurt(&c.s.Player.Combatant, rules.TargetPlayer, amount)
	c.s.logf("You took %d damage.", rep.DamageToHP)
	return rep
}

func (c *playerContext) LoseHP(amount int) {
	c.s.loseHP(&c.s.Player.Combatant, rules.TargetPlayer, amount)
}

func (c *playerContext) Energy() int {
	return c.s.Player.Energy
}

func (c *playerContext) GainEnergy(amount int) {
	c.s.gainEnergy(amount)
}

func (c *playerContext) SpendEnergy() {
	c.s.Player.Energy = 0
}

func (c *playerContext) ReshuffleDiscard() {
	moved := c.s.Supply.ReshuffleDiscard()
	c.s.publishAmount(rules.EventReshuffled, rules.TargetPlayer, moved, nil)
	c.s.logf("Shuffled %d cards from your discard pile into your draw pile.", moved)
}

func (c *playerContext) CopyCheapest() {
	cheapest, ok := c.s.Supply.Cheapest()
	if !ok {
		return
	}
	copied := cards.NewInstance(cheapest.Card)
	c.s.Supply.AddToHand(copied)
	evt := c.s.cardEvent(rules.EventCardCopied, copied)
	c.s.bus.Publish(evt)
	c.s.logf("Added a copy of %s to your hand.", copied.Name)
}

// enemyContext runs move programs with the enemy as actor. The enemy has no
// card supply or energy, so those capabilities do nothing.
type enemyContext struct {
	s *Session
}

var _ effects.Context = (*enemyContext)(nil)

func (c *enemyContext) DealDamage(base int) effects.DamageReport {
	return c.s.dealDamageToPlayer(base)
}

func (c *enemyContext) GainBlock(amount int) {
	c.s.gainBlock(&c.s.Enemy.Combatant, rules.TargetEnemy, amount)
}

func (c *enemyContext) ApplyStatus(target effects.Target, name string, amount int) {
	if target == effects.TargetFoe {
		c.s.applyStatus(&c.s.Player.Combatant, rules.TargetPlayer, name, amount)
		return
	}
	c.s.applyStatus(&c.s.Enemy.Combatant, rules.TargetEnemy, name, amount)
}

func (c *enemyContext) DrawCards(int) int { return 0 }

func (c *enemyContext) Heal(amount int) int {
	return c.s.heal(&c.s.Enemy.Combatant, rules.TargetEnemy, amount)
}

func (c *enemyContext) Hurt(amount int) effects.DamageReport {
	return c.s.hurt(&c.s.Enemy.Combatant, rules.TargetEnemy, amount)
}

func (c *enemyContext) LoseHP(amount int) {
	c.s.loseHP(&c.s.Enemy.Combatant, rules.TargetEnemy, amount)
}

func (c *enemyContext) Energy() int { return 0 }
func (c *enemyContext) GainEnergy(int) {}
func (c *enemyContext) SpendEnergy() {}
func (c *enemyContext) ReshuffleDiscard() {}
func (c *enemyContext) CopyCheapest() {}
