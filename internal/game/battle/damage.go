package battle

import (
	"strconv"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
)

// Integer division floors the non-negative amounts handled here, so each
// multiplier step rounds down on its own.

func times1_5(amount int) int  { return amount * 3 / 2 }
func times0_75(amount int) int { return amount * 3 / 4 }

// OutgoingDamage is the player-to-enemy amount before block: strength is
// added, then enemy vulnerable multiplies by 1.5.
func OutgoingDamage(base, attackerStrength int, defenderVulnerable bool) int {
	amount := max(base+attackerStrength, 0)
	if defenderVulnerable {
		amount = times1_5(amount)
	}
	return amount
}

// IncomingDamage is the enemy-to-player amount before block: enemy strength
// is added, enemy weak multiplies by 0.75, then player vulnerable by 1.5.
// The two multipliers are floored separately, in that order.
func IncomingDamage(base, attackerStrength int, attackerWeak, defenderVulnerable bool) int {
	amount := max(base+attackerStrength, 0)
	if attackerWeak {
		amount = times0_75(amount)
	}
	if defenderVulnerable {
		amount = times1_5(amount)
	}
	return amount
}

// DealDamageToEnemy runs base damage from the player through the outgoing
// pipeline. The battle-end check runs immediately after.
func (s *Session) DealDamageToEnemy(base int) effects.DamageReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealDamageToEnemy(base)
}

// DealDamageToPlayer runs base damage from the enemy through the incoming
// pipeline. The battle-end check runs immediately after.
func (s *Session) DealDamageToPlayer(base int) effects.DamageReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealDamageToPlayer(base)
}

// GainBlock adds block to the player.
func (s *Session) GainBlock(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gainBlock(&s.Player.Combatant, rules.TargetPlayer, amount)
}

func (s *Session) dealDamageToEnemy(base int) effects.DamageReport {
	amount := OutgoingDamage(base,
		s.Player.Statuses.Get(string(status.KindStrength)),
		s.Enemy.Statuses.Has(string(status.KindVulnerable)))
	rep := s.Enemy.absorb(amount)

	s.publishAmount(rules.EventDamageDealt, rules.TargetEnemy, rep.DamageToHP, map[string]string{
		"base":    strconv.Itoa(base),
		"final":   strconv.Itoa(amount),
		"blocked": strconv.Itoa(rep.BlockAbsorbed),
	})
	if rep.BlockAbsorbed > 0 {
		s.logf("You dealt %d damage. Enemy blocked %d damage. %d damage dealt to enemy.", amount, rep.BlockAbsorbed, rep.DamageToHP)
	} else {
		s.logf("You dealt %d damage to the enemy.", rep.DamageToHP)
	}
	s.checkBattleEnd()
	return rep
}

func (s *Session) dealDamageToPlayer(base int) effects.DamageReport {
	amount := IncomingDamage(base,
		s.Enemy.Statuses.Get(string(status.KindStrength)),
		s.Enemy.Statuses.Has(string(status.KindWeak)),
		s.Player.Statuses.Has(string(status.KindVulnerable)))
	rep := s.Player.absorb(amount)

	s.publishAmount(rules.EventDamageTaken, rules.TargetPlayer, rep.DamageToHP, map[string]string{
		"base":    strconv.Itoa(base),
		"final":   strconv.Itoa(amount),
		"blocked": strconv.Itoa(rep.BlockAbsorbed),
	})
	if rep.BlockAbsorbed > 0 {
		s.logf("Enemy dealt %d damage. You blocked %d damage. %d damage taken.", amount, rep.BlockAbsorbed, rep.DamageToHP)
	} else {
		s.logf("Enemy dealt %d damage to you.", rep.DamageToHP)
	}
	s.checkBattleEnd()
	return rep
}

func (s *Session) gainBlock(c *Combatant, target string, amount int) {
	if amount <= 0 {
		return
	}
	c.Block += amount
	s.publishAmount(rules.EventBlockGained, target, amount, nil)
	if target == rules.TargetPlayer {
		s.logf("You gained %d Block.", amount)
	} else {
		s.logf("Enemy gained %d Block.", amount)
	}
}

// hurt damages a combatant through its own block with no modifiers.
func (s *Session) hurt(c *Combatant, target string, amount int) effects.DamageReport {
	rep := c.absorb(amount)
	evt := rules.EventDamageTaken
	if target == rules.TargetEnemy {
		evt = rules.EventHPLost
	}
	s.publishAmount(evt, target, rep.DamageToHP, map[string]string{"self_inflicted": "true"})
	s.checkBattleEnd()
	return rep
}

func (s *Session) loseHP(c *Combatant, target string, amount int) {
	lost := c.loseHP(amount)
	s.publishAmount(rules.EventHPLost, target, lost, nil)
	if target == rules.TargetPlayer {
		s.logf("You lost %d HP.", lost)
	} else {
		s.logf("Enemy lost %d HP.", lost)
	}
	s.checkBattleEnd()
}

func (s *Session) heal(c *Combatant, target string, amount int) int {
	healed := c.heal(amount)
	if healed > 0 {
		s.publishAmount(rules.EventHealed, target, healed, nil)
		if target == rules.TargetPlayer {
			s.logf("You healed %d HP.", healed)
		} else {
			s.logf("Enemy healed %d HP.", healed)
		}
	}
	return healed
}
