package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
)

func TestDealDamageToEnemyWithoutBlock(t *testing.T) {
	h := newHarness(t, dummyEnemy())

	rep := h.session.DealDamageToEnemy(10)

	assert.Equal(t, effects.DamageReport{DamageToHP: 10, BlockAbsorbed: 0}, rep)
	assert.Equal(t, 90, h.session.Enemy.HP)
}

func TestDealDamageToEnemyThroughBlock(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.Enemy.Block = 5

	rep := h.session.DealDamageToEnemy(10)

	assert.Equal(t, effects.DamageReport{DamageToHP: 5, BlockAbsorbed: 5}, rep)
	assert.Equal(t, 0, h.session.Enemy.Block)
	assert.Equal(t, 95, h.session.Enemy.HP)
}

func TestOutgoingStrengthThenVulnerable(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.Player.Statuses.Apply("strength", 2)
	h.session.Enemy.Statuses.Apply("vulnerable", 1)

	rep := h.session.DealDamageToEnemy(5)

	assert.Equal(t, 10, rep.DamageToHP, "floor((5+2)*1.5)")
	assert.Equal(t, 18, OutgoingDamage(10, 2, true))
	assert.Equal(t, 12, OutgoingDamage(10, 2, false))
}

func TestIncomingWeakAttacker(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.Enemy.Statuses.Apply("weak", 1)

	rep := h.session.DealDamageToPlayer(10)

	assert.Equal(t, 7, rep.DamageToHP)
	assert.Equal(t, 93, h.session.Player.HP)
}

func TestIncomingWeakThenVulnerableFloorsTwice(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.Enemy.Statuses.Apply("weak", 1)
	h.session.Player.Statuses.Apply("vulnerable", 1)

	rep := h.session.DealDamageToPlayer(10)

	assert.Equal(t, 10, rep.DamageToHP, "floor(floor(10*0.75)*1.5), not floor(10*0.75*1.5)")
	assert.Equal(t, 10, IncomingDamage(10, 0, true, true))
	assert.Equal(t, 15, IncomingDamage(10, 0, false, true))
	assert.Equal(t, 9, IncomingDamage(10, 2, true, false), "strength is added before weak")
}

func TestIncomingDamageAbsorbedByPlayerBlock(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.GainBlock(6)

	rep := h.session.DealDamageToPlayer(10)

	assert.Equal(t, effects.DamageReport{DamageToHP: 4, BlockAbsorbed: 6}, rep)
	assert.Equal(t, 0, h.session.Player.Block)
	assert.Equal(t, 96, h.session.Player.HP)
}

func TestDamageFloorsHPAtZero(t *testing.T) {
	h := newHarness(t, dummyEnemy())
	h.session.Enemy.HP = 4

	rep := h.session.DealDamageToEnemy(10)
	assert.Equal(t, 4, rep.DamageToHP, "only hp actually lost is reported")
	assert.Equal(t, 0, h.session.Enemy.HP)
	assert.Equal(t, OutcomeWon, h.session.Outcome())

	rep = h.session.DealDamageToEnemy(10)
	assert.Equal(t, effects.DamageReport{}, rep)
	assert.Equal(t, 0, h.session.Enemy.HP)
	assert.Len(t, h.eventsOf("BATTLE_ENDED"), 1, "the result is reported once")
}
