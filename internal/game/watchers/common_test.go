package watchers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

func cardEvent(eventType rules.EventType, category, block string) rules.Event {
	evt := rules.NewEvent(eventType, "battle-1", rules.TargetPlayer)
	evt.Metadata[MetaCategory] = category
	evt.Metadata[MetaBlock] = block
	return evt
}

func TestBattleStatsWatcher(t *testing.T) {
	w := NewBattleStatsWatcher()
	assert.Equal(t, KeyBattleStats, w.GetKey())
	assert.Equal(t, rules.WatcherScopeBattle, w.GetScope())

	w.Watch(cardEvent(rules.EventCardPlayed, "attack", "0"))
	w.Watch(cardEvent(rules.EventCardPlayed, "skill", "5"))
	w.Watch(cardEvent(rules.EventCardPlayed, "power", "0"))
	w.Watch(cardEvent(rules.EventCardConverted, "skill", "8"))
	w.Watch(rules.NewEventWithAmount(rules.EventDamageDealt, "battle-1", rules.TargetEnemy, 6))
	w.Watch(rules.NewEventWithAmount(rules.EventDamageDealt, "battle-1", rules.TargetEnemy, 14))
	w.Watch(rules.NewEventWithAmount(rules.EventDamageTaken, "battle-1", rules.TargetPlayer, 8))
	w.Watch(rules.NewEventWithAmount(rules.EventBlockGained, "battle-1", rules.TargetPlayer, 5))
	w.Watch(rules.NewEventWithAmount(rules.EventBlockGained, "battle-1", rules.TargetEnemy, 10))
	w.Watch(rules.NewEventWithAmount(rules.EventCurrencyGained, "battle-1", rules.TargetPlayer, 8))
	w.Watch(rules.NewEvent(rules.EventTurnEnded, "battle-1", rules.TargetPlayer))

	assert.True(t, w.ConditionMet())
	assert.Equal(t, BattleStats{
		CardsPlayed:    3,
		AttacksPlayed:  1,
		DefensePlayed:  1,
		CardsConverted: 1,
		DamageDealt:    20,
		DamageTaken:    8,
		BlockGained:    5,
		CurrencyGained: 8,
		BiggestHit:     14,
		TurnsTaken:     1,
	}, w.Stats())

	w.Reset()
	assert.Equal(t, BattleStats{}, w.Stats())
	assert.False(t, w.ConditionMet())
}

func TestTurnStatsWatcherResetsWithTurnScope(t *testing.T) {
	registry := rules.NewWatcherRegistry()
	turn := NewTurnStatsWatcher()
	battle := NewBattleStatsWatcher()
	registry.AddWatcher(turn)
	registry.AddWatcher(battle)

	registry.NotifyWatchers(cardEvent(rules.EventCardPlayed, "attack", "0"))
	registry.NotifyWatchers(cardEvent(rules.EventCardConverted, "skill", "5"))
	registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventDamageDealt, "battle-1", rules.TargetEnemy, 9))
	assert.Equal(t, TurnStats{CardsPlayed: 2, AttacksPlayed: 1, DamageDealt: 9}, turn.Stats())

	registry.ResetWatchersByScope(rules.WatcherScopeTurn)
	assert.Equal(t, TurnStats{}, turn.Stats())
	assert.Equal(t, 1, battle.Stats().CardsPlayed)
}

func TestCardsDrawnWatcher(t *testing.T) {
	w := NewCardsDrawnWatcher()
	w.Watch(rules.NewEventWithAmount(rules.EventCardsDrawn, "battle-1", rules.TargetPlayer, 5))
	w.Watch(rules.NewEvent(rules.EventReshuffled, "battle-1", rules.TargetPlayer))
	w.Watch(rules.NewEventWithAmount(rules.EventCardsDrawn, "battle-1", rules.TargetPlayer, 2))
	w.Watch(rules.NewEvent(rules.EventLog, "battle-1", ""))

	assert.Equal(t, 7, w.Drawn())
	assert.Equal(t, 1, w.Reshuffles())
	w.Reset()
	assert.Zero(t, w.Drawn())
}
