package battle

import (
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/status"
)

const (
	demonFormStrength   = 2
	battleFlowCardCount = 3
)

// registerStatusTriggers wires the player's status effects to turn and card
// events. Triggers fire in registration order.
func (s *Session) registerStatusTriggers() {
	player := &s.Player.Combatant
	has := func(kind status.Kind) func(rules.Event) bool {
		return func(rules.Event) bool { return player.Statuses.Has(string(kind)) }
	}
	magnitude := func(kind status.Kind) int { return player.Statuses.Get(string(kind)) }

	s.triggers.Register(rules.Trigger{
		Name:      "metallicize",
		EventType: rules.EventTurnEnded,
		Condition: has(status.KindMetallicize),
		Fire: func(rules.Event) {
			s.gainBlock(player, rules.TargetPlayer, magnitude(status.KindMetallicize))
		},
	})
	s.triggers.Register(rules.Trigger{
		Name:      "demon_form",
		EventType: rules.EventTurnStarted,
		Condition: has(status.KindDemonForm),
		Fire: func(rules.Event) {
			s.applyStatus(player, rules.TargetPlayer, string(status.KindStrength), demonFormStrength)
		},
	})
	s.triggers.Register(rules.Trigger{
		Name:      "berserk",
		EventType: rules.EventTurnStarted,
		Condition: has(status.KindBerserk),
		Fire: func(rules.Event) {
			s.gainEnergy(magnitude(status.KindBerserk))
		},
	})
	s.triggers.Register(rules.Trigger{
		Name:      "next_turn_block",
		EventType: rules.EventTurnStarted,
		Condition: has(status.KindNextTurnBlock),
		Fire: func(rules.Event) {
			s.gainBlock(player, rules.TargetPlayer, magnitude(status.KindNextTurnBlock))
			s.clearStatus(player, rules.TargetPlayer, string(status.KindNextTurnBlock))
		},
	})
	s.triggers.Register(rules.Trigger{
		Name:      "battle_flow",
		EventType: rules.EventCardPlayed,
		Condition: func(rules.Event) bool {
			return s.active() && player.Statuses.Has(string(status.KindBattleFlow)) &&
				s.cardsPlayedThisTurn%battleFlowCardCount == 0
		},
		Fire: func(rules.Event) {
			(&playerContext{s: s}).DrawCards(1)
		},
	})
}
