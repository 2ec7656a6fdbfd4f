package battle

import (
	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

// PlayResult reports a PlayCard call. A refused play changes nothing.
type PlayResult struct {
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Card     *cards.View    `json:"card,omitempty"`
	Effect   effects.Result `json:"effect"`
	Outcome  Outcome        `json:"outcome"`
	Log      []LogEntry     `json:"log,omitempty"`
}

// ConvertResult reports a ConvertToCurrency call.
type ConvertResult struct {
	Accepted       bool        `json:"accepted"`
	Reason         string      `json:"reason,omitempty"`
	Card           *cards.View `json:"card,omitempty"`
	CurrencyGained int         `json:"currency_gained"`
	Log            []LogEntry  `json:"log,omitempty"`
}

// CanPlayCard reports whether the card can be played now: the battle is
// active, the card is in hand and the player has enough energy.
func (s *Session) CanPlayCard(card *cards.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refusal(card) == ""
}

func (s *Session) refusal(card *cards.Instance) string {
	switch {
	case !s.active():
		return ReasonInactive
	case s.turn.Current() != rules.StatePlayerTurn:
		return ReasonNotPlayerTurn
	case card == nil || !s.Supply.InHand(card):
		return ReasonNotInHand
	case s.Player.Energy < card.Cost:
		return ReasonNoEnergy
	}
	return ""
}

// PlayCard plays the given hand instance: it leaves the hand, its cost is
// paid, its effect runs and it goes to the discard pile. Refused plays are
// reported in the result, never as errors.
func (s *Session) PlayCard(card *cards.Instance) PlayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginAction()

	if reason := s.refusal(card); reason != "" {
		return PlayResult{Reason: reason, Outcome: s.outcome}
	}

	s.takeFromHand(card)
	res := s.interpreter.Run(&playerContext{s: s}, card.Effect)
	s.Supply.PutInDiscard(card)
	s.logf("You played %s.", card.Name)

	s.cardsPlayedThisTurn++
	s.emit(s.cardEvent(rules.EventCardPlayed, card))
	s.checkBattleEnd()
	s.checkInvariants()

	s.logger.Debug("card played",
		zap.String("card", card.Name),
		zap.String("instance_id", card.InstanceID),
		zap.Int("damage_to_hp", res.DamageToHP),
		zap.Int("energy_left", s.Player.Energy),
	)

	view := card.ToView()
	return PlayResult{
		Accepted: true,
		Card:     &view,
		Effect:   res,
		Outcome:  s.outcome,
		Log:      s.actionLog,
	}
}

// ConvertToCurrency redeems a card with a block value for that much
// currency instead of playing it. It costs the same energy and counts as a
// card played this turn.
func (s *Session) ConvertToCurrency(card *cards.Instance) ConvertResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginAction()

	if reason := s.refusal(card); reason != "" {
		return ConvertResult{Reason: reason}
	}
	if !card.Convertible() {
		return ConvertResult{Reason: ReasonNotConvertible}
	}

	s.takeFromHand(card)
	s.currencyGained += card.Block
	s.publishAmount(rules.EventCurrencyGained, rules.TargetPlayer, card.Block, nil)
	s.logf("Converted %s into %d gold.", card.Name, card.Block)
	s.Supply.PutInDiscard(card)

	s.cardsPlayedThisTurn++
	s.emit(s.cardEvent(rules.EventCardConverted, card))
	s.checkInvariants()

	view := card.ToView()
	return ConvertResult{
		Accepted:       true,
		Card:           &view,
		CurrencyGained: card.Block,
		Log:            s.actionLog,
	}
}

// takeFromHand removes the instance from hand and pays its cost.
func (s *Session) takeFromHand(card *cards.Instance) {
	if !s.Supply.RemoveFromHand(card) {
		s.violation("playable card missing from hand", zap.String("instance_id", card.InstanceID))
	}
	s.Player.Energy -= card.Cost
	if s.Player.Energy < 0 {
		s.violation("energy went negative", zap.Int("energy", s.Player.Energy))
	}
}
