package battle

import (
	"context"

	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

// EndTurnResult reports an EndTurn call.
type EndTurnResult struct {
	Accepted  bool       `json:"accepted"`
	Reason    string     `json:"reason,omitempty"`
	EnemyMove string     `json:"enemy_move,omitempty"`
	Outcome   Outcome    `json:"outcome"`
	Turn      int        `json:"turn"`
	Log       []LogEntry `json:"log,omitempty"`
}

// EndTurn ends the player turn, runs the enemy turn and, unless the battle
// ended, starts the next player turn.
func (s *Session) EndTurn(ctx context.Context) EndTurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginAction()

	if !s.active() {
		return EndTurnResult{Reason: ReasonInactive, Outcome: s.outcome, Turn: s.turn.TurnNumber()}
	}
	if s.turn.Current() != rules.StatePlayerTurn {
		return EndTurnResult{Reason: ReasonNotPlayerTurn, Outcome: s.outcome, Turn: s.turn.TurnNumber()}
	}

	s.endPlayerTurn()
	if err := s.turn.EndPlayerTurn(ctx); err != nil {
		s.violation("turn machine refused end of turn", zap.Error(err))
	}

	moveName := ""
	if !s.Enemy.Dead() {
		moveName = s.runEnemyTurn()
	}

	if !s.checkBattleEnd() {
		if err := s.turn.BeginPlayerTurn(ctx); err != nil {
			s.violation("turn machine refused next turn", zap.Error(err))
		}
		s.startPlayerTurn()
	}
	s.checkInvariants()

	return EndTurnResult{
		Accepted:  true,
		EnemyMove: moveName,
		Outcome:   s.outcome,
		Turn:      s.turn.TurnNumber(),
		Log:       s.actionLog,
	}
}

// endPlayerTurn applies end-of-turn triggers, decays the player's statuses
// and discards the hand.
func (s *Session) endPlayerTurn() {
	s.emit(s.newEvent(rules.EventTurnEnded, rules.TargetPlayer))
	s.decayStatuses(&s.Player.Combatant, rules.TargetPlayer)
	if n := s.Supply.DiscardHand(); n > 0 {
		s.publishAmount(rules.EventHandDiscarded, rules.TargetPlayer, n, nil)
	}
}

// runEnemyTurn executes the telegraphed move, decays the enemy's statuses
// and telegraphs the next move.
func (s *Session) runEnemyTurn() string {
	move := s.Enemy.Intent
	if move == nil {
		m := enemies.SelectMove(s.Enemy.Moves, s.Enemy.HP, s.Enemy.MaxHP, s.src)
		move = &m
	}

	s.interpreter.Run(&enemyContext{s: s}, move.Effect)
	s.logf("Enemy used %s.", move.Name)
	evt := s.newEvent(rules.EventEnemyMoved, rules.TargetEnemy)
	evt.Data = move.Name
	evt.Description = move.Description
	s.bus.Publish(evt)

	s.decayStatuses(&s.Enemy.Combatant, rules.TargetEnemy)
	s.rollIntent()
	return move.Name
}

// startPlayerTurn refills energy, applies start-of-turn triggers, draws the
// hand and resets the per-turn counters.
func (s *Session) startPlayerTurn() {
	s.Player.Energy = s.Player.MaxEnergy
	s.watchers.ResetWatchersByScope(rules.WatcherScopeTurn)
	s.emit(s.newEvent(rules.EventTurnStarted, rules.TargetPlayer))
	s.draw(s.cfg.HandSize)
	s.cardsPlayedThisTurn = 0
	s.logf("Your turn begins.")
}
