package battle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/supply"
	"github.com/magefree/deckbattle-server-go/internal/game/watchers"
)

// Outcome is the result of a battle.
type Outcome string

const (
	OutcomeOngoing   Outcome = "ongoing"
	OutcomeWon       Outcome = "won"
	OutcomeLost      Outcome = "lost"
	OutcomeAbandoned Outcome = "abandoned"
)

// Reasons an action is refused.
const (
	ReasonInactive       = "battle is not active"
	ReasonNotPlayerTurn  = "not the player's turn"
	ReasonNotInHand      = "card is not in hand"
	ReasonNoEnergy       = "not enough energy"
	ReasonNotConvertible = "card has no block value"
)

// Session is one battle between the player and an enemy. It exclusively
// owns its combatants and card supply. Exported methods are safe for
// concurrent use; every action runs to completion under the session lock.
type Session struct {
	ID     string
	Player Player
	Enemy  Enemy
	Supply *supply.Supply

	cfg         Config
	logger      *zap.Logger
	src         rng.Source
	interpreter *effects.Interpreter
	turn        *rules.TurnManager
	bus         *rules.EventBus
	triggers    *rules.TriggerManager
	watchers    *rules.WatcherRegistry
	stats       *watchers.BattleStatsWatcher
	turnStats   *watchers.TurnStatsWatcher
	drawStats   *watchers.CardsDrawnWatcher

	log                 *battleLog
	actionLog           []LogEntry
	pending             []rules.Event
	cardsPlayedThisTurn int
	currencyGained      int
	outcome             Outcome
	startedAt           time.Time
	endedAt             time.Time

	mu sync.Mutex
}

type sessionParams struct {
	id          string
	cfg         Config
	deck        []cards.Card
	enemy       enemies.Template
	playerHP    int
	src         rng.Source
	interpreter *effects.Interpreter
	logger      *zap.Logger
}

// newSession builds the battle state, shuffles the deck, telegraphs the
// first intent and draws the opening hand.
func newSession(p sessionParams) *Session {
	registry := p.cfg.statusRegistry()
	hp := p.playerHP
	if hp <= 0 || hp > p.cfg.PlayerMaxHP {
		hp = p.cfg.PlayerMaxHP
	}

	instances := make([]*cards.Instance, 0, len(p.deck))
	for _, card := range p.deck {
		instances = append(instances, cards.NewInstance(card))
	}

	enemy := p.enemy.Clone()
	s := &Session{
		ID: p.id,
		Player: Player{
			Combatant: newCombatant(hp, p.cfg.PlayerMaxHP, registry),
			MaxEnergy: p.cfg.PlayerMaxEnergy,
		},
		Enemy: Enemy{
			Combatant:  newCombatant(enemy.MaxHP, enemy.MaxHP, registry),
			TemplateID: enemy.ID,
			Name:       enemy.Name,
			Moves:      enemy.Moves,
		},
		Supply:      supply.New(instances, p.src),
		cfg:         p.cfg,
		logger:      p.logger.With(zap.String("battle_id", p.id)),
		src:         p.src,
		interpreter: p.interpreter,
		turn:        rules.NewTurnManager(),
		bus:         rules.NewEventBus(),
		triggers:    rules.NewTriggerManager(),
		watchers:    rules.NewWatcherRegistry(),
		stats:       watchers.NewBattleStatsWatcher(),
		turnStats:   watchers.NewTurnStatsWatcher(),
		drawStats:   watchers.NewCardsDrawnWatcher(),
		log:         newBattleLog(p.cfg.LogCapacity),
		outcome:     OutcomeOngoing,
		startedAt:   time.Now(),
	}

	s.watchers.AddWatcher(s.stats)
	s.watchers.AddWatcher(s.turnStats)
	s.watchers.AddWatcher(s.drawStats)
	s.bus.Subscribe(func(evt rules.Event) {
		s.pending = append(s.pending, evt)
	})
	s.bus.Subscribe(s.watchers.NotifyWatchers)
	s.turn.OnTransition(func(from, to rules.State) {
		evt := s.newEvent(rules.EventStateChanged, "")
		evt.Data = string(to)
		evt.Metadata["from"] = string(from)
		s.bus.Publish(evt)
	})
	s.registerStatusTriggers()

	s.Supply.Shuffle()
	s.logf("Battle with %s begins!", s.Enemy.Name)
	started := s.newEvent(rules.EventBattleStarted, rules.TargetEnemy)
	started.Data = s.Enemy.Name
	started.Metadata["enemy_id"] = strconv.Itoa(s.Enemy.TemplateID)
	s.bus.Publish(started)
	s.rollIntent()
	s.startPlayerTurn()
	s.checkInvariants()

	s.logger.Info("battle started",
		zap.String("enemy", s.Enemy.Name),
		zap.Int("deck_size", s.Supply.DeckSize()),
		zap.Int("player_hp", s.Player.HP),
	)
	return s
}

// Subscribe registers a listener on the session's event stream. Listeners
// run synchronously inside the action and must not call back into the
// session.
func (s *Session) Subscribe(listener rules.Listener) int {
	return s.bus.Subscribe(listener)
}

// Unsubscribe removes a listener registered with Subscribe.
func (s *Session) Unsubscribe(handle int) {
	s.bus.Unsubscribe(handle)
}

// IsActive reports whether actions are still accepted.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active()
}

func (s *Session) active() bool {
	return s.outcome == OutcomeOngoing && s.turn.IsActive()
}

// Outcome returns the current result.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// State returns the turn machine state.
func (s *Session) State() rules.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.Current()
}

// TurnNumber returns the current turn, starting at 1.
func (s *Session) TurnNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.TurnNumber()
}

// CardsPlayedThisTurn returns the number of cards played or converted in
// the current player turn.
func (s *Session) CardsPlayedThisTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cardsPlayedThisTurn
}

// HandCard looks a card up in hand by instance id.
func (s *Session) HandCard(instanceID string) (*cards.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Supply.FindInHand(instanceID)
}

// Log returns the retained battle log lines, oldest first.
func (s *Session) Log() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.lines()
}

// drainEvents returns and clears the events published since the last call.
func (s *Session) drainEvents() []rules.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.pending
	s.pending = nil
	return events
}

func (s *Session) beginAction() {
	s.actionLog = nil
}

func (s *Session) newEvent(eventType rules.EventType, target string) rules.Event {
	evt := rules.NewEvent(eventType, s.ID, target)
	evt.Turn = s.turn.TurnNumber()
	return evt
}

func (s *Session) publishAmount(eventType rules.EventType, target string, amount int, metadata map[string]string) {
	evt := s.newEvent(eventType, target)
	evt.Amount = amount
	for k, v := range metadata {
		evt.Metadata[k] = v
	}
	s.bus.Publish(evt)
}

// emit runs matching status triggers, then publishes the event.
func (s *Session) emit(evt rules.Event) {
	s.triggers.Handle(evt)
	s.bus.Publish(evt)
}

func targetName(target string) string {
	if target == rules.TargetPlayer {
		return "You"
	}
	return "Enemy"
}

func (s *Session) applyStatus(c *Combatant, target, name string, amount int) {
	if !c.Statuses.Apply(name, amount) {
		s.violation("status application rejected",
			zap.String("status", name), zap.Int("amount", amount))
		return
	}
	evt := s.newEvent(rules.EventStatusApplied, target)
	evt.Data = name
	evt.Amount = amount
	s.bus.Publish(evt)
	s.logf("%s gained %d %s.", targetName(target), amount, name)
}

func (s *Session) decayStatuses(c *Combatant, target string) {
	for _, name := range c.Statuses.DecayEndOfTurn() {
		evt := s.newEvent(rules.EventStatusDecayed, target)
		evt.Data = name
		evt.Amount = c.Statuses.Get(name)
		s.bus.Publish(evt)
	}
}

func (s *Session) clearStatus(c *Combatant, target, name string) {
	c.Statuses.Clear(name)
	evt := s.newEvent(rules.EventStatusCleared, target)
	evt.Data = name
	s.bus.Publish(evt)
}

// draw moves cards from the draw pile into hand and reports the supply
// events. It ignores no_draw; effect draws go through the player context.
func (s *Session) draw(n int) int {
	if n <= 0 {
		return 0
	}
	drawn, reshuffled := s.Supply.Draw(n)
	if reshuffled {
		s.bus.Publish(s.newEvent(rules.EventReshuffled, rules.TargetPlayer))
		s.logf("Shuffled your discard pile into your draw pile.")
	}
	if len(drawn) > 0 {
		s.publishAmount(rules.EventCardsDrawn, rules.TargetPlayer, len(drawn), nil)
	}
	return len(drawn)
}

func (s *Session) gainEnergy(amount int) {
	if amount <= 0 {
		return
	}
	s.Player.Energy += amount
	s.publishAmount(rules.EventEnergyGained, rules.TargetPlayer, amount, nil)
	s.logf("You gained %d Energy.", amount)
}

func (s *Session) rollIntent() {
	move := enemies.SelectMove(s.Enemy.Moves, s.Enemy.HP, s.Enemy.MaxHP, s.src)
	s.Enemy.Intent = &move
	evt := s.newEvent(rules.EventIntentChanged, rules.TargetEnemy)
	evt.Data = move.Name
	evt.Description = move.Description
	s.bus.Publish(evt)
}

// checkBattleEnd moves the battle to a terminal state when a combatant is
// dead. It reports the result once and returns whether the battle is over.
func (s *Session) checkBattleEnd() bool {
	if s.outcome != OutcomeOngoing {
		return true
	}
	switch {
	case s.Enemy.Dead():
		s.finish(OutcomeWon)
	case s.Player.Dead():
		s.finish(OutcomeLost)
	default:
		return false
	}
	return true
}

func (s *Session) finish(outcome Outcome) {
	s.outcome = outcome
	s.endedAt = time.Now()

	var err error
	switch outcome {
	case OutcomeWon:
		err = s.turn.Win(context.Background())
		s.logf("You defeated the %s!", s.Enemy.Name)
	case OutcomeLost:
		err = s.turn.Lose(context.Background())
		s.logf("You were defeated!")
	}
	if err != nil {
		s.violation("turn machine refused battle end", zap.Error(err))
	}

	evt := s.newEvent(rules.EventBattleEnded, rules.TargetEnemy)
	evt.Data = string(outcome)
	evt.Metadata["enemy_id"] = strconv.Itoa(s.Enemy.TemplateID)
	evt.Metadata["enemy_name"] = s.Enemy.Name
	s.bus.Publish(evt)

	s.logger.Info("battle ended",
		zap.String("outcome", string(outcome)),
		zap.String("enemy", s.Enemy.Name),
		zap.Int("turn", s.turn.TurnNumber()),
		zap.Int("player_hp", s.Player.HP),
	)
}

// violation reports a broken invariant: a bug in the resolution pipeline.
func (s *Session) violation(msg string, fields ...zap.Field) {
	fields = append(fields, zap.Int("turn", s.turn.TurnNumber()))
	if s.cfg.StrictInvariants {
		s.logger.Panic("invariant violation: "+msg, fields...)
	}
	s.logger.DPanic("invariant violation: "+msg, fields...)
}

// checkInvariants verifies the state between completed actions.
func (s *Session) checkInvariants() {
	if err := s.Supply.Check(); err != nil {
		s.violation("card supply out of balance", zap.Error(err))
	}
	if s.Player.Energy < 0 {
		s.violation("negative energy", zap.Int("energy", s.Player.Energy))
	}
	for _, c := range []struct {
		side string
		c    *Combatant
	}{{rules.TargetPlayer, &s.Player.Combatant}, {rules.TargetEnemy, &s.Enemy.Combatant}} {
		if c.c.HP < 0 || c.c.HP > c.c.MaxHP {
			s.violation("hp out of range", zap.String("side", c.side), zap.Int("hp", c.c.HP), zap.Int("max_hp", c.c.MaxHP))
		}
		if c.c.Block < 0 {
			s.violation("negative block", zap.String("side", c.side), zap.Int("block", c.c.Block))
		}
	}
	if s.active() && s.Enemy.Intent == nil {
		s.violation("enemy has no intent")
	}
}

func (s *Session) String() string {
	return fmt.Sprintf("battle %s vs %s (%s, turn %d)", s.ID, s.Enemy.Name, s.outcome, s.turn.TurnNumber())
}

func categoryMetadata(card *cards.Instance) map[string]string {
	return map[string]string{
		watchers.MetaCategory: string(card.Category),
		watchers.MetaCardID:   strconv.Itoa(card.ID),
		watchers.MetaCardName: card.Name,
		watchers.MetaBlock:    strconv.Itoa(card.Block),
	}
}

func (s *Session) cardEvent(eventType rules.EventType, card *cards.Instance) rules.Event {
	evt := s.newEvent(eventType, rules.TargetPlayer)
	evt.SourceID = card.InstanceID
	evt.Data = card.Name
	for k, v := range categoryMetadata(card) {
		evt.Metadata[k] = v
	}
	return evt
}
