// Package battle resolves deckbuilding battles: card play, damage, enemy
// turns and battle termination.
package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

var (
	// ErrBattleNotFound is returned for unknown battle ids.
	ErrBattleNotFound = errors.New("battle not found")
	// ErrNoRandomSource is returned when an engine is built without randomness.
	ErrNoRandomSource = errors.New("random source unavailable")
)

// Notification carries the events produced by one engine action.
type Notification struct {
	Type      string        `json:"type"`
	BattleID  string        `json:"battle_id"`
	Timestamp time.Time     `json:"timestamp"`
	Events    []rules.Event `json:"events"`
}

// Notification types.
const (
	NotificationBattleUpdate = "BATTLE_UPDATE"
	NotificationBattleEnded  = "BATTLE_ENDED"
)

// NotificationHandler receives engine notifications.
type NotificationHandler func(notification Notification)

// StartOption customizes a new battle.
type StartOption func(*sessionParams)

// WithPlayerHP starts the player at hp instead of full health. Progression
// carries hp between battles.
func WithPlayerHP(hp int) StartOption {
	return func(p *sessionParams) { p.playerHP = hp }
}

// WithBattleID uses a caller-chosen battle id.
func WithBattleID(id string) StartOption {
	return func(p *sessionParams) { p.id = id }
}

// Engine owns the battles in progress. Each battle is independent; the
// engine only shares the random source and the catalogs between them.
type Engine struct {
	logger      *zap.Logger
	cfg         Config
	cards       *cards.Catalog
	enemies     *enemies.Catalog
	src         rng.Source
	interpreter *effects.Interpreter

	mu                  sync.RWMutex
	sessions            map[string]*Session
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. Nil catalogs fall back to the builtin sets.
// A nil random source is fatal.
func NewEngine(cfg Config, cardCatalog *cards.Catalog, enemyCatalog *enemies.Catalog, src rng.Source, logger *zap.Logger) (*Engine, error) {
	if src == nil {
		return nil, ErrNoRandomSource
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cardCatalog == nil {
		cardCatalog = cards.DefaultCatalog()
	}
	if enemyCatalog == nil {
		enemyCatalog = enemies.DefaultCatalog()
	}
	return &Engine{
		logger:      logger,
		cfg:         cfg.withDefaults(),
		cards:       cardCatalog,
		enemies:     enemyCatalog,
		src:         rng.NewLocked(src),
		interpreter: effects.NewInterpreter(logger),
		sessions:    make(map[string]*Session),
	}, nil
}

// Cards returns the card catalog.
func (e *Engine) Cards() *cards.Catalog { return e.cards }

// Enemies returns the enemy catalog.
func (e *Engine) Enemies() *enemies.Catalog { return e.enemies }

// Random returns the engine's random source.
func (e *Engine) Random() rng.Source { return e.src }

// SetNotificationHandler sets the handler for battle notifications. The
// handler runs on the acting goroutine after the action has released the
// battle, so it may call back into the engine.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

func (e *Engine) notify(s *Session) {
	events := s.drainEvents()
	if len(events) == 0 {
		return
	}
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()
	if handler == nil {
		return
	}

	kind := NotificationBattleUpdate
	for _, evt := range events {
		if evt.Type == rules.EventBattleEnded {
			kind = NotificationBattleEnded
		}
	}
	handler(Notification{
		Type:      kind,
		BattleID:  s.ID,
		Timestamp: time.Now(),
		Events:    events,
	})
}

// StartBattle copies the deck into a new battle against the enemy template.
func (e *Engine) StartBattle(deck []cards.Card, enemy enemies.Template, opts ...StartOption) (*Session, error) {
	if enemy.MaxHP <= 0 {
		return nil, fmt.Errorf("enemy %q has no hp", enemy.Name)
	}
	params := sessionParams{
		cfg:         e.cfg,
		deck:        deck,
		enemy:       enemy,
		src:         e.src,
		interpreter: e.interpreter,
		logger:      e.logger,
	}
	for _, opt := range opts {
		opt(&params)
	}
	if params.id == "" {
		params.id = uuid.NewString()
	}

	e.mu.Lock()
	if _, exists := e.sessions[params.id]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("battle %s already exists", params.id)
	}
	s := newSession(params)
	e.sessions[s.ID] = s
	e.mu.Unlock()

	e.notify(s)
	return s, nil
}

// StartRandomBattle starts a battle against a random enemy.
func (e *Engine) StartRandomBattle(deck []cards.Card, opts ...StartOption) (*Session, error) {
	return e.StartBattle(deck, e.enemies.Random(e.src), opts...)
}

// Get returns the battle with the given id.
func (e *Engine) Get(battleID string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[battleID]
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", battleID, ErrBattleNotFound)
	}
	return s, nil
}

// ActiveBattles returns the number of battles held by the engine.
func (e *Engine) ActiveBattles() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}

// CanPlayCard reports whether the hand card can be played.
func (e *Engine) CanPlayCard(battleID, instanceID string) (bool, error) {
	s, err := e.Get(battleID)
	if err != nil {
		return false, err
	}
	card, ok := s.HandCard(instanceID)
	if !ok {
		return false, nil
	}
	return s.CanPlayCard(card), nil
}

// PlayCard plays a hand card by instance id.
func (e *Engine) PlayCard(battleID, instanceID string) (PlayResult, error) {
	s, err := e.Get(battleID)
	if err != nil {
		return PlayResult{}, err
	}
	card, ok := s.HandCard(instanceID)
	if !ok {
		return PlayResult{Reason: ReasonNotInHand, Outcome: s.Outcome()}, nil
	}
	res := s.PlayCard(card)
	e.notify(s)
	return res, nil
}

// ConvertToCurrency redeems a hand card by instance id.
func (e *Engine) ConvertToCurrency(battleID, instanceID string) (ConvertResult, error) {
	s, err := e.Get(battleID)
	if err != nil {
		return ConvertResult{}, err
	}
	card, ok := s.HandCard(instanceID)
	if !ok {
		return ConvertResult{Reason: ReasonNotInHand}, nil
	}
	res := s.ConvertToCurrency(card)
	e.notify(s)
	return res, nil
}

// EndTurn ends the player's turn in the given battle.
func (e *Engine) EndTurn(ctx context.Context, battleID string) (EndTurnResult, error) {
	s, err := e.Get(battleID)
	if err != nil {
		return EndTurnResult{}, err
	}
	res := s.EndTurn(ctx)
	e.notify(s)
	return res, nil
}

// EndBattle removes the battle and returns its summary. A battle still in
// progress is recorded as abandoned.
func (e *Engine) EndBattle(battleID string) (Summary, error) {
	e.mu.Lock()
	s, ok := e.sessions[battleID]
	if ok {
		delete(e.sessions, battleID)
	}
	e.mu.Unlock()
	if !ok {
		return Summary{}, fmt.Errorf("battle %s: %w", battleID, ErrBattleNotFound)
	}

	s.mu.Lock()
	if s.outcome == OutcomeOngoing {
		s.outcome = OutcomeAbandoned
		s.endedAt = time.Now()
	}
	summary := s.summary()
	s.mu.Unlock()

	e.logger.Info("battle closed",
		zap.String("battle_id", battleID),
		zap.String("outcome", string(summary.Outcome)),
		zap.Int("turns", summary.Turns),
	)
	return summary, nil
}
