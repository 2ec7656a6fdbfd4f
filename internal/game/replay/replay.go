// Package replay records battles as seed plus actions and plays them back
// to confirm the engine is deterministic.
package replay

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

const formatVersion = 1

var (
	// ErrZeroSeed is returned for seed 0, which draws a non-reproducible seed.
	ErrZeroSeed = errors.New("replays need a non-zero seed")
	// ErrDiverged is returned when playback reaches a different state.
	ErrDiverged = errors.New("replay diverged")
)

// ActionKind is a recorded player action.
type ActionKind string

const (
	ActionPlay    ActionKind = "play"
	ActionConvert ActionKind = "convert"
	ActionEndTurn ActionKind = "end_turn"
)

// Action is one player action and the state checksum after it. Cards are
// addressed by hand position because instance ids are random.
type Action struct {
	Kind      ActionKind
	HandIndex int
	Checksum  string
}

// Replay is everything needed to rebuild a battle.
type Replay struct {
	BattleID string
	Seed     uint64
	Rules    battle.Config
	Deck     []int
	EnemyID  int
	Initial  string
	Actions  []Action
}

// Size returns the number of recorded actions.
func (r *Replay) Size() int {
	return len(r.Actions)
}

type metadata struct {
	BattleID    string
	Timestamp   time.Time
	Version     int
	ActionCount int
}

// SaveToFile writes the replay to <directory>/<battle id>.replay, gzipped.
func (r *Replay) SaveToFile(directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filepath.Join(directory, r.BattleID+".replay"))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)
	meta := metadata{
		BattleID:    r.BattleID,
		Timestamp:   time.Now(),
		Version:     formatVersion,
		ActionCount: len(r.Actions),
	}
	if err := encoder.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return gz.Close()
}

// LoadFromFile reads a replay written by SaveToFile.
func LoadFromFile(directory, battleID string) (*Replay, error) {
	file, err := os.Open(filepath.Join(directory, battleID+".replay"))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)
	var meta metadata
	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	var r Replay
	if err := decoder.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if len(r.Actions) != meta.ActionCount {
		return nil, fmt.Errorf("replay %s: expected %d actions, found %d", battleID, meta.ActionCount, len(r.Actions))
	}
	return &r, nil
}

// Recorder runs a battle on a private seeded engine and records every
// action taken through it.
type Recorder struct {
	logger  *zap.Logger
	engine  *battle.Engine
	session *battle.Session
	replay  Replay
}

// Start begins a recorded battle. The engine is private to the recording,
// so no other battle draws from its random source.
func Start(seed uint64, rules battle.Config, deck []int, enemyID int, logger *zap.Logger) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, session, err := build(seed, rules, deck, enemyID, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("started replay recording",
		zap.String("battle_id", session.ID),
		zap.Uint64("seed", seed),
	)
	return &Recorder{
		logger:  logger,
		engine:  engine,
		session: session,
		replay: Replay{
			BattleID: session.ID,
			Seed:     seed,
			Rules:    rules,
			Deck:     append([]int(nil), deck...),
			EnemyID:  enemyID,
			Initial:  session.Checksum(),
		},
	}, nil
}

func build(seed uint64, rules battle.Config, deck []int, enemyID int, logger *zap.Logger) (*battle.Engine, *battle.Session, error) {
	if seed == 0 {
		return nil, nil, ErrZeroSeed
	}
	engine, err := battle.NewEngine(rules, nil, nil, rng.New(seed), logger)
	if err != nil {
		return nil, nil, err
	}

	cardList := make([]cards.Card, 0, len(deck))
	for _, id := range deck {
		card, err := engine.Cards().GetByID(id)
		if err != nil {
			return nil, nil, err
		}
		cardList = append(cardList, card)
	}
	enemy, err := engine.Enemies().GetByID(enemyID)
	if err != nil {
		return nil, nil, err
	}

	session, err := engine.StartBattle(cardList, enemy)
	if err != nil {
		return nil, nil, err
	}
	return engine, session, nil
}

// Session returns the recorded battle.
func (r *Recorder) Session() *battle.Session {
	return r.session
}

func (r *Recorder) record(kind ActionKind, handIndex int) {
	r.replay.Actions = append(r.replay.Actions, Action{
		Kind:      kind,
		HandIndex: handIndex,
		Checksum:  r.session.Checksum(),
	})
	r.logger.Debug("recorded replay action",
		zap.String("battle_id", r.session.ID),
		zap.String("kind", string(kind)),
		zap.Int("action_count", len(r.replay.Actions)),
	)
}

// Play plays the card at handIndex.
func (r *Recorder) Play(handIndex int) (battle.PlayResult, error) {
	res, err := apply(context.Background(), r.engine, r.session, Action{Kind: ActionPlay, HandIndex: handIndex})
	if err != nil {
		return battle.PlayResult{}, err
	}
	r.record(ActionPlay, handIndex)
	return res.(battle.PlayResult), nil
}

// Convert converts the card at handIndex into currency.
func (r *Recorder) Convert(handIndex int) (battle.ConvertResult, error) {
	res, err := apply(context.Background(), r.engine, r.session, Action{Kind: ActionConvert, HandIndex: handIndex})
	if err != nil {
		return battle.ConvertResult{}, err
	}
	r.record(ActionConvert, handIndex)
	return res.(battle.ConvertResult), nil
}

// EndTurn ends the player turn.
func (r *Recorder) EndTurn(ctx context.Context) (battle.EndTurnResult, error) {
	res, err := apply(ctx, r.engine, r.session, Action{Kind: ActionEndTurn})
	if err != nil {
		return battle.EndTurnResult{}, err
	}
	r.record(ActionEndTurn, 0)
	return res.(battle.EndTurnResult), nil
}

// Replay returns a copy of the recording so far.
func (r *Recorder) Replay() *Replay {
	cp := r.replay
	cp.Deck = append([]int(nil), r.replay.Deck...)
	cp.Actions = append([]Action(nil), r.replay.Actions...)
	return &cp
}

func apply(ctx context.Context, engine *battle.Engine, s *battle.Session, action Action) (any, error) {
	switch action.Kind {
	case ActionEndTurn:
		return engine.EndTurn(ctx, s.ID)
	case ActionPlay, ActionConvert:
		hand := s.View().Hand
		if action.HandIndex < 0 || action.HandIndex >= len(hand) {
			return nil, fmt.Errorf("hand index %d out of range (hand size %d)", action.HandIndex, len(hand))
		}
		instanceID := hand[action.HandIndex].InstanceID
		if action.Kind == ActionConvert {
			return engine.ConvertToCurrency(s.ID, instanceID)
		}
		return engine.PlayCard(s.ID, instanceID)
	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

// Verify rebuilds the battle and replays every action, comparing state
// checksums after each step. It returns the final session.
func Verify(ctx context.Context, r *Replay, logger *zap.Logger) (*battle.Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, session, err := build(r.Seed, r.Rules, r.Deck, r.EnemyID, logger)
	if err != nil {
		return nil, err
	}
	if got := session.Checksum(); got != r.Initial {
		return nil, fmt.Errorf("%w: initial state %s, recorded %s", ErrDiverged, got, r.Initial)
	}

	for i, action := range r.Actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := apply(ctx, engine, session, action); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		if got := session.Checksum(); got != action.Checksum {
			return nil, fmt.Errorf("%w at action %d (%s)", ErrDiverged, i, action.Kind)
		}
	}

	logger.Info("replay verified",
		zap.String("battle_id", r.BattleID),
		zap.Int("action_count", len(r.Actions)),
	)
	return session, nil
}
