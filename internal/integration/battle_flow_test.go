package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/deckbattle-server-go/internal/config"
	"github.com/magefree/deckbattle-server-go/internal/game/battle"
	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/repository"
	"github.com/magefree/deckbattle-server-go/internal/sim"
)

type battleEnv struct {
	engine  *battle.Engine
	results *repository.MemoryResultRepository
	logger  *zap.Logger

	mu            sync.Mutex
	notifications []battle.Notification
}

func newBattleEnv(t testing.TB, seed uint64) *battleEnv {
	logger := zaptest.NewLogger(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	rulesCfg := cfg.Battle.Rules()
	rulesCfg.StrictInvariants = true

	engine, err := battle.NewEngine(rulesCfg, nil, nil, rng.New(seed), logger)
	require.NoError(t, err)

	env := &battleEnv{
		engine:  engine,
		results: repository.NewMemoryResultRepository(),
		logger:  logger,
	}
	engine.SetNotificationHandler(func(n battle.Notification) {
		env.mu.Lock()
		env.notifications = append(env.notifications, n)
		env.mu.Unlock()
	})
	return env
}

func (e *battleEnv) eventCount(battleID string, eventType rules.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, note := range e.notifications {
		if note.BattleID != battleID {
			continue
		}
		for _, evt := range note.Events {
			if evt.Type == eventType {
				n++
			}
		}
	}
	return n
}

func TestSimulatedBattlesReportConsistentTelemetry(t *testing.T) {
	env := newBattleEnv(t, 2024)
	runner := sim.NewRunner(env.engine, 60, env.logger)

	summaries, err := runner.RunMany(context.Background(), 12, 4, cards.DefaultCatalog().StarterDeck)
	require.NoError(t, err)

	for _, summary := range summaries {
		require.NoError(t, env.results.Save(context.Background(), summary))

		assert.Equal(t, env.eventCount(summary.BattleID, rules.EventCardPlayed), summary.Stats.CardsPlayed)
		if summary.Outcome == battle.OutcomeWon || summary.Outcome == battle.OutcomeLost {
			assert.Equal(t, 1, env.eventCount(summary.BattleID, rules.EventBattleEnded), summary.BattleID)
		}
		if summary.Outcome == battle.OutcomeLost {
			assert.Equal(t, 0, summary.PlayerHP)
		}
		assert.Equal(t, 10, summary.DeckSize)
		assert.GreaterOrEqual(t, summary.CardsDrawn, 5)
	}

	recent, err := env.results.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 12)
	assert.Equal(t, 0, env.engine.ActiveBattles())
}

func TestProgressionCarriesHealthBetweenBattles(t *testing.T) {
	env := newBattleEnv(t, 77)
	runner := sim.NewRunner(env.engine, 60, env.logger)
	src := env.engine.Random()

	deck, err := env.engine.Cards().StarterDeck()
	require.NoError(t, err)
	hp := 100

	for fight := 0; fight < 3 && hp > 0; fight++ {
		summary, err := runner.Run(context.Background(), deck, battle.WithPlayerHP(hp))
		require.NoError(t, err)
		assert.LessOrEqual(t, summary.PlayerHP, summary.PlayerMaxHP)
		assert.GreaterOrEqual(t, summary.DeckSize, len(deck), "copies made in battle join the battle deck")
		if summary.Outcome != battle.OutcomeWon {
			break
		}
		hp = summary.PlayerHP
		rewards, err := env.engine.Cards().RewardCards(src)
		require.NoError(t, err)
		require.Len(t, rewards, 3)
		deck = append(deck, rewards[0])
	}
}
