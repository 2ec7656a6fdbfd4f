package battle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), nil, nil, rng.NewScripted(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresRandomSource(t *testing.T) {
	_, err := NewEngine(DefaultConfig(), nil, nil, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrNoRandomSource)
}

func TestEngineUnknownBattle(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Get("missing")
	assert.ErrorIs(t, err, ErrBattleNotFound)
	_, err = engine.PlayCard("missing", "x")
	assert.ErrorIs(t, err, ErrBattleNotFound)
	_, err = engine.EndTurn(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBattleNotFound)
	_, err = engine.EndBattle("missing")
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestEngineStartBattleOptions(t *testing.T) {
	engine := newTestEngine(t)
	deck, err := engine.Cards().StarterDeck()
	require.NoError(t, err)

	s, err := engine.StartBattle(deck, dummyEnemy(), WithBattleID("b-1"), WithPlayerHP(40))
	require.NoError(t, err)
	assert.Equal(t, "b-1", s.ID)
	assert.Equal(t, 40, s.Player.HP)
	assert.Equal(t, 100, s.Player.MaxHP)

	_, err = engine.StartBattle(deck, dummyEnemy(), WithBattleID("b-1"))
	assert.Error(t, err)

	other, err := engine.StartBattle(deck, dummyEnemy(), WithPlayerHP(500))
	require.NoError(t, err)
	assert.Equal(t, 100, other.Player.HP, "hp above max starts at max")
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, engine.ActiveBattles())

	_, err = engine.StartBattle(deck, dummyEnemy().Clone(), WithBattleID("b-2"))
	require.NoError(t, err)
	empty := dummyEnemy()
	empty.MaxHP = 0
	_, err = engine.StartBattle(deck, empty)
	assert.Error(t, err)
}

func TestEngineActionsByInstanceID(t *testing.T) {
	engine := newTestEngine(t)
	deck, err := engine.Cards().StarterDeck()
	require.NoError(t, err)
	s, err := engine.StartBattle(deck, dummyEnemy(effects.DealDamage(4)))
	require.NoError(t, err)

	hand := s.View().Hand
	require.NotEmpty(t, hand)
	ok, err := engine.CanPlayCard(s.ID, hand[0].InstanceID)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := engine.PlayCard(s.ID, hand[0].InstanceID)
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	res, err = engine.PlayCard(s.ID, hand[0].InstanceID)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotInHand, res.Reason)

	ok, err = engine.CanPlayCard(s.ID, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	conv, err := engine.ConvertToCurrency(s.ID, "unknown")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotInHand, conv.Reason)

	turn, err := engine.EndTurn(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, turn.Accepted)
	assert.Equal(t, 2, turn.Turn)
}

func TestEngineNotifications(t *testing.T) {
	engine := newTestEngine(t)
	var notes []Notification
	engine.SetNotificationHandler(func(n Notification) {
		notes = append(notes, n)
	})

	deck, err := engine.Cards().StarterDeck()
	require.NoError(t, err)
	enemy := dummyEnemy()
	enemy.MaxHP = 1
	s, err := engine.StartBattle(deck, enemy)
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, NotificationBattleUpdate, notes[0].Type)
	require.GreaterOrEqual(t, len(notes[0].Events), 2)
	assert.Equal(t, rules.EventLog, notes[0].Events[0].Type, "events are delivered in publication order")
	assert.Equal(t, rules.EventBattleStarted, notes[0].Events[1].Type)

	var strike string
	for _, card := range s.View().Hand {
		if card.Name == "Strike" {
			strike = card.InstanceID
			break
		}
	}
	require.NotEmpty(t, strike)

	_, err = engine.PlayCard(s.ID, strike)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, NotificationBattleEnded, notes[1].Type)
	assert.Equal(t, s.ID, notes[1].BattleID)

	summary, err := engine.EndBattle(s.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWon, summary.Outcome)
	assert.Equal(t, 1, summary.Stats.CardsPlayed)
	assert.Equal(t, 0, engine.ActiveBattles())
}

func TestEngineEndBattleAbandons(t *testing.T) {
	engine := newTestEngine(t)
	deck, err := engine.Cards().StarterDeck()
	require.NoError(t, err)
	s, err := engine.StartBattle(deck, dummyEnemy())
	require.NoError(t, err)

	summary, err := engine.EndBattle(s.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbandoned, summary.Outcome)
	assert.False(t, summary.EndedAt.IsZero())
	assert.False(t, s.IsActive())
	assert.Equal(t, ReasonInactive, s.EndTurn(context.Background()).Reason)

	_, err = engine.Get(s.ID)
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestChecksumMatchesAcrossEngines(t *testing.T) {
	run := func() string {
		engine, err := NewEngine(DefaultConfig(), nil, nil, rng.New(5), zaptest.NewLogger(t))
		require.NoError(t, err)
		deck, err := engine.Cards().StarterDeck()
		require.NoError(t, err)
		s, err := engine.StartRandomBattle(deck)
		require.NoError(t, err)
		for i := 0; i < 4 && s.IsActive(); i++ {
			for _, card := range s.View().Hand {
				_, err := engine.PlayCard(s.ID, card.InstanceID)
				require.NoError(t, err)
			}
			_, err := engine.EndTurn(context.Background(), s.ID)
			require.NoError(t, err)
		}
		return s.Checksum()
	}

	assert.Equal(t, run(), run())
}
