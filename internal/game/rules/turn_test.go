package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnManagerAlternates(t *testing.T) {
	ctx := context.Background()
	tm := NewTurnManager()

	assert.Equal(t, StatePlayerTurn, tm.Current())
	assert.Equal(t, OwnerPlayer, tm.Owner())
	assert.Equal(t, 1, tm.TurnNumber())

	require.NoError(t, tm.EndPlayerTurn(ctx))
	assert.Equal(t, StateEnemyTurn, tm.Current())
	assert.Equal(t, OwnerEnemy, tm.Owner())
	assert.Equal(t, 1, tm.TurnNumber())

	require.NoError(t, tm.BeginPlayerTurn(ctx))
	assert.Equal(t, StatePlayerTurn, tm.Current())
	assert.Equal(t, 2, tm.TurnNumber())
}

func TestTurnManagerRejectsOutOfOrderTransitions(t *testing.T) {
	ctx := context.Background()
	tm := NewTurnManager()

	assert.Error(t, tm.BeginPlayerTurn(ctx), "player turn cannot begin during the player turn")
	require.NoError(t, tm.EndPlayerTurn(ctx))
	assert.Error(t, tm.EndPlayerTurn(ctx), "enemy turn cannot be ended as a player turn")
}

func TestTurnManagerTerminalStates(t *testing.T) {
	ctx := context.Background()

	won := NewTurnManager()
	require.NoError(t, won.Win(ctx))
	assert.Equal(t, StateBattleWon, won.Current())
	assert.False(t, won.IsActive())
	assert.Equal(t, OwnerNone, won.Owner())
	assert.Error(t, won.EndPlayerTurn(ctx))
	assert.Error(t, won.Lose(ctx))

	lost := NewTurnManager()
	require.NoError(t, lost.EndPlayerTurn(ctx))
	require.NoError(t, lost.Lose(ctx))
	assert.Equal(t, StateBattleLost, lost.Current())
	assert.False(t, lost.Can(TransitionBeginTurn))
}

func TestTurnManagerTransitionCallback(t *testing.T) {
	ctx := context.Background()
	tm := NewTurnManager()

	var seen [][2]State
	tm.OnTransition(func(from, to State) {
		seen = append(seen, [2]State{from, to})
	})

	require.NoError(t, tm.EndPlayerTurn(ctx))
	require.NoError(t, tm.Win(ctx))

	assert.Equal(t, [][2]State{
		{StatePlayerTurn, StateEnemyTurn},
		{StateEnemyTurn, StateBattleWon},
	}, seen)
}
