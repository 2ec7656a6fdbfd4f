package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/deckbattle-server-go/internal/game/battle"
)

var starter = []int{1, 1, 1, 1, 6, 6, 6, 6, 3, 8}

func record(t *testing.T) *Replay {
	t.Helper()
	rec, err := Start(99, battle.DefaultConfig(), starter, 2, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	for turn := 0; turn < 4 && rec.Session().IsActive(); turn++ {
		_, err := rec.Play(0)
		require.NoError(t, err)
		_, err = rec.Play(0)
		require.NoError(t, err)
		_, err = rec.EndTurn(ctx)
		require.NoError(t, err)
	}
	return rec.Replay()
}

func TestVerifyReproducesRecording(t *testing.T) {
	r := record(t)
	require.NotZero(t, r.Size())

	session, err := Verify(context.Background(), r, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, r.Actions[len(r.Actions)-1].Checksum, session.Checksum())
}

func TestVerifyDetectsDivergence(t *testing.T) {
	r := record(t)
	r.Actions[0] = Action{Kind: ActionEndTurn, Checksum: r.Actions[0].Checksum}

	_, err := Verify(context.Background(), r, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrDiverged)

	r = record(t)
	r.Seed = 100
	_, err = Verify(context.Background(), r, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrDiverged)
}

func TestSaveAndLoad(t *testing.T) {
	r := record(t)
	dir := t.TempDir()

	require.NoError(t, r.SaveToFile(dir))
	loaded, err := LoadFromFile(dir, r.BattleID)
	require.NoError(t, err)

	assert.Equal(t, r, loaded)
	_, err = Verify(context.Background(), loaded, zaptest.NewLogger(t))
	assert.NoError(t, err)

	_, err = LoadFromFile(dir, "missing")
	assert.Error(t, err)
}

func TestStartRejectsBadInput(t *testing.T) {
	_, err := Start(0, battle.DefaultConfig(), starter, 1, nil)
	assert.ErrorIs(t, err, ErrZeroSeed)

	_, err = Start(1, battle.DefaultConfig(), []int{1, 999}, 1, nil)
	assert.Error(t, err)

	rec, err := Start(1, battle.DefaultConfig(), starter, 1, nil)
	require.NoError(t, err)
	_, err = rec.Play(17)
	assert.Error(t, err)
	assert.Zero(t, rec.Replay().Size(), "failed actions are not recorded")
}
