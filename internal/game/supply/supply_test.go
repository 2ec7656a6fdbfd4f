package supply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

func newDeck(t *testing.T, ids ...int) []*cards.Instance {
	t.Helper()
	catalog := cards.DefaultCatalog()
	deck := make([]*cards.Instance, 0, len(ids))
	for _, id := range ids {
		card, err := catalog.GetByID(id)
		require.NoError(t, err)
		deck = append(deck, cards.NewInstance(card))
	}
	return deck
}

func TestDrawTakesFromTop(t *testing.T) {
	deck := newDeck(t, 1, 2, 3)
	s := New(deck, rng.NewScripted())

	drawn, reshuffled := s.Draw(2)
	assert.False(t, reshuffled)
	require.Len(t, drawn, 2)
	assert.Same(t, deck[2], drawn[0])
	assert.Same(t, deck[1], drawn[1])
	assert.Equal(t, 1, s.DrawSize())
	require.NoError(t, s.Check())
}

func TestDrawReshufflesDiscardWhenEmpty(t *testing.T) {
	s := New(newDeck(t, 1, 6, 3), rng.New(1))

	s.Draw(3)
	assert.Equal(t, 3, s.DiscardHand())
	assert.Equal(t, 3, s.DiscardSize())

	drawn, reshuffled := s.Draw(2)
	assert.True(t, reshuffled)
	assert.Len(t, drawn, 2)
	assert.Equal(t, 1, s.DrawSize())
	assert.Equal(t, 0, s.DiscardSize())
	require.NoError(t, s.Check())
}

func TestDrawStopsSilentlyWhenExhausted(t *testing.T) {
	s := New(newDeck(t, 1, 6), rng.New(1))

	drawn, _ := s.Draw(5)
	assert.Len(t, drawn, 2)
	assert.Equal(t, 2, s.HandSize())

	drawn, reshuffled := s.Draw(3)
	assert.Empty(t, drawn)
	assert.False(t, reshuffled)
	assert.Equal(t, 2, s.HandSize(), "drawing from empty piles leaves the hand unchanged")
	require.NoError(t, s.Check())
}

func TestDiscardByIdentity(t *testing.T) {
	deck := newDeck(t, 1, 1, 1)
	s := New(deck, rng.NewScripted())
	s.Draw(3)

	require.True(t, s.Discard(deck[1]))
	assert.Equal(t, []*cards.Instance{deck[2], deck[0]}, s.Hand())
	assert.Equal(t, []*cards.Instance{deck[1]}, s.DiscardPile())

	assert.False(t, s.Discard(deck[1]), "an instance can only leave the hand once")
	require.NoError(t, s.Check())
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := newDeck(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	s := New(deck, rng.New(99))
	s.Shuffle()

	assert.ElementsMatch(t, deck, s.DrawPile())
	require.NoError(t, s.Check())
}

func TestAddToHandGrowsDeck(t *testing.T) {
	deck := newDeck(t, 2, 1, 6)
	s := New(deck, rng.NewScripted())
	s.Draw(3)

	cheapest, ok := s.Cheapest()
	require.True(t, ok)
	assert.Same(t, deck[2], cheapest, "first card at the lowest cost wins")

	s.AddToHand(cheapest.Copy())
	assert.Equal(t, 4, s.DeckSize())
	assert.Equal(t, 4, s.HandSize())
	require.NoError(t, s.Check())

	found, ok := s.FindInHand(deck[0].InstanceID)
	require.True(t, ok)
	assert.Same(t, deck[0], found)
}

func TestRemoveFromHandBreaksCheckUntilPlaced(t *testing.T) {
	deck := newDeck(t, 1, 6)
	s := New(deck, rng.NewScripted())
	s.Draw(2)

	require.True(t, s.RemoveFromHand(deck[0]))
	assert.False(t, s.InHand(deck[0]))
	assert.Error(t, s.Check())

	s.PutInDiscard(deck[0])
	assert.NoError(t, s.Check())
}
