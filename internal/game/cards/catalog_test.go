package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.Equal(t, 24, catalog.Len())

	strike, err := catalog.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Strike", strike.Name)
	assert.Equal(t, CategoryAttack, strike.Category)
	assert.Equal(t, effects.Program{effects.DealDamage(6)}, strike.Effect)
	assert.False(t, strike.Convertible())

	thunder, err := catalog.GetByID(18)
	require.NoError(t, err)
	assert.Equal(t, effects.Program{effects.Repeat(3, effects.DealDamage(10))}, thunder.Effect)

	barricade, err := catalog.GetByID(10)
	require.NoError(t, err)
	assert.Equal(t, 15, barricade.Block)
	assert.True(t, barricade.Convertible())
}

func TestGetByIDUnknown(t *testing.T) {
	_, err := DefaultCatalog().GetByID(99)
	assert.True(t, errors.Is(err, ErrCardNotFound))
}

func TestStarterDeck(t *testing.T) {
	deck, err := DefaultCatalog().StarterDeck()
	require.NoError(t, err)
	require.Len(t, deck, 10)

	counts := map[string]int{}
	for _, card := range deck {
		counts[card.Name]++
	}
	assert.Equal(t, map[string]int{"Strike": 4, "Defend": 4, "Quick Slash": 1, "Second Wind": 1}, counts)
}

func TestRewardCards(t *testing.T) {
	catalog := DefaultCatalog()

	// Rarity rolls come first: 10 is rare, 50 common, 95 rare. Picks follow.
	rewards, err := catalog.RewardCards(rng.NewScripted(10, 50, 95, 0, 0, 0))
	require.NoError(t, err)
	require.Len(t, rewards, 3)
	assert.Equal(t, RarityRare, rewards[0].Rarity)
	assert.Equal(t, RarityCommon, rewards[1].Rarity)
	assert.Equal(t, RarityRare, rewards[2].Rarity)

	src := rng.New(7)
	for i := 0; i < 50; i++ {
		rewards, err := catalog.RewardCards(src)
		require.NoError(t, err)
		assert.NotEqual(t, RarityCommon, rewards[0].Rarity, "first reward is never common")
	}
}

func TestRandomByRarity(t *testing.T) {
	catalog := DefaultCatalog()
	src := rng.New(3)
	for i := 0; i < 30; i++ {
		card, err := catalog.RandomByRarity(RarityUncommon, src)
		require.NoError(t, err)
		assert.Equal(t, RarityUncommon, card.Rarity)
	}
	_, err := catalog.RandomByRarity("mythic", src)
	assert.ErrorIs(t, err, ErrCardNotFound)

	assert.Equal(t, 1, catalog.Random(rng.NewScripted(0)).ID)
}

func TestNewCatalogRejectsBadData(t *testing.T) {
	tests := map[string]string{
		"bad effect":   "cards:\n  - {id: 1, name: A, category: attack, cost: 1, rarity: common, effect: explode 3}\n",
		"duplicate id": "cards:\n  - {id: 1, name: A, category: attack, cost: 1, rarity: common, effect: damage 1}\n  - {id: 1, name: B, category: attack, cost: 1, rarity: common, effect: damage 1}\n",
		"bad category": "cards:\n  - {id: 1, name: A, category: curse, cost: 1, rarity: common, effect: damage 1}\n",
		"bad rarity":   "cards:\n  - {id: 1, name: A, category: skill, cost: 1, rarity: epic, effect: block 1}\n",
		"bad yaml":     "cards: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	strike, err := DefaultCatalog().GetByID(1)
	require.NoError(t, err)

	a := NewInstance(strike)
	b := NewInstance(strike)
	assert.NotEqual(t, a.InstanceID, b.InstanceID)

	a.Cost = 0
	assert.Equal(t, 1, b.Cost)
	assert.Equal(t, a.ID, a.Copy().ID)
	assert.Equal(t, "Strike", b.ToView().Name)
}
