package cards

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

// ErrCardNotFound is returned for unknown card ids.
var ErrCardNotFound = errors.New("card not found")

//go:embed cards.yaml
var builtinCards []byte

type catalogFile struct {
	Cards []Card `yaml:"cards"`
}

// Catalog is the set of card templates available to battles.
type Catalog struct {
	cards    []Card
	byID     map[int]Card
	byRarity map[Rarity][]Card
}

// NewCatalog parses a YAML card list and compiles every effect script.
func NewCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode card catalog: %w", err)
	}

	c := &Catalog{
		byID:     make(map[int]Card, len(file.Cards)),
		byRarity: make(map[Rarity][]Card),
	}
	for _, card := range file.Cards {
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("card %d: duplicate id", card.ID)
		}
		if card.Cost < 0 || card.Block < 0 {
			return nil, fmt.Errorf("card %d (%s): negative cost or block", card.ID, card.Name)
		}
		switch card.Category {
		case CategoryAttack, CategorySkill, CategoryPower:
		default:
			return nil, fmt.Errorf("card %d (%s): unknown category %q", card.ID, card.Name, card.Category)
		}
		switch card.Rarity {
		case RarityCommon, RarityUncommon, RarityRare:
		default:
			return nil, fmt.Errorf("card %d (%s): unknown rarity %q", card.ID, card.Name, card.Rarity)
		}
		prog, err := effects.Parse(card.Script)
		if err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", card.ID, card.Name, err)
		}
		card.Effect = prog

		c.cards = append(c.cards, card)
		c.byID[card.ID] = card
		c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], card)
	}
	sort.Slice(c.cards, func(i, j int) bool { return c.cards[i].ID < c.cards[j].ID })
	return c, nil
}

// DefaultCatalog returns the builtin card set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtinCards)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every template ordered by id.
func (c *Catalog) All() []Card {
	return append([]Card(nil), c.cards...)
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// GetByID returns the template with the given id.
func (c *Catalog) GetByID(id int) (Card, error) {
	card, ok := c.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrCardNotFound)
	}
	return card, nil
}

// Random picks a template uniformly.
func (c *Catalog) Random(src rng.Source) Card {
	return c.cards[src.IntN(len(c.cards))]
}

// RandomByRarity picks a template of the given rarity uniformly.
func (c *Catalog) RandomByRarity(rarity Rarity, src rng.Source) (Card, error) {
	pool := c.byRarity[rarity]
	if len(pool) == 0 {
		return Card{}, fmt.Errorf("rarity %s: %w", rarity, ErrCardNotFound)
	}
	return pool[src.IntN(len(pool))], nil
}

// RewardCards offers three cards: one guaranteed uncommon (80%) or rare
// (20%), then two rolled 70/20/10 across common, uncommon and rare.
func (c *Catalog) RewardCards(src rng.Source) ([]Card, error) {
	rarities := make([]Rarity, 0, 3)
	if src.IntN(100) < 20 {
		rarities = append(rarities, RarityRare)
	} else {
		rarities = append(rarities, RarityUncommon)
	}
	for i := 0; i < 2; i++ {
		roll := src.IntN(100)
		switch {
		case roll < 70:
			rarities = append(rarities, RarityCommon)
		case roll < 90:
			rarities = append(rarities, RarityUncommon)
		default:
			rarities = append(rarities, RarityRare)
		}
	}

	rewards := make([]Card, 0, len(rarities))
	for _, rarity := range rarities {
		card, err := c.RandomByRarity(rarity, src)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, card)
	}
	return rewards, nil
}

// StarterDeck returns the opening deck: four Strikes, four Defends, Quick
// Slash and Second Wind.
func (c *Catalog) StarterDeck() ([]Card, error) {
	ids := []int{1, 1, 1, 1, 6, 6, 6, 6, 3, 8}
	deck := make([]Card, 0, len(ids))
	for _, id := range ids {
		card, err := c.GetByID(id)
		if err != nil {
			return nil, fmt.Errorf("starter deck: %w", err)
		}
		deck = append(deck, card)
	}
	return deck, nil
}
