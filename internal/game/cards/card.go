package cards

import (
	"github.com/google/uuid"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
)

// Category is the card type shown on its frame.
type Category string

const (
	CategoryAttack Category = "attack"
	CategorySkill  Category = "skill"
	CategoryPower  Category = "power"
)

// Rarity controls how often a card is offered as a reward.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

// Card is an immutable card template.
type Card struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Category    Category        `json:"category" yaml:"category"`
	Cost        int             `json:"cost" yaml:"cost"`
	Rarity      Rarity          `json:"rarity" yaml:"rarity"`
	Block       int             `json:"block,omitempty" yaml:"block"`
	Description string          `json:"description" yaml:"description"`
	Script      string          `json:"effect" yaml:"effect"`
	Effect      effects.Program `json:"-" yaml:"-"`
}

// Convertible reports whether the card may be redeemed for currency.
func (c Card) Convertible() bool {
	return c.Block > 0
}

// Instance is one physical copy of a card inside a battle. Two instances of
// the same template never share state.
type Instance struct {
	InstanceID string `json:"instance_id"`
	Card
}

// NewInstance value-copies a template under a fresh instance id.
func NewInstance(card Card) *Instance {
	return &Instance{
		InstanceID: uuid.New().String(),
		Card:       card,
	}
}

// Copy returns a new instance of the same template.
func (i *Instance) Copy() *Instance {
	return NewInstance(i.Card)
}

// View is the presentation form of an instance.
type View struct {
	InstanceID  string   `json:"instance_id"`
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Cost        int      `json:"cost"`
	Rarity      Rarity   `json:"rarity"`
	Block       int      `json:"block,omitempty"`
	Description string   `json:"description"`
}

// ToView converts the instance for presentation.
func (i *Instance) ToView() View {
	return View{
		InstanceID:  i.InstanceID,
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		Cost:        i.Cost,
		Rarity:      i.Rarity,
		Block:       i.Block,
		Description: i.Description,
	}
}
