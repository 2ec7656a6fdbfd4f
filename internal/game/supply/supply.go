// Package supply implements a battle's draw pile, hand and discard pile.
package supply

import (
	"fmt"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

// Supply holds the three piles of one battle. Together they are a
// permutation of the battle deck. The top of the draw pile is its last
// element.
type Supply struct {
	src         rng.Source
	drawPile    []*cards.Instance
	hand        []*cards.Instance
	discardPile []*cards.Instance
	deckSize    int
}

// New places every card in the draw pile, unshuffled.
func New(deck []*cards.Instance, src rng.Source) *Supply {
	return &Supply{
		src:      src,
		drawPile: append([]*cards.Instance(nil), deck...),
		deckSize: len(deck),
	}
}

// Shuffle permutes the draw pile uniformly (Fisher-Yates).
func (s *Supply) Shuffle() {
	shuffle(s.drawPile, s.src)
}

func shuffle(pile []*cards.Instance, src rng.Source) {
	for i := len(pile) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		pile[i], pile[j] = pile[j], pile[i]
	}
}

// Draw moves up to n cards from the top of the draw pile into the hand.
// An empty draw pile is refilled from the discard pile, shuffled; when both
// are empty drawing stops without error. It returns the cards drawn and
// whether a reshuffle happened.
func (s *Supply) Draw(n int) ([]*cards.Instance, bool) {
	var drawn []*cards.Instance
	reshuffled := false
	for i := 0; i < n; i++ {
		if len(s.drawPile) == 0 {
			if len(s.discardPile) == 0 {
				break
			}
			s.ReshuffleDiscard()
			reshuffled = true
		}
		top := len(s.drawPile) - 1
		card := s.drawPile[top]
		s.drawPile[top] = nil
		s.drawPile = s.drawPile[:top]
		s.hand = append(s.hand, card)
		drawn = append(drawn, card)
	}
	return drawn, reshuffled
}

// ReshuffleDiscard moves the discard pile into the draw pile and shuffles
// the result. It returns the number of cards moved.
func (s *Supply) ReshuffleDiscard() int {
	moved := len(s.discardPile)
	s.drawPile = append(s.drawPile, s.discardPile...)
	s.discardPile = nil
	s.Shuffle()
	return moved
}

// Discard moves the given instance from hand to the discard pile. Identity
// is by pointer, so copies of the same template are told apart.
func (s *Supply) Discard(card *cards.Instance) bool {
	if !s.RemoveFromHand(card) {
		return false
	}
	s.discardPile = append(s.discardPile, card)
	return true
}

// RemoveFromHand takes the instance out of the hand without placing it
// anywhere. The caller must put it back with PutInDiscard before the
// action completes.
func (s *Supply) RemoveFromHand(card *cards.Instance) bool {
	for i, c := range s.hand {
		if c == card {
			s.hand = append(s.hand[:i], s.hand[i+1:]...)
			return true
		}
	}
	return false
}

// PutInDiscard places a card that is in no pile onto the discard pile.
func (s *Supply) PutInDiscard(card *cards.Instance) {
	s.discardPile = append(s.discardPile, card)
}

// DiscardHand moves the whole hand to the discard pile and returns how
// many cards moved.
func (s *Supply) DiscardHand() int {
	moved := len(s.hand)
	s.discardPile = append(s.discardPile, s.hand...)
	s.hand = nil
	return moved
}

// AddToHand puts a new card into the hand. The card joins the battle deck.
func (s *Supply) AddToHand(card *cards.Instance) {
	s.hand = append(s.hand, card)
	s.deckSize++
}

// FindInHand returns the hand card with the given instance id.
func (s *Supply) FindInHand(instanceID string) (*cards.Instance, bool) {
	for _, c := range s.hand {
		if c.InstanceID == instanceID {
			return c, true
		}
	}
	return nil, false
}

// InHand reports whether the instance is currently in hand.
func (s *Supply) InHand(card *cards.Instance) bool {
	for _, c := range s.hand {
		if c == card {
			return true
		}
	}
	return false
}

// Cheapest returns the lowest cost card in hand, the earliest on ties.
func (s *Supply) Cheapest() (*cards.Instance, bool) {
	if len(s.hand) == 0 {
		return nil, false
	}
	cheapest := s.hand[0]
	for _, c := range s.hand[1:] {
		if c.Cost < cheapest.Cost {
			cheapest = c
		}
	}
	return cheapest, true
}

// Hand returns a copy of the hand in draw order.
func (s *Supply) Hand() []*cards.Instance {
	return append([]*cards.Instance(nil), s.hand...)
}

// DrawPile returns a copy of the draw pile, top last.
func (s *Supply) DrawPile() []*cards.Instance {
	return append([]*cards.Instance(nil), s.drawPile...)
}

// DiscardPile returns a copy of the discard pile.
func (s *Supply) DiscardPile() []*cards.Instance {
	return append([]*cards.Instance(nil), s.discardPile...)
}

// HandSize returns the number of cards in hand.
func (s *Supply) HandSize() int { return len(s.hand) }

// DrawSize returns the number of cards in the draw pile.
func (s *Supply) DrawSize() int { return len(s.drawPile) }

// DiscardSize returns the number of cards in the discard pile.
func (s *Supply) DiscardSize() int { return len(s.discardPile) }

// DeckSize returns the size of the battle deck.
func (s *Supply) DeckSize() int { return s.deckSize }

// Check verifies that the piles account for the whole deck.
func (s *Supply) Check() error {
	total := len(s.drawPile) + len(s.hand) + len(s.discardPile)
	if total != s.deckSize {
		return fmt.Errorf("card supply holds %d cards (draw %d, hand %d, discard %d), deck has %d",
			total, len(s.drawPile), len(s.hand), len(s.discardPile), s.deckSize)
	}
	return nil
}
