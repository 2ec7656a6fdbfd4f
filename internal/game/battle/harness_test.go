package battle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/deckbattle-server-go/internal/game/cards"
	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/enemies"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
	"github.com/magefree/deckbattle-server-go/internal/game/rules"
	"github.com/magefree/deckbattle-server-go/internal/game/supply"
)

// battleHarness drives a single session with a scripted random source that
// always picks index 0, so enemies use the first eligible move.
type battleHarness struct {
	t       *testing.T
	engine  *Engine
	session *Session
	events  []rules.Event
}

// dummyEnemy has 100 hp and a single move running program.
func dummyEnemy(program ...effects.Instruction) enemies.Template {
	return enemies.Template{
		ID:    99,
		Name:  "Training Dummy",
		MaxHP: 100,
		Moves: []enemies.Move{{Name: "Hit", Description: "Test move", Effect: program}},
	}
}

func newHarness(t *testing.T, enemy enemies.Template, configure ...func(*Config)) *battleHarness {
	t.Helper()
	cfg := DefaultConfig()
	for _, fn := range configure {
		fn(&cfg)
	}

	engine, err := NewEngine(cfg, nil, nil, rng.NewScripted(), zaptest.NewLogger(t))
	require.NoError(t, err)

	deck, err := engine.Cards().StarterDeck()
	require.NoError(t, err)
	session, err := engine.StartBattle(deck, enemy)
	require.NoError(t, err)

	h := &battleHarness{t: t, engine: engine, session: session}
	session.Subscribe(func(evt rules.Event) {
		h.events = append(h.events, evt)
	})
	return h
}

func (h *battleHarness) card(id int) cards.Card {
	h.t.Helper()
	card, err := h.engine.Cards().GetByID(id)
	require.NoError(h.t, err)
	return card
}

// setPiles replaces the card supply: drawIDs form the draw pile (last is
// the top) and handIDs the hand, in order. It returns the hand instances.
func (h *battleHarness) setPiles(drawIDs, handIDs []int) []*cards.Instance {
	h.t.Helper()
	deck := make([]*cards.Instance, 0, len(drawIDs)+len(handIDs))
	for _, id := range drawIDs {
		deck = append(deck, cards.NewInstance(h.card(id)))
	}
	hand := make([]*cards.Instance, len(handIDs))
	for i, id := range handIDs {
		hand[i] = cards.NewInstance(h.card(id))
	}
	for i := len(hand) - 1; i >= 0; i-- {
		deck = append(deck, hand[i])
	}

	h.session.Supply = supply.New(deck, rng.NewScripted())
	h.session.Supply.Draw(len(hand))
	require.NoError(h.t, h.session.Supply.Check())
	return hand
}

// eventsOf returns the recorded events of one type.
func (h *battleHarness) eventsOf(eventType rules.EventType) []rules.Event {
	var out []rules.Event
	for _, evt := range h.events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

// indexOf returns the position of the n-th (0-based) event of a type, or -1.
func (h *battleHarness) indexOf(eventType rules.EventType, n int) int {
	for i, evt := range h.events {
		if evt.Type != eventType {
			continue
		}
		if n == 0 {
			return i
		}
		n--
	}
	return -1
}

func persistent(names ...string) func(*Config) {
	return func(cfg *Config) {
		cfg.PersistentStatuses = append([]string{"strength", "metallicize"}, names...)
	}
}
