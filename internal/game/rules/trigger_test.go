package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerManagerHandle(t *testing.T) {
	manager := NewTriggerManager()

	fired := 0
	manager.Register(Trigger{
		Name:      "battle flow",
		EventType: EventCardPlayed,
		Condition: func(e Event) bool {
			return e.Metadata["cards_played_this_turn"] == "3"
		},
		Fire: func(Event) { fired++ },
	})

	evt := NewEvent(EventCardPlayed, "battle-1", TargetPlayer)
	evt.Metadata["cards_played_this_turn"] = "2"
	assert.Equal(t, 0, manager.Handle(evt))

	evt.Metadata["cards_played_this_turn"] = "3"
	assert.Equal(t, 1, manager.Handle(evt))
	assert.Equal(t, 1, fired)

	assert.Equal(t, 0, manager.Handle(NewEvent(EventTurnEnded, "battle-1", TargetPlayer)))
}

func TestTriggerManagerOnceAndUnregister(t *testing.T) {
	manager := NewTriggerManager()

	onceCount := 0
	manager.Register(Trigger{
		EventType: EventTurnStarted,
		Fire:      func(Event) { onceCount++ },
		Once:      true,
	})
	repeatCount := 0
	id := manager.Register(Trigger{
		EventType: EventTurnStarted,
		Fire:      func(Event) { repeatCount++ },
	})
	assert.NotEmpty(t, id)
	assert.Equal(t, 2, manager.Len())

	evt := NewEvent(EventTurnStarted, "battle-1", TargetPlayer)
	manager.Handle(evt)
	manager.Handle(evt)
	assert.Equal(t, 1, onceCount)
	assert.Equal(t, 2, repeatCount)
	assert.Equal(t, 1, manager.Len())

	manager.Unregister(id)
	manager.Handle(evt)
	assert.Equal(t, 2, repeatCount)
	assert.Equal(t, 0, manager.Len())
}

func TestTriggerManagerPreservesRegistrationOrder(t *testing.T) {
	manager := NewTriggerManager()

	var order []string
	for _, name := range []string{"metallicize", "demon_form", "berserk"} {
		name := name
		manager.Register(Trigger{
			Name:      name,
			EventType: EventTurnEnded,
			Fire:      func(Event) { order = append(order, name) },
		})
	}

	manager.Handle(NewEvent(EventTurnEnded, "battle-1", TargetPlayer))
	assert.Equal(t, []string{"metallicize", "demon_form", "berserk"}, order)
}
