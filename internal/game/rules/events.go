package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType indicates the category of a battle event.
type EventType string

const (
	// Battle lifecycle events
	EventBattleStarted EventType = "BATTLE_STARTED"
	EventBattleEnded   EventType = "BATTLE_ENDED"
	EventTurnStarted   EventType = "TURN_STARTED"
	EventTurnEnded     EventType = "TURN_ENDED"
	EventStateChanged  EventType = "STATE_CHANGED"

	// Card events
	EventCardPlayed    EventType = "CARD_PLAYED"
	EventCardConverted EventType = "CARD_CONVERTED"
	EventCardsDrawn    EventType = "CARDS_DRAWN"
	EventCardCopied    EventType = "CARD_COPIED"
	EventHandDiscarded EventType = "HAND_DISCARDED"
	EventReshuffled    EventType = "RESHUFFLED"

	// Combat events
	EventDamageDealt  EventType = "DAMAGE_DEALT"
	EventDamageTaken  EventType = "DAMAGE_TAKEN"
	EventBlockGained  EventType = "BLOCK_GAINED"
	EventHealed       EventType = "HEALED"
	EventHPLost       EventType = "HP_LOST"
	EventEnergyGained EventType = "ENERGY_GAINED"

	// Status events
	EventStatusApplied EventType = "STATUS_APPLIED"
	EventStatusDecayed EventType = "STATUS_DECAYED"
	EventStatusCleared EventType = "STATUS_CLEARED"

	// Enemy events
	EventIntentChanged EventType = "INTENT_CHANGED"
	EventEnemyMoved    EventType = "ENEMY_MOVED"

	// Progression-facing events
	EventCurrencyGained EventType = "CURRENCY_GAINED"

	// Battle log line
	EventLog EventType = "LOG"
)

// IsFloatingNumber reports whether the event carries a delta that the
// presentation layer shows as a floating number.
func (et EventType) IsFloatingNumber() bool {
	switch et {
	case EventDamageDealt, EventDamageTaken, EventBlockGained, EventHealed, EventHPLost, EventCurrencyGained:
		return true
	default:
		return false
	}
}

// Side targets used in events.
const (
	TargetPlayer = "player"
	TargetEnemy  = "enemy"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType         `json:"type"`
	ID          string            `json:"id"`
	BattleID    string            `json:"battle_id"`
	SourceID    string            `json:"source_id,omitempty"`
	TargetID    string            `json:"target_id,omitempty"`
	Amount      int               `json:"amount"`
	Data        string            `json:"data,omitempty"`
	Turn        int               `json:"turn"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Listeners run outside the bus lock and may subscribe or publish themselves.
func (bus *EventBus) Publish(event Event) {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	handles := make([]int, 0, len(bus.listeners))
	for handle := range bus.listeners {
		handles = append(handles, handle)
	}
	sort.Ints(handles)
	all := make([]Listener, 0, len(handles))
	for _, handle := range handles {
		all = append(all, bus.listeners[handle])
	}
	typed := append([]TypedListener(nil), bus.typedListeners[event.Type]...)
	bus.mu.RUnlock()

	for _, listener := range all {
		listener(event)
	}
	for _, listener := range typed {
		listener.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, battleID, targetID string) Event {
	return Event{
		Type:      eventType,
		ID:        ulid.Make().String(),
		BattleID:  battleID,
		TargetID:  targetID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, battleID, targetID string, amount int) Event {
	evt := NewEvent(eventType, battleID, targetID)
	evt.Amount = amount
	return evt
}
