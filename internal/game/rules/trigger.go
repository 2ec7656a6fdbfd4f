package rules

import (
	"sync"

	"github.com/google/uuid"
)

// Trigger reacts to a specific event type when its condition holds.
type Trigger struct {
	ID        string
	Name      string
	EventType EventType
	Condition func(Event) bool
	Fire      func(Event)
	Once      bool
}

// TriggerManager stores triggers and evaluates them against events in
// registration order.
type TriggerManager struct {
	mu       sync.Mutex
	triggers []Trigger
}

// NewTriggerManager creates an empty trigger manager.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{}
}

// Register adds a new trigger to the manager and returns its ID.
func (tm *TriggerManager) Register(trigger Trigger) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	tm.triggers = append(tm.triggers, trigger)
	return trigger.ID
}

// Unregister removes a trigger by ID.
func (tm *TriggerManager) Unregister(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for i, trigger := range tm.triggers {
		if trigger.ID == id {
			tm.triggers = append(tm.triggers[:i], tm.triggers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered triggers.
func (tm *TriggerManager) Len() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.triggers)
}

// Handle fires every matching trigger and returns how many fired.
// Fire callbacks run outside the manager lock.
func (tm *TriggerManager) Handle(event Event) int {
	tm.mu.Lock()
	var matched []Trigger
	kept := tm.triggers[:0]
	for _, trigger := range tm.triggers {
		if trigger.EventType != event.Type || trigger.Fire == nil ||
			(trigger.Condition != nil && !trigger.Condition(event)) {
			kept = append(kept, trigger)
			continue
		}
		matched = append(matched, trigger)
		if !trigger.Once {
			kept = append(kept, trigger)
		}
	}
	tm.triggers = kept
	tm.mu.Unlock()

	for _, trigger := range matched {
		trigger.Fire(event)
	}
	return len(matched)
}
