package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a match event.
type EventType string

const (
	// Turn events
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventTurnSwitched EventType = "TURN_SWITCHED"
	EventTurnPassed   EventType = "TURN_PASSED"
	EventGameOver     EventType = "GAME_OVER"

	// Card events
	EventCardDrawn    EventType = "CARD_DRAWN"
	EventCardDealt    EventType = "CARD_DEALT"
	EventCardResolved EventType = "CARD_RESOLVED"
	EventComboSkipped EventType = "COMBO_SKIPPED"

	// Effect events
	EventCardsMoved   EventType = "CARDS_MOVED"
	EventChainAborted EventType = "CHAIN_ABORTED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string    // Unique event ID
	PlayerID    string    // Acting player, when there is one
	CardID      int       // Card the event is about (0 = none)
	Amount      int       // Numeric value (cards moved, round number, ...)
	From        string    // Source zone name for moves
	To          string    // Destination zone name for moves
	Data        string    // Additional string data (phase, outcome, winner)
	Round       int       // Round the event happened in
	Timestamp   time.Time // When the event occurred
	Description string    // Human-readable description
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
	listeners      map[int]Listener              // All listeners
	typedListeners map[EventType][]TypedListener // Listeners filtered by event type
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
// Listeners run outside the bus lock so they may subscribe or unsubscribe.
func (bus *EventBus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	callbacks := make([]func(Event), 0, len(bus.listeners)+len(bus.typedListeners[event.Type]))
	for _, listener := range bus.listeners {
		callbacks = append(callbacks, listener)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		callbacks = append(callbacks, listener.Callback)
	}
	bus.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, playerID string, cardID int) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		CardID:    cardID,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, playerID string, cardID, amount int) Event {
	evt := NewEvent(eventType, playerID, cardID)
	evt.Amount = amount
	return evt
}
