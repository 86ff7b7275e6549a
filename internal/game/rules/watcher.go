package rules

import (
	"sync"
)

// Watcher observes match events and keeps derived state, such as tallies
// shown to players.
type Watcher interface {
	// Watch is called for every event published on the bus it is attached to.
	Watch(event Event)

	// Reset clears the watcher's state (a restarted match).
	Reset()

	// Key returns a unique key for this watcher instance.
	Key() string
}

// WatcherRegistry manages the watchers of one match.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher // key -> watcher
	order    []string
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher to the registry. A watcher with the same key
// replaces the previous one.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.Key()
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// RemoveWatcher removes a watcher from the registry.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if _, ok := wr.watchers[key]; !ok {
		return
	}
	delete(wr.watchers, key)
	for i, k := range wr.order {
		if k == key {
			wr.order = append(wr.order[:i], wr.order[i+1:]...)
			break
		}
	}
}

// GetWatcher retrieves a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// ResetWatchers resets all watchers.
func (wr *WatcherRegistry) ResetWatchers() {
	for _, watcher := range wr.snapshot() {
		watcher.Reset()
	}
}

// NotifyWatchers notifies every watcher of an event in registration order.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	for _, watcher := range wr.snapshot() {
		watcher.Watch(event)
	}
}

// Attach subscribes the registry to bus and returns the subscription handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.NotifyWatchers)
}

func (wr *WatcherRegistry) snapshot() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	out := make([]Watcher, 0, len(wr.order))
	for _, key := range wr.order {
		out = append(out, wr.watchers[key])
	}
	return out
}
