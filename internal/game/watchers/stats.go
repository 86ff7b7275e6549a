// Package watchers holds event watchers that derive match statistics.
package watchers

import (
	"sync"

	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/rules"
)

// Tally counts what one player did during a match.
type Tally struct {
	Resolved      int `json:"resolved"`
	Scored        int `json:"scored"`
	EffectsRun    int `json:"effects_run"`
	Discarded     int `json:"discarded"`
	Drawn         int `json:"drawn"`
	CardsMoved    int `json:"cards_moved"`
	ChainsAborted int `json:"chains_aborted"`
	Passes        int `json:"passes"`
}

// PlayStatsWatcher tallies resolutions, draws and effect moves per player.
// Watch runs on the match goroutine; Tally may be called from any goroutine.
type PlayStatsWatcher struct {
	mu      sync.RWMutex
	tallies map[string]*Tally // player id -> tally
}

var _ rules.Watcher = (*PlayStatsWatcher)(nil)

// NewPlayStatsWatcher creates an empty stats watcher.
func NewPlayStatsWatcher() *PlayStatsWatcher {
	return &PlayStatsWatcher{tallies: make(map[string]*Tally)}
}

// Key implements rules.Watcher.
func (w *PlayStatsWatcher) Key() string { return "PlayStatsWatcher" }

// Watch implements rules.Watcher.
func (w *PlayStatsWatcher) Watch(event rules.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch event.Type {
	case rules.EventCardDrawn:
		w.tally(event.PlayerID).Drawn++
	case rules.EventCardResolved:
		t := w.tally(event.PlayerID)
		t.Resolved++
		switch event.Data {
		case string(game.OutcomeDiscarded):
			t.Discarded++
		case string(game.OutcomeScored):
			t.Scored++
		case string(game.OutcomeScoredWithEffect):
			t.Scored++
			t.EffectsRun++
		}
	case rules.EventCardsMoved:
		w.tally(event.PlayerID).CardsMoved += event.Amount
	case rules.EventChainAborted:
		w.tally(event.PlayerID).ChainsAborted++
	case rules.EventTurnPassed:
		w.tally(event.PlayerID).Passes++
	}
}

func (w *PlayStatsWatcher) tally(playerID string) *Tally {
	t, ok := w.tallies[playerID]
	if !ok {
		t = &Tally{}
		w.tallies[playerID] = t
	}
	return t
}

// Reset implements rules.Watcher.
func (w *PlayStatsWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tallies = make(map[string]*Tally)
}

// Tally returns a copy of playerID's counts.
func (w *PlayStatsWatcher) Tally(playerID string) Tally {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if t, ok := w.tallies[playerID]; ok {
		return *t
	}
	return Tally{}
}
