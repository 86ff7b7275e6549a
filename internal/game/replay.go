package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReplayFrame is one recorded state of a match.
type ReplayFrame struct {
	Index      int       `json:"index"`
	Label      string    `json:"label"`
	Round      int       `json:"round"`
	View       StateView `json:"view"`
	Checksum   string    `json:"checksum"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Replay represents a recorded match with sequential state snapshots.
// Recording happens on the match goroutine; reads may come from anywhere.
type Replay struct {
	GameID       string
	States       []*ReplayFrame
	CurrentIndex int
	logger       *zap.Logger
	mu           sync.RWMutex
}

// NewReplay creates a new replay instance
func NewReplay(gameID string, logger *zap.Logger) *Replay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replay{
		GameID:       gameID,
		States:       make([]*ReplayFrame, 0),
		CurrentIndex: 0,
		logger:       logger,
	}
}

// RecordState appends a snapshot of view labelled with what just happened.
func (r *Replay) RecordState(label string, view StateView) *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame := &ReplayFrame{
		Index:      len(r.States),
		Label:      label,
		Round:      view.TurnCount,
		View:       view,
		Checksum:   view.Checksum(),
		RecordedAt: time.Now(),
	}
	r.States = append(r.States, frame)

	r.logger.Debug("recorded replay state",
		zap.String("game_id", r.GameID),
		zap.String("label", label),
		zap.Int("state_count", len(r.States)),
	)
	return frame
}

// Start resets the replay to the beginning
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and advances it
func (r *Replay) Next() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state
	}
	return nil
}

// Previous moves the cursor back one state and returns it
func (r *Replay) Previous() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Skip moves forward by the specified number of states
func (r *Replay) Skip(count int) *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.States) {
		newIndex = len(r.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}

	r.CurrentIndex = newIndex
	if r.CurrentIndex < len(r.States) {
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Size returns the number of recorded states
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// GetStateAt returns the state at a specific index
func (r *Replay) GetStateAt(index int) *ReplayFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index]
	}
	return nil
}

// Frames returns a copy of the recorded frame list.
func (r *Replay) Frames() []*ReplayFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ReplayFrame, len(r.States))
	copy(out, r.States)
	return out
}

// Latest returns the most recent frame, or nil before anything was recorded.
func (r *Replay) Latest() *ReplayFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
