package room

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/cards"
)

// Summary captures a room for listings.
type Summary struct {
	ID          string    `json:"room_id"`
	Status      Status    `json:"state"`
	PlayerCount int       `json:"player_count"`
	CreateTime  time.Time `json:"create_time"`
}

// Manager manages rooms
type Manager struct {
	rooms    map[string]*Room
	mu       sync.RWMutex
	settings Settings
	library  *cards.Library
	notifier Notifier
	logger   *zap.Logger
}

// NewManager creates a room manager dealing from library. A nil notifier
// drops updates; SetNotifier can attach one later.
func NewManager(settings Settings, library *cards.Library, notifier Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Manager{
		rooms:    make(map[string]*Room),
		settings: settings,
		library:  library,
		notifier: notifier,
		logger:   logger,
	}
}

// SetNotifier replaces the notifier used by rooms created afterwards.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// CreateRoom creates a new room with a short random id.
func (m *Manager) CreateRoom() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newRoomID()
	for m.rooms[id] != nil {
		id = newRoomID()
	}
	room := newRoom(id, m.settings, m.library, m.notifier, m.logger)
	m.rooms[id] = room

	m.logger.Info("room created", zap.String("room_id", id))
	return room
}

func newRoomID() string {
	return uuid.NewString()[:8]
}

// GetRoom retrieves a room by ID
func (m *Manager) GetRoom(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom closes and forgets a room.
func (m *Manager) RemoveRoom(roomID string) {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	delete(m.rooms, roomID)
	m.mu.Unlock()

	if ok {
		room.Close()
		m.logger.Info("room removed", zap.String("room_id", roomID))
	}
}

// List returns a summary of every room, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, Summary{
			ID:          room.ID,
			Status:      room.Status(),
			PlayerCount: room.PlayerCount(),
			CreateTime:  room.CreateTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out
}

// GetActiveRoomCount returns the count of rooms not finished
func (m *Manager) GetActiveRoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, room := range m.rooms {
		if room.Status() != StatusFinished {
			count++
		}
	}
	return count
}

// Close shuts every room down.
func (m *Manager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
}
