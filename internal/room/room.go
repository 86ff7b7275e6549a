package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/cards"
	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/rules"
	"github.com/summerquest/idiom-duel-go/internal/game/watchers"
	"github.com/summerquest/idiom-duel-go/internal/judge"
)

// Status represents the lifecycle of a room.
type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusWaiting, StatusPlaying, StatusFinished} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown room status %q", text)
}

// Settings are the match rules applied by every Start.
type Settings struct {
	MaxScore    int
	InitialHand int
	Shuffle     bool
	Judge       judge.Config
}

// Notifier pushes room updates to connected clients. The server's hub
// implements it.
type Notifier interface {
	// StateChanged tells every connection of the room to fetch a fresh view.
	StateChanged(roomID string)
	// Prompt delivers a judge question to the connection of playerKey.
	Prompt(roomID, playerKey string, p Prompt) error
}

type nopNotifier struct{}

func (nopNotifier) StateChanged(string) {}
func (nopNotifier) Prompt(string, string, Prompt) error {
	return fmt.Errorf("no connection: %w", ErrNoPrompt)
}

// Seat binds an opaque player key to a player id.
type Seat struct {
	Key      string
	PlayerID string
}

type command struct {
	fn    func() error
	reply chan error
}

// Room hosts one match between two seated players.
//
// Every engine access runs as a command on the room's own goroutine, so at
// most one turn is in flight per match. Seats, status and the latest state
// view are guarded by mu and may be read from any goroutine.
type Room struct {
	ID         string
	CreateTime time.Time

	settings Settings
	library  *cards.Library
	notifier Notifier
	logger   *zap.Logger
	prompts  *promptBroker

	mu       sync.RWMutex
	seats    []Seat
	status   Status
	snapshot game.StateView
	winner   string
	replay   *game.Replay
	stats    *watchers.PlayStatsWatcher
	armed    map[string]int // player id -> counter card armed for the opponent's next turn

	cmds      chan command
	done      chan struct{}
	closeOnce sync.Once

	// owned by the room goroutine
	engine *game.Engine
}

func newRoom(id string, settings Settings, library *cards.Library, notifier Notifier, logger *zap.Logger) *Room {
	r := &Room{
		ID:         id,
		CreateTime: time.Now(),
		settings:   settings,
		library:    library,
		notifier:   notifier,
		logger:     logger.With(zap.String("room_id", id)),
		prompts:    newPromptBroker(),
		seats:      make([]Seat, 0, 2),
		status:     StatusWaiting,
		armed:      make(map[string]int),
		cmds:       make(chan command),
		done:       make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case cmd := <-r.cmds:
			cmd.reply <- cmd.fn()
		case <-r.done:
			return
		}
	}
}

// do runs fn on the room goroutine and waits for its result.
func (r *Room) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case r.cmds <- command{fn: fn, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Close stops the room goroutine. Pending prompts are abandoned.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Join seats a new player and returns their key and player id.
func (r *Room) Join() (Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.seats) >= 2 {
		return Seat{}, ErrRoomFull
	}
	seat := Seat{
		Key:      uuid.NewString(),
		PlayerID: fmt.Sprintf("player%d", len(r.seats)+1),
	}
	r.seats = append(r.seats, seat)

	r.logger.Info("player joined", zap.String("player_id", seat.PlayerID), zap.Int("player_count", len(r.seats)))
	return seat, nil
}

// PlayerCount returns the number of seated players.
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seats)
}

// PlayerID resolves a player key.
func (r *Room) PlayerID(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playerIDLocked(key)
}

func (r *Room) playerIDLocked(key string) (string, bool) {
	for _, s := range r.seats {
		if s.Key == key {
			return s.PlayerID, true
		}
	}
	return "", false
}

func (r *Room) keyOf(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s.PlayerID == playerID {
			return s.Key, true
		}
	}
	return "", false
}

// Status returns the room lifecycle state.
func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Start deals a fresh match. It may be called again to restart.
func (r *Room) Start(ctx context.Context, key string) error {
	r.mu.RLock()
	_, seated := r.playerIDLocked(key)
	count := len(r.seats)
	r.mu.RUnlock()

	if !seated {
		return ErrNotInRoom
	}
	if count < 2 {
		return ErrNeedTwoPlayers
	}

	return r.do(ctx, func() error {
		oracle, err := judge.New(r.settings.Judge, roomPrompter{room: r}, r.logger)
		if err != nil {
			return err
		}

		state := game.NewState(r.library.Deck(), game.Options{Shuffle: r.settings.Shuffle})
		bus := rules.NewEventBus()
		engine := game.NewEngine(state, oracle, game.EngineOptions{
			MaxScore: r.settings.MaxScore,
			Bus:      bus,
			Logger:   r.logger,
		})
		stats := watchers.NewPlayStatsWatcher()
		registry := rules.NewWatcherRegistry()
		registry.AddWatcher(stats)
		registry.Attach(bus)
		bus.Subscribe(r.onEvent)

		r.mu.Lock()
		r.engine = engine
		r.replay = game.NewReplay(r.ID, r.logger)
		r.stats = stats
		r.status = StatusPlaying
		r.winner = ""
		r.armed = make(map[string]int)
		r.mu.Unlock()

		engine.Deal(r.settings.InitialHand)
		r.refresh()
		r.replay.RecordState("start", r.currentView())

		r.logger.Info("game started",
			zap.Int("deck", len(state.Deck)),
			zap.Int("initial_hand", r.settings.InitialHand),
			zap.String("judge_mode", string(oracle.Mode())),
		)
		return nil
	})
}

// Play runs one turn for the player holding key. An armed counter of the
// opponent is spent once it resolves. Retrying a turn that stopped on a judge
// error resumes it with the counter it started with.
func (r *Room) Play(ctx context.Context, key string, cardID int, comboID *int) (*game.TurnResult, error) {
	playerID, ok := r.PlayerID(key)
	if !ok {
		return nil, ErrNotInRoom
	}

	var result *game.TurnResult
	err := r.do(ctx, func() error {
		if r.engine == nil {
			return ErrNotStarted
		}
		state := r.engine.State()
		if r.engine.Finished() {
			return game.ErrGameOver
		}
		if state.CurrentPlayerID() != playerID {
			return ErrNotYourTurn
		}

		req := game.TurnRequest{MainCardID: cardID, ComboCardID: comboID}
		defender := state.Opponent()
		if pending, stopped := r.engine.PendingTurn(); stopped {
			req.CounterCardID = pending.CounterCardID
		} else {
			r.mu.RLock()
			id, armed := r.armed[defender.ID]
			r.mu.RUnlock()
			if armed {
				if card, held := defender.Find(id); held && card.IsCounter() {
					req.CounterCardID = &id
				}
			}
		}

		res, err := r.engine.RunTurn(ctx, req)
		result = res
		if err != nil {
			return err
		}
		if req.CounterCardID != nil && counterResolved(res) {
			r.mu.Lock()
			if r.armed[defender.ID] == *req.CounterCardID {
				delete(r.armed, defender.ID)
			}
			r.mu.Unlock()
		}
		r.replay.RecordState(fmt.Sprintf("round %d: %s played %d", res.Round-1, playerID, cardID), r.currentView())
		return nil
	})
	return result, err
}

func counterResolved(res *game.TurnResult) bool {
	for _, rs := range res.Resolutions {
		if rs.Role == game.RoleCounter {
			return true
		}
	}
	return false
}

// DeclareCounter arms a counter card for the opponent's next turn. A zero
// cardID disarms.
func (r *Room) DeclareCounter(ctx context.Context, key string, cardID int) error {
	playerID, ok := r.PlayerID(key)
	if !ok {
		return ErrNotInRoom
	}

	return r.do(ctx, func() error {
		if r.engine == nil {
			return ErrNotStarted
		}
		if r.engine.Finished() {
			return game.ErrGameOver
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if cardID == 0 {
			delete(r.armed, playerID)
			return nil
		}
		player, _ := r.engine.State().PlayerByID(playerID)
		card, held := player.Find(cardID)
		if !held {
			return fmt.Errorf("counter card %d: %w", cardID, game.ErrCardNotInHand)
		}
		if !card.IsCounter() {
			return fmt.Errorf("counter card %d is %s: %w", cardID, card.Type, game.ErrWrongCardType)
		}
		r.armed[playerID] = cardID
		return nil
	})
}

// Answer delivers a reply to an open judge prompt of the player holding key.
func (r *Room) Answer(key, promptID, text string) error {
	playerID, ok := r.PlayerID(key)
	if !ok {
		return ErrNotInRoom
	}
	return r.prompts.deliver(playerID, promptID, text)
}

// PendingPrompts lists the open prompts of the player holding key.
func (r *Room) PendingPrompts(key string) []Prompt {
	playerID, ok := r.PlayerID(key)
	if !ok {
		return nil
	}
	return r.prompts.pendingFor(playerID)
}

// History returns the recorded views of the current match.
func (r *Room) History() []*game.ReplayFrame {
	r.mu.RLock()
	replay := r.replay
	r.mu.RUnlock()

	if replay == nil {
		return nil
	}
	return replay.Frames()
}

// onEvent runs on the room goroutine while the engine publishes.
func (r *Room) onEvent(e rules.Event) {
	switch e.Type {
	case rules.EventPhaseChanged, rules.EventCardDealt:
		return
	case rules.EventGameOver:
		r.mu.Lock()
		r.status = StatusFinished
		r.winner = e.Data
		r.mu.Unlock()
	}
	r.refresh()
}

// refresh snapshots the engine state and tells clients about it.
func (r *Room) refresh() {
	view := r.engine.State().View(r.engine.MaxScore())
	r.mu.Lock()
	r.snapshot = view
	r.mu.Unlock()
	r.notifier.StateChanged(r.ID)
}

func (r *Room) currentView() game.StateView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}
