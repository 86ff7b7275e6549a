package room

import (
	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/watchers"
)

// PlayerState is one seat as seen by a requester. HandCards is only filled
// for the requester's own seat.
type PlayerState struct {
	PlayerID     string          `json:"player_id"`
	Ready        bool            `json:"ready"`
	HandCount    int             `json:"hand_count"`
	ScoreCount   int             `json:"score_count"`
	ScoreCards   []game.Card     `json:"score_cards"`
	HandCards    []game.Card     `json:"hand_cards,omitempty"`
	CounterArmed bool            `json:"counter_armed,omitempty"`
	Stats        *watchers.Tally `json:"stats,omitempty"`
}

// GameView is the client-facing state of a room. Player keys are never
// included; You names the requester's own player id.
type GameView struct {
	RoomID          string         `json:"room_id"`
	State           Status         `json:"state"`
	You             string         `json:"you,omitempty"`
	DeckCount       int            `json:"deck_count"`
	DiscardCount    int            `json:"discard_count"`
	DiscardPile     []game.Card    `json:"discard_pile"`
	TurnCount       int            `json:"turn_count"`
	CurrentPlayerID string         `json:"current_player_id,omitempty"`
	ZoneCounts      map[string]int `json:"zone_counts,omitempty"`
	Winner          string         `json:"winner,omitempty"`
	Players         []PlayerState  `json:"players"`
}

// View formats the room for the player holding key. An unknown or empty
// key gets the spectator view with every hand hidden.
func (r *Room) View(key string) GameView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	you, _ := r.playerIDLocked(key)
	view := GameView{
		RoomID:  r.ID,
		State:   r.status,
		You:     you,
		Winner:  r.winner,
		Players: make([]PlayerState, 0, len(r.seats)),
	}

	if r.status == StatusWaiting {
		for _, seat := range r.seats {
			view.Players = append(view.Players, PlayerState{PlayerID: seat.PlayerID, Ready: true})
		}
		return view
	}

	snap := r.snapshot
	view.DeckCount = snap.DeckCount
	view.DiscardCount = snap.DiscardCount
	view.DiscardPile = snap.DiscardPile
	view.TurnCount = snap.TurnCount
	view.CurrentPlayerID = snap.CurrentPlayerID
	view.ZoneCounts = snap.ZoneCounts

	for _, seat := range r.seats {
		pv, ok := snap.Player(seat.PlayerID)
		if !ok {
			continue
		}
		ps := PlayerState{
			PlayerID:   seat.PlayerID,
			Ready:      true,
			HandCount:  pv.HandCount,
			ScoreCount: pv.ScoreCount,
			ScoreCards: pv.ScoreZone,
		}
		if r.stats != nil {
			tally := r.stats.Tally(seat.PlayerID)
			ps.Stats = &tally
		}
		if seat.PlayerID == you {
			ps.HandCards = pv.Hand
			_, ps.CounterArmed = r.armed[you]
		}
		view.Players = append(view.Players, ps)
	}
	return view
}
