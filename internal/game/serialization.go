package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// PlayerView is the serialisable state of one player.
type PlayerView struct {
	PlayerID   string `json:"player_id"`
	HandCount  int    `json:"hand_count"`
	ScoreCount int    `json:"score_count"`
	Hand       []Card `json:"hand"`
	ScoreZone  []Card `json:"score_zone"`
}

// StateView is the full, unredacted state of a match. Hiding the opponent's
// hand is up to the transport layer.
type StateView struct {
	DeckCount       int            `json:"deck_count"`
	DiscardCount    int            `json:"discard_count"`
	DiscardPile     []Card         `json:"discard_pile"`
	TurnCount       int            `json:"turn_count"`
	CurrentPlayerID string         `json:"current_player_id"`
	Player1         PlayerView     `json:"player1"`
	Player2         PlayerView     `json:"player2"`
	ZoneCounts      map[string]int `json:"zone_counts"`
	IsOver          bool           `json:"is_over"`
}

// View snapshots the state. The finished flag uses maxScore.
func (s *State) View(maxScore int) StateView {
	counts := make(map[string]int, zone.Count)
	for z, n := range s.ZoneCounts() {
		counts[z.String()] = n
	}
	return StateView{
		DeckCount:       len(s.Deck),
		DiscardCount:    len(s.DiscardPile),
		DiscardPile:     cardValues(s.DiscardPile),
		TurnCount:       s.Round(),
		CurrentPlayerID: s.CurrentPlayerID(),
		Player1:         playerView(s.Player1),
		Player2:         playerView(s.Player2),
		ZoneCounts:      counts,
		IsOver:          s.IsOver(maxScore),
	}
}

// Player returns the view of the player with the given id.
func (v StateView) Player(id string) (PlayerView, bool) {
	switch id {
	case v.Player1.PlayerID:
		return v.Player1, true
	case v.Player2.PlayerID:
		return v.Player2, true
	}
	return PlayerView{}, false
}

func playerView(p *Player) PlayerView {
	return PlayerView{
		PlayerID:   p.ID,
		HandCount:  p.HandCount(),
		ScoreCount: p.ScoreCount(),
		Hand:       cardValues(p.Hand),
		ScoreZone:  cardValues(p.Score),
	}
}

func cardValues(cards []*Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = *c
	}
	return out
}

// Checksum computes a SHA-256 digest over a canonical rendering of the view.
// Card order inside each zone is part of the digest.
func (v StateView) Checksum() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%d|%s|%t\n", v.TurnCount, v.CurrentPlayerID, v.IsOver)
	fmt.Fprintf(&buf, "DECK:%d\n", v.DeckCount)
	writeCards(&buf, "DISCARD", v.DiscardPile)
	for _, p := range []PlayerView{v.Player1, v.Player2} {
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d\n", p.PlayerID, p.HandCount, p.ScoreCount)
		writeCards(&buf, "  HAND", p.Hand)
		writeCards(&buf, "  SCORE", p.ScoreZone)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeCards(buf *bytes.Buffer, label string, cards []Card) {
	for _, c := range cards {
		fmt.Fprintf(buf, "%s:%d|%s|%s\n", label, c.ID, c.Name, c.Type)
	}
}
