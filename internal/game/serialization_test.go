package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// TestStateViewJSON checks the wire names used by the HTTP layer.
func TestStateViewJSON(t *testing.T) {
	s := NewState(makeCards(4), Options{})
	s.Draw(s.Player1)
	s.MoveCard(zone.Deck, zone.Discard, 2)

	raw, err := json.Marshal(s.View(DefaultMaxScore))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 2, decoded["deck_count"])
	assert.EqualValues(t, 1, decoded["discard_count"])
	assert.EqualValues(t, 1, decoded["turn_count"])
	assert.Equal(t, Player1ID, decoded["current_player_id"])
	assert.Equal(t, false, decoded["is_over"])

	p1 := decoded["player1"].(map[string]any)
	assert.EqualValues(t, 1, p1["hand_count"])
	hand := p1["hand"].([]any)
	require.Len(t, hand, 1)
	card := hand[0].(map[string]any)
	assert.Equal(t, "normal", card["card_type"])
	assert.NotContains(t, card, "Effects")
}

// TestChecksumDeterministic verifies identical states digest identically
// regardless of map iteration order in zone_counts.
func TestChecksumDeterministic(t *testing.T) {
	sums := make([]string, 10)
	for i := range sums {
		s := NewState(makeCards(8), Options{})
		s.Draw(s.Player2)
		sums[i] = s.View(DefaultMaxScore).Checksum()
	}
	for i := 1; i < len(sums); i++ {
		assert.Equal(t, sums[0], sums[i], "checksum %d differs", i)
	}
}

func TestChecksumDifferentStates(t *testing.T) {
	a := NewState(makeCards(8), Options{})
	b := NewState(makeCards(8), Options{})
	b.SwitchTurn()

	assert.NotEqual(t, a.View(DefaultMaxScore).Checksum(), b.View(DefaultMaxScore).Checksum())
}
