package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState(makeCards(6), Options{})

	assert.Equal(t, 6, s.Count(zone.Deck))
	assert.Equal(t, Player1ID, s.CurrentPlayerID())
	assert.Equal(t, 1, s.Round())
	assert.Equal(t, s.Player1, s.CurrentPlayer())
	assert.Equal(t, s.Player2, s.Opponent())
	assert.Equal(t, 1, s.Deck[0].ID, "unshuffled deck keeps its order")
}

func TestNewStateShuffleIsSeeded(t *testing.T) {
	a := NewState(makeCards(20), Options{Shuffle: true, Rand: rand.New(rand.NewPCG(1, 2))})
	b := NewState(makeCards(20), Options{Shuffle: true, Rand: rand.New(rand.NewPCG(1, 2))})

	idsA := make([]int, 0, 20)
	idsB := make([]int, 0, 20)
	for i := range a.Deck {
		idsA = append(idsA, a.Deck[i].ID)
		idsB = append(idsB, b.Deck[i].ID)
	}
	assert.Equal(t, idsA, idsB)
	assert.ElementsMatch(t, idsA, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20})
}

func TestDrawFromEmptyDeck(t *testing.T) {
	s := NewState(nil, Options{})

	card, ok := s.Draw(s.Player1)
	assert.False(t, ok)
	assert.Nil(t, card)
	assert.Equal(t, 0, s.Player1.HandCount())
}

func TestDrawTakesTopCard(t *testing.T) {
	s := NewState(makeCards(3), Options{})

	card, ok := s.Draw(s.Player2)
	require.True(t, ok)
	assert.Equal(t, 1, card.ID)
	assert.Equal(t, []int{1}, s.Player2.HandIDs())
	assert.Equal(t, 2, s.Count(zone.Deck))
}

func TestSwitchTurnIncrementsRound(t *testing.T) {
	s := NewState(makeCards(2), Options{})

	for i := 0; i < 5; i++ {
		before := s.Round()
		s.SwitchTurn()
		assert.Equal(t, before+1, s.Round())
	}
	assert.Equal(t, Player2ID, s.CurrentPlayerID())
}

func TestTransferIsAtomicAndOrdered(t *testing.T) {
	s := NewState(makeCards(5), Options{})

	moved := s.Transfer(zone.Deck, zone.Discard, []int{3, 1, 3, 9, -1})
	assert.Equal(t, 2, moved)
	assert.Equal(t, []int{4, 2}, ids(s.DiscardPile))
	assert.Equal(t, []int{1, 3, 5}, ids(s.Deck))
	assert.Len(t, s.Cards(), 5)
}

func TestTransferWithinSameZone(t *testing.T) {
	s := NewState(makeCards(4), Options{})

	moved := s.Transfer(zone.Deck, zone.Deck, []int{0})
	assert.Equal(t, 1, moved)
	assert.Equal(t, []int{2, 3, 4, 1}, ids(s.Deck))
}

func TestTransferInvalidZone(t *testing.T) {
	s := NewState(makeCards(2), Options{})
	assert.Equal(t, 0, s.Transfer(zone.Zone(42), zone.Deck, []int{0}))
	assert.Equal(t, 0, s.Transfer(zone.Deck, zone.Zone(-1), []int{0}))
	assert.Equal(t, 2, s.Count(zone.Deck))
}

func TestMoveCard(t *testing.T) {
	s := NewState(makeCards(4), Options{})

	card, ok := s.MoveCard(zone.Deck, zone.Score2, 3)
	require.True(t, ok)
	assert.Equal(t, 3, card.ID)
	assert.Equal(t, []int{3}, ids(s.Player2.Score))

	_, ok = s.MoveCard(zone.Deck, zone.Score2, 3)
	assert.False(t, ok)
}

func TestZoneCountsAreFresh(t *testing.T) {
	s := NewState(makeCards(6), Options{})

	first := s.ZoneCounts()
	s.Draw(s.Player1)
	second := s.ZoneCounts()

	assert.Equal(t, 6, first[zone.Deck])
	assert.Equal(t, 5, second[zone.Deck])
	assert.Equal(t, 1, second[zone.Hand1])
	assert.Len(t, second, zone.Count)
}

func TestIsOver(t *testing.T) {
	s := NewState(makeCards(4), Options{})
	assert.False(t, s.IsOver(2))

	s.MoveCard(zone.Deck, zone.Score1, 1)
	s.MoveCard(zone.Deck, zone.Score1, 2)
	assert.True(t, s.IsOver(2))

	empty := NewState(nil, Options{})
	assert.True(t, empty.IsOver(10))
}

func TestWinnerRanking(t *testing.T) {
	t.Run("larger score area", func(t *testing.T) {
		s := NewState(makeCards(6), Options{})
		s.MoveCard(zone.Deck, zone.Score2, 1)
		assert.Equal(t, Player2ID, s.Winner())
	})

	t.Run("score tie falls back to hand", func(t *testing.T) {
		s := NewState(makeCards(6), Options{})
		s.MoveCard(zone.Deck, zone.Score1, 1)
		s.MoveCard(zone.Deck, zone.Score2, 2)
		s.MoveCard(zone.Deck, zone.Hand1, 3)
		assert.Equal(t, Player1ID, s.Winner())
	})

	t.Run("full tie goes to the non-current player", func(t *testing.T) {
		s := NewState(makeCards(6), Options{})
		assert.Equal(t, Player2ID, s.Winner())
		s.SwitchTurn()
		assert.Equal(t, Player1ID, s.Winner())
	})
}

func TestResetGathersCards(t *testing.T) {
	s := NewState(makeCards(8), Options{})
	s.Draw(s.Player1)
	s.MoveCard(zone.Deck, zone.Score2, 5)
	s.MoveCard(zone.Deck, zone.Discard, 6)
	s.SwitchTurn()

	s.Reset(nil, false)

	assert.Equal(t, 8, s.Count(zone.Deck))
	assert.Equal(t, 0, s.Player1.HandCount())
	assert.Equal(t, 0, s.Player2.ScoreCount())
	assert.Equal(t, 0, s.Count(zone.Discard))
	assert.Equal(t, 1, s.Round())
	assert.Equal(t, Player1ID, s.CurrentPlayerID())

	// zone table follows the new players
	s.Draw(s.Player2)
	assert.Equal(t, 1, s.Count(zone.Hand2))
}

func TestViewAndChecksum(t *testing.T) {
	s := NewState(makeCards(5), Options{})
	s.Draw(s.Player1)
	s.MoveCard(zone.Deck, zone.Score2, 4)

	v := s.View(DefaultMaxScore)
	assert.Equal(t, 3, v.DeckCount)
	assert.Equal(t, 1, v.Player1.HandCount)
	assert.Equal(t, 1, v.Player2.ScoreCount)
	assert.Equal(t, 3, v.ZoneCounts["deck"])
	assert.Equal(t, 1, v.ZoneCounts["score2"])
	assert.False(t, v.IsOver)

	p2, ok := v.Player(Player2ID)
	require.True(t, ok)
	assert.Equal(t, 4, p2.ScoreZone[0].ID)
	_, ok = v.Player("nobody")
	assert.False(t, ok)

	assert.Equal(t, v.Checksum(), s.View(DefaultMaxScore).Checksum())

	s.Transfer(zone.Deck, zone.Deck, []int{0})
	assert.NotEqual(t, v.Checksum(), s.View(DefaultMaxScore).Checksum(), "order is part of the digest")
}

func ids(cards []*Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
