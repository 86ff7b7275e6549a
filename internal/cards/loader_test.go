package cards

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/effects"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

const sample = `
cards:
  - id: 1
    name: 画蛇添足
    meaning: 比喻做了多余的事
    story: 楚人画蛇
    effects:
      - - if: {left: deck, op: ">=", right: 1}
        - move: {from: H, to: p1, count: 1}
      - - move: {from: discard, to: score2, count: 2, mode: random}
  - id: 2
    name: 亡羊补牢
    type: counter
`

func TestParseSample(t *testing.T) {
	lib, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 2, lib.Len())

	card, ok := lib.Get(1)
	require.True(t, ok)
	assert.Equal(t, game.CardTypeNormal, card.Type)
	require.Len(t, card.Effects, 2)

	first := card.Effects[0]
	require.Len(t, first, 2)
	cond, ok := first[0].(effects.Condition)
	require.True(t, ok)
	assert.Equal(t, effects.If(effects.CountOf(zone.Deck), effects.OpGreaterEqual, effects.Literal(1)), cond)
	assert.Equal(t, effects.Move(zone.Deck, zone.Hand1, 1, effects.ModeOrdered), first[1])
	assert.Equal(t, effects.Move(zone.Discard, zone.Score2, 2, effects.ModeRandom), card.Effects[1][0])

	counter, ok := lib.Get(2)
	require.True(t, ok)
	assert.True(t, counter.IsCounter())
	assert.Empty(t, counter.Effects)
}

func TestParseRejectsBadContent(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown zone", `cards: [{id: 1, name: a, effects: [[{move: {from: hand, to: deck, count: 1}}]]}]`},
		{"unknown operator", `cards: [{id: 1, name: a, effects: [[{if: {left: deck, op: "~", right: 1}}]]}]`},
		{"unknown mode", `cards: [{id: 1, name: a, effects: [[{move: {from: deck, to: p1, count: 1, mode: best}}]]}]`},
		{"negative count", `cards: [{id: 1, name: a, effects: [[{move: {from: deck, to: p1, count: -1}}]]}]`},
		{"unknown type", `cards: [{id: 1, name: a, type: trap}]`},
		{"missing name", `cards: [{id: 1}]`},
		{"empty step", `cards: [{id: 1, name: a, effects: [[{}]]}]`},
		{"both step kinds", `cards: [{id: 1, name: a, effects: [[{if: {left: 1, op: "=", right: 1}, move: {from: deck, to: p1, count: 1}}]]}]`},
		{"half condition", `cards: [{id: 1, name: a, effects: [[{if: {left: 1, op: "="}}]]}]`},
		{"unknown key", `cards: [{id: 1, name: a, colour: red}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseDuplicateID(t *testing.T) {
	_, err := Parse(strings.NewReader(`cards: [{id: 1, name: a}, {id: 1, name: b}]`))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestParseEmptyDocument(t *testing.T) {
	lib, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, lib.Len())
}

func TestDeckIsFreshSlice(t *testing.T) {
	lib, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	a := lib.Deck()
	a[0] = nil
	b := lib.Deck()
	assert.NotNil(t, b[0])
	assert.Equal(t, 1, b[0].ID)
}

func TestNewLibraryDropsDuplicates(t *testing.T) {
	lib := NewLibrary([]*game.Card{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}, {ID: 2, Name: "c"}})
	assert.Equal(t, 2, lib.Len())
	c, _ := lib.Get(1)
	assert.Equal(t, "a", c.Name)
}

func TestLoadBundledDeck(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "data", "cards.yaml")

	lib, err := Load(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, lib.Len(), 12)

	var counters, combos int
	for _, c := range lib.Deck() {
		switch {
		case c.IsCounter():
			counters++
		case c.IsCombo():
			combos++
		}
	}
	assert.Positive(t, counters)
	assert.Positive(t, combos)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
