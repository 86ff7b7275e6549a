package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/summerquest/idiom-duel-go/internal/game/effects"
	"github.com/summerquest/idiom-duel-go/internal/game/rules"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// verdict is the scripted judgment for one card.
type verdict struct {
	meaning bool
	story   bool
}

type judgeCall struct {
	kind     string
	cardID   int
	playerID string
}

// scriptedOracle answers from a per-card table; unknown cards pass both checks.
type scriptedOracle struct {
	verdicts map[int]verdict
	calls    []judgeCall
	failOn   map[int]error
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{verdicts: make(map[int]verdict), failOn: make(map[int]error)}
}

func (o *scriptedOracle) set(cardID int, meaning, story bool) {
	o.verdicts[cardID] = verdict{meaning: meaning, story: story}
}

func (o *scriptedOracle) JudgeMeaning(ctx context.Context, card *Card, playerID string) (bool, error) {
	o.calls = append(o.calls, judgeCall{"meaning", card.ID, playerID})
	if err := o.failOn[card.ID]; err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v, ok := o.verdicts[card.ID]
	return !ok || v.meaning, nil
}

func (o *scriptedOracle) JudgeStory(ctx context.Context, card *Card, playerID string) (bool, error) {
	o.calls = append(o.calls, judgeCall{"story", card.ID, playerID})
	v, ok := o.verdicts[card.ID]
	return !ok || v.story, nil
}

// MatchHarness wires a state, a scripted oracle and an engine for tests.
type MatchHarness struct {
	t      *testing.T
	state  *State
	oracle *scriptedOracle
	engine *Engine
	events []rules.Event
	cards  map[int]*Card
}

// newMatchHarness builds an unshuffled match over cards.
func newMatchHarness(t *testing.T, cards []*Card, maxScore int) *MatchHarness {
	h := &MatchHarness{
		t:      t,
		oracle: newScriptedOracle(),
		cards:  make(map[int]*Card, len(cards)),
	}
	for _, c := range cards {
		h.cards[c.ID] = c
	}
	h.state = NewState(append([]*Card(nil), cards...), Options{Rand: rand.New(rand.NewPCG(3, 5))})
	bus := rules.NewEventBus()
	bus.Subscribe(func(e rules.Event) { h.events = append(h.events, e) })
	h.engine = NewEngine(h.state, h.oracle, EngineOptions{
		MaxScore: maxScore,
		Bus:      bus,
		Logger:   zaptest.NewLogger(t),
	})
	return h
}

// give moves specific cards from the deck into a player's hand.
func (h *MatchHarness) give(p *Player, ids ...int) {
	h.t.Helper()
	for _, id := range ids {
		if _, ok := h.state.MoveCard(zone.Deck, h.state.HandZone(p), id); !ok {
			h.t.Fatalf("card %d not in deck", id)
		}
	}
}

func (h *MatchHarness) eventsOf(kind rules.EventType) []rules.Event {
	var out []rules.Event
	for _, e := range h.events {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// assertConservation checks every original card sits in exactly one zone.
func (h *MatchHarness) assertConservation() {
	h.t.Helper()
	ids := make([]int, 0, len(h.cards))
	for _, c := range h.state.Cards() {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	want := make([]int, 0, len(h.cards))
	for id := range h.cards {
		want = append(want, id)
	}
	sort.Ints(want)
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		h.t.Fatalf("card conservation broken: have %v want %v", ids, want)
	}
}

func makeCards(n int) []*Card {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = &Card{
			ID:      i + 1,
			Name:    fmt.Sprintf("idiom-%d", i+1),
			Meaning: fmt.Sprintf("meaning %d", i+1),
			Story:   fmt.Sprintf("story %d", i+1),
			Type:    CardTypeNormal,
		}
	}
	return cards
}

func intPtr(v int) *int { return &v }

var _ effects.Zones = (*State)(nil)
