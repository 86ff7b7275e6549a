package watchers_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/effects"
	"github.com/summerquest/idiom-duel-go/internal/game/rules"
	"github.com/summerquest/idiom-duel-go/internal/game/watchers"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// rejectOdd fails the meaning of odd card ids and accepts everything else.
type rejectOdd struct{}

func (rejectOdd) JudgeMeaning(_ context.Context, card *game.Card, _ string) (bool, error) {
	return card.ID%2 == 0, nil
}

func (rejectOdd) JudgeStory(context.Context, *game.Card, string) (bool, error) {
	return true, nil
}

func TestPlayStatsWatcherCountsEvents(t *testing.T) {
	w := watchers.NewPlayStatsWatcher()

	resolved := func(player, outcome string) rules.Event {
		e := rules.NewEvent(rules.EventCardResolved, player, 1)
		e.Data = outcome
		return e
	}
	w.Watch(rules.NewEvent(rules.EventCardDrawn, "player1", 5))
	w.Watch(resolved("player1", string(game.OutcomeScoredWithEffect)))
	w.Watch(resolved("player1", string(game.OutcomeDiscarded)))
	w.Watch(resolved("player2", string(game.OutcomeScored)))
	w.Watch(rules.NewEventWithAmount(rules.EventCardsMoved, "player1", 1, 2))
	w.Watch(rules.NewEventWithAmount(rules.EventChainAborted, "player1", 1, 0))
	w.Watch(rules.NewEvent(rules.EventTurnPassed, "player2", 0))

	assert.Equal(t, watchers.Tally{
		Resolved:      2,
		Scored:        1,
		EffectsRun:    1,
		Discarded:     1,
		Drawn:         1,
		CardsMoved:    2,
		ChainsAborted: 1,
	}, w.Tally("player1"))
	assert.Equal(t, watchers.Tally{Resolved: 1, Scored: 1, Passes: 1}, w.Tally("player2"))
	assert.Equal(t, watchers.Tally{}, w.Tally("nobody"))

	w.Reset()
	assert.Equal(t, watchers.Tally{}, w.Tally("player1"))
}

func TestPlayStatsWatcherFollowsEngine(t *testing.T) {
	deck := make([]*game.Card, 10)
	for i := range deck {
		deck[i] = &game.Card{ID: i + 1, Name: fmt.Sprintf("idiom-%d", i+1), Type: game.CardTypeNormal}
	}
	// card 2 gives player1 the top of the deck when played
	deck[1].Effects = []effects.Chain{{effects.Move(zone.Deck, zone.Hand1, 1, effects.ModeOrdered)}}

	bus := rules.NewEventBus()
	registry := rules.NewWatcherRegistry()
	stats := watchers.NewPlayStatsWatcher()
	registry.AddWatcher(stats)
	registry.Attach(bus)

	state := game.NewState(deck, game.Options{})
	engine := game.NewEngine(state, rejectOdd{}, game.EngineOptions{MaxScore: 10, Bus: bus})
	engine.Deal(1) // player1 holds 1, player2 holds 2

	_, err := engine.RunTurn(context.Background(), game.TurnRequest{MainCardID: 1})
	require.NoError(t, err)
	_, err = engine.RunTurn(context.Background(), game.TurnRequest{MainCardID: 2})
	require.NoError(t, err)
	require.NoError(t, engine.Pass())

	assert.Equal(t, watchers.Tally{Resolved: 1, Discarded: 1, Drawn: 1, Passes: 1}, stats.Tally(game.Player1ID))
	assert.Equal(t, watchers.Tally{Resolved: 1, Scored: 1, EffectsRun: 1, Drawn: 1, CardsMoved: 1}, stats.Tally(game.Player2ID))
}
