package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/summerquest/idiom-duel-go/internal/game/rules"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

const (
	Player1ID = "player1"
	Player2ID = "player2"

	// DefaultMaxScore is the score-area size that ends a match.
	DefaultMaxScore = 10
)

// RandomSource shuffles the deck and samples random effect moves.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
	Perm(n int) []int
}

type globalRandom struct{}

func (globalRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
func (globalRandom) Perm(n int) []int                   { return rand.Perm(n) }

// Options configures a new State.
type Options struct {
	Shuffle bool
	Rand    RandomSource // nil uses the process-wide source
}

// State is the full mutable state of one match. It is owned by a single
// goroutine for its whole life and is not safe for concurrent use.
//
// Every card is in exactly one of Deck, DiscardPile, the two hands or the
// two score areas.
type State struct {
	Deck        []*Card // top is index 0
	DiscardPile []*Card
	Player1     *Player
	Player2     *Player

	turn  *rules.TurnManager
	rng   RandomSource
	piles [zone.Count]*[]*Card
}

// NewState builds a match around deck. The slice is taken over by the state.
func NewState(deck []*Card, opts Options) *State {
	s := &State{rng: opts.Rand}
	if s.rng == nil {
		s.rng = globalRandom{}
	}
	s.reset(deck, opts.Shuffle)
	return s
}

// Reset starts a new match in place. A nil deck gathers every card of the
// current match back into the deck.
func (s *State) Reset(deck []*Card, shuffle bool) {
	if deck == nil {
		deck = s.Cards()
	}
	s.reset(deck, shuffle)
}

func (s *State) reset(deck []*Card, shuffle bool) {
	if deck == nil {
		deck = make([]*Card, 0)
	}
	s.Deck = deck
	s.DiscardPile = make([]*Card, 0)
	s.Player1 = NewPlayer(Player1ID)
	s.Player2 = NewPlayer(Player2ID)
	s.turn = rules.NewTurnManager(Player1ID)
	s.bindZones()
	if shuffle {
		s.ShuffleDeck()
	}
}

// bindZones fills the zone table used by both the read and write paths.
func (s *State) bindZones() {
	s.piles = [zone.Count]*[]*Card{
		zone.Deck:    &s.Deck,
		zone.Hand1:   &s.Player1.Hand,
		zone.Hand2:   &s.Player2.Hand,
		zone.Score1:  &s.Player1.Score,
		zone.Score2:  &s.Player2.Score,
		zone.Discard: &s.DiscardPile,
	}
}

// ShuffleDeck shuffles the deck in place.
func (s *State) ShuffleDeck() {
	s.rng.Shuffle(len(s.Deck), func(i, j int) {
		s.Deck[i], s.Deck[j] = s.Deck[j], s.Deck[i]
	})
}

// Rand returns the random source of the match.
func (s *State) Rand() RandomSource {
	return s.rng
}

// Turn exposes the turn owner, round counter and phase tracker.
func (s *State) Turn() *rules.TurnManager {
	return s.turn
}

func (s *State) CurrentPlayerID() string { return s.turn.ActivePlayer() }
func (s *State) Round() int              { return s.turn.RoundNumber() }

// CurrentPlayer returns the player who owns the turn.
func (s *State) CurrentPlayer() *Player {
	if s.turn.ActivePlayer() == Player2ID {
		return s.Player2
	}
	return s.Player1
}

// Opponent returns the player who does not own the turn.
func (s *State) Opponent() *Player {
	if s.turn.ActivePlayer() == Player2ID {
		return s.Player1
	}
	return s.Player2
}

// PlayerByID looks a player up by identity.
func (s *State) PlayerByID(id string) (*Player, bool) {
	switch id {
	case Player1ID:
		return s.Player1, true
	case Player2ID:
		return s.Player2, true
	}
	return nil, false
}

// HandZone returns the zone holding p's hand.
func (s *State) HandZone(p *Player) zone.Zone {
	return zone.HandOf(s.seatOf(p))
}

// ScoreZone returns the zone holding p's score area.
func (s *State) ScoreZone(p *Player) zone.Zone {
	return zone.ScoreOf(s.seatOf(p))
}

func (s *State) seatOf(p *Player) int {
	if p == s.Player2 {
		return 1
	}
	return 0
}

// SwitchTurn flips the turn owner and increments the round counter.
func (s *State) SwitchTurn() {
	next := Player2ID
	if s.turn.ActivePlayer() == Player2ID {
		next = Player1ID
	}
	s.turn.EndTurn(next)
}

// Draw moves the top of the deck into p's hand. It reports false on an empty deck.
func (s *State) Draw(p *Player) (*Card, bool) {
	if len(s.Deck) == 0 {
		return nil, false
	}
	card := s.Deck[0]
	s.Deck = s.Deck[1:]
	p.Draw(card)
	return card, true
}

// MoveToDiscard appends a card the caller already removed from its zone.
func (s *State) MoveToDiscard(card *Card) {
	s.DiscardPile = append(s.DiscardPile, card)
}

// MoveCard moves the first card with cardID from one zone to the end of another.
func (s *State) MoveCard(from, to zone.Zone, cardID int) (*Card, bool) {
	if !from.Valid() || !to.Valid() {
		return nil, false
	}
	src := *s.piles[from]
	for i, card := range src {
		if card.ID == cardID {
			s.Transfer(from, to, []int{i})
			return card, true
		}
	}
	return nil, false
}

// Count returns the current number of cards in z.
func (s *State) Count(z zone.Zone) int {
	if !z.Valid() {
		return 0
	}
	return len(*s.piles[z])
}

// Transfer removes the cards at positions from one zone and appends them, in
// that order, to another. Invalid or repeated positions are ignored. Source and
// destination are rewritten together so no card is ever outside a zone.
func (s *State) Transfer(from, to zone.Zone, positions []int) int {
	if !from.Valid() || !to.Valid() {
		return 0
	}
	src := *s.piles[from]
	picked := make(map[int]bool, len(positions))
	taken := make([]*Card, 0, len(positions))
	for _, pos := range positions {
		if pos < 0 || pos >= len(src) || picked[pos] {
			continue
		}
		picked[pos] = true
		taken = append(taken, src[pos])
	}
	if len(taken) == 0 {
		return 0
	}
	kept := make([]*Card, 0, len(src)-len(taken))
	for i, card := range src {
		if !picked[i] {
			kept = append(kept, card)
		}
	}

	*s.piles[from] = kept
	*s.piles[to] = append(*s.piles[to], taken...)
	return len(taken)
}

// ZoneCounts snapshots all six cardinalities. It is computed on every call.
func (s *State) ZoneCounts() map[zone.Zone]int {
	counts := make(map[zone.Zone]int, zone.Count)
	for _, z := range zone.All() {
		counts[z] = s.Count(z)
	}
	return counts
}

// IsOver reports whether either score area reached maxScore or the deck is empty.
func (s *State) IsOver(maxScore int) bool {
	return s.Player1.ScoreCount() >= maxScore ||
		s.Player2.ScoreCount() >= maxScore ||
		len(s.Deck) == 0
}

// Winner applies the end-of-game ranking: larger score area, then larger
// hand, then the player who does not own the current turn.
func (s *State) Winner() string {
	p1, p2 := s.Player1, s.Player2
	switch {
	case p1.ScoreCount() > p2.ScoreCount():
		return p1.ID
	case p2.ScoreCount() > p1.ScoreCount():
		return p2.ID
	case p1.HandCount() > p2.HandCount():
		return p1.ID
	case p2.HandCount() > p1.HandCount():
		return p2.ID
	default:
		return s.Opponent().ID
	}
}

// Cards returns every card of the match across all zones, in zone order.
func (s *State) Cards() []*Card {
	all := make([]*Card, 0, len(s.Deck))
	for _, z := range zone.All() {
		all = append(all, *s.piles[z]...)
	}
	return all
}

// Summary renders a short multi-line status report.
func (s *State) Summary() string {
	return fmt.Sprintf("round %d - turn: %s\ndeck: %d, discard: %d\n%s\n%s",
		s.Round(), s.CurrentPlayerID(),
		len(s.Deck), len(s.DiscardPile),
		s.Player1.Summary(),
		s.Player2.Summary(),
	)
}
