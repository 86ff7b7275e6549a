package cards

import (
	"github.com/summerquest/idiom-duel-go/internal/game"
)

// Library is an immutable set of loaded cards. Cards are shared between
// matches; only the slices holding them are per match.
type Library struct {
	cards []*game.Card
	byID  map[int]*game.Card
}

// NewLibrary wraps cards built in code. Later duplicates of an id are dropped.
func NewLibrary(cards []*game.Card) *Library {
	lib := &Library{byID: make(map[int]*game.Card, len(cards))}
	for _, c := range cards {
		if _, dup := lib.byID[c.ID]; dup {
			continue
		}
		lib.byID[c.ID] = c
		lib.cards = append(lib.cards, c)
	}
	return lib
}

// Deck returns a fresh slice of every card in file order, ready for game.NewState.
func (l *Library) Deck() []*game.Card {
	return append([]*game.Card(nil), l.cards...)
}

// Get looks a card up by id.
func (l *Library) Get(id int) (*game.Card, bool) {
	c, ok := l.byID[id]
	return c, ok
}

func (l *Library) Len() int { return len(l.cards) }
