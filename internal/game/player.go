package game

import (
	"fmt"
	"strings"
)

// Player owns a hand (acquisition order) and a score area (insertion order).
type Player struct {
	ID    string
	Hand  []*Card
	Score []*Card
}

// NewPlayer creates a player with an empty hand and score area.
func NewPlayer(id string) *Player {
	return &Player{
		ID:    id,
		Hand:  make([]*Card, 0),
		Score: make([]*Card, 0),
	}
}

// Draw appends card to the hand. Duplicate ids are not checked.
func (p *Player) Draw(card *Card) {
	p.Hand = append(p.Hand, card)
}

// Play removes and returns the first hand card with the given id.
func (p *Player) Play(cardID int) (*Card, bool) {
	return p.take(cardID)
}

// Discard removes a card from the hand by id; the caller decides where it goes.
func (p *Player) Discard(cardID int) (*Card, bool) {
	return p.take(cardID)
}

func (p *Player) take(cardID int) (*Card, bool) {
	i := p.indexOf(cardID)
	if i < 0 {
		return nil, false
	}
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return card, true
}

func (p *Player) indexOf(cardID int) int {
	for i, card := range p.Hand {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

// Find returns the first hand card with the given id without removing it.
func (p *Player) Find(cardID int) (*Card, bool) {
	if i := p.indexOf(cardID); i >= 0 {
		return p.Hand[i], true
	}
	return nil, false
}

// Has reports whether a card with the given id is in hand.
func (p *Player) Has(cardID int) bool {
	return p.indexOf(cardID) >= 0
}

// AddToScore appends card to the score area.
func (p *Player) AddToScore(card *Card) {
	p.Score = append(p.Score, card)
}

// HandIDs returns the ids of the hand in order.
func (p *Player) HandIDs() []int {
	ids := make([]int, len(p.Hand))
	for i, card := range p.Hand {
		ids[i] = card.ID
	}
	return ids
}

func (p *Player) filter(keep func(*Card) bool) []*Card {
	out := make([]*Card, 0)
	for _, card := range p.Hand {
		if keep(card) {
			out = append(out, card)
		}
	}
	return out
}

func (p *Player) CounterCards() []*Card { return p.filter((*Card).IsCounter) }
func (p *Player) ComboCards() []*Card   { return p.filter((*Card).IsCombo) }
func (p *Player) NormalCards() []*Card  { return p.filter((*Card).IsNormal) }

func (p *Player) HasCounter() bool { return len(p.CounterCards()) > 0 }
func (p *Player) HasCombo() bool   { return len(p.ComboCards()) > 0 }

func (p *Player) HandCount() int  { return len(p.Hand) }
func (p *Player) ScoreCount() int { return len(p.Score) }

func (p *Player) String() string {
	return fmt.Sprintf("%s: hand(%d) score(%d)", p.ID, len(p.Hand), len(p.Score))
}

// Summary renders the hand contents and score count on one line.
func (p *Player) Summary() string {
	names := make([]string, len(p.Hand))
	for i, card := range p.Hand {
		names[i] = card.String()
	}
	return fmt.Sprintf("[%s] hand: %s | score: %d", p.ID, strings.Join(names, ", "), len(p.Score))
}
