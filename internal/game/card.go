package game

import (
	"fmt"

	"github.com/summerquest/idiom-duel-go/internal/game/effects"
)

// CardType is the category tag of a card.
type CardType string

const (
	CardTypeNormal  CardType = "normal"
	CardTypeCounter CardType = "counter"
	CardTypeCombo   CardType = "combo"
)

var cardTypeSymbols = map[CardType]string{
	CardTypeNormal:  "📄",
	CardTypeCounter: "🛡️",
	CardTypeCombo:   "⚡",
}

// ParseCardType resolves a category name. Empty means normal.
func ParseCardType(s string) (CardType, error) {
	switch CardType(s) {
	case "", CardTypeNormal:
		return CardTypeNormal, nil
	case CardTypeCounter:
		return CardTypeCounter, nil
	case CardTypeCombo:
		return CardTypeCombo, nil
	}
	return "", fmt.Errorf("unknown card type %q", s)
}

// Card is an idiom card. Cards are created at load time and never mutated;
// zones hold pointers, so a card moves without being copied.
type Card struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Meaning           string          `json:"meaning"`
	Story             string          `json:"story"`
	Type              CardType        `json:"card_type"`
	EffectDescription string          `json:"effect_description"`
	Effects           []effects.Chain `json:"-"`
}

func (c *Card) IsNormal() bool  { return c.Type == CardTypeNormal }
func (c *Card) IsCounter() bool { return c.Type == CardTypeCounter }
func (c *Card) IsCombo() bool   { return c.Type == CardTypeCombo }

// PlayFullEffects runs every effect chain in declaration order. A chain that
// aborts on a false condition does not stop the chains after it.
func (c *Card) PlayFullEffects(in *effects.Interpreter, zs effects.Zones) []effects.ChainResult {
	results := make([]effects.ChainResult, 0, len(c.Effects))
	for _, chain := range c.Effects {
		results = append(results, in.Run(chain, zs))
	}
	return results
}

func (c *Card) String() string {
	return fmt.Sprintf("%s %s", cardTypeSymbols[c.Type], c.Name)
}
