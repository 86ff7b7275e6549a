// Package cards loads the idiom deck from YAML.
package cards

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/game/effects"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

var (
	// ErrInvalidCard wraps every content error found while loading.
	ErrInvalidCard = errors.New("invalid card")
	// ErrDuplicateID is returned when two cards share an id.
	ErrDuplicateID = errors.New("duplicate card id")
)

type document struct {
	Cards []cardDoc `yaml:"cards"`
}

type cardDoc struct {
	ID                int         `yaml:"id"`
	Name              string      `yaml:"name"`
	Meaning           string      `yaml:"meaning"`
	Story             string      `yaml:"story"`
	Type              string      `yaml:"type"`
	EffectDescription string      `yaml:"effect_description"`
	Effects           [][]stepDoc `yaml:"effects"`
}

// stepDoc holds exactly one of If or Move.
type stepDoc struct {
	If   *conditionDoc `yaml:"if"`
	Move *moveDoc      `yaml:"move"`
}

type conditionDoc struct {
	Left  operandDoc `yaml:"left"`
	Op    string     `yaml:"op"`
	Right operandDoc `yaml:"right"`
}

type moveDoc struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Count int    `yaml:"count"`
	Mode  string `yaml:"mode"`
}

// operandDoc accepts an integer literal or a zone name.
type operandDoc struct {
	operand effects.Operand
	set     bool
}

func (o *operandDoc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: operand must be a number or a zone name", value.Line)
	}
	if value.Tag == "!!int" {
		var n int
		if err := value.Decode(&n); err != nil {
			return err
		}
		o.operand, o.set = effects.Literal(n), true
		return nil
	}
	z, err := zone.Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	o.operand, o.set = effects.CountOf(z), true
	return nil
}

// Load reads a card file from disk.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open card file: %w", err)
	}
	defer f.Close()

	lib, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Parse decodes and validates a card document. Unknown keys are rejected.
func Parse(r io.Reader) (*Library, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode cards: %w", err)
	}

	lib := &Library{byID: make(map[int]*game.Card, len(doc.Cards))}
	for i, cd := range doc.Cards {
		card, err := cd.build()
		if err != nil {
			return nil, fmt.Errorf("card #%d (id %d): %w", i+1, cd.ID, err)
		}
		if _, dup := lib.byID[card.ID]; dup {
			return nil, fmt.Errorf("card #%d: %w: %d", i+1, ErrDuplicateID, card.ID)
		}
		lib.byID[card.ID] = card
		lib.cards = append(lib.cards, card)
	}
	return lib, nil
}

func (cd cardDoc) build() (*game.Card, error) {
	if strings.TrimSpace(cd.Name) == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidCard)
	}
	typ, err := game.ParseCardType(cd.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}

	chains := make([]effects.Chain, 0, len(cd.Effects))
	for ci, steps := range cd.Effects {
		chain := make(effects.Chain, 0, len(steps))
		for si, sd := range steps {
			step, err := sd.build()
			if err != nil {
				return nil, fmt.Errorf("%w: chain %d step %d: %v", ErrInvalidCard, ci+1, si+1, err)
			}
			chain = append(chain, step)
		}
		chains = append(chains, chain)
	}

	return &game.Card{
		ID:                cd.ID,
		Name:              cd.Name,
		Meaning:           cd.Meaning,
		Story:             cd.Story,
		Type:              typ,
		EffectDescription: cd.EffectDescription,
		Effects:           chains,
	}, nil
}

func (sd stepDoc) build() (effects.Step, error) {
	switch {
	case sd.If != nil && sd.Move != nil:
		return nil, errors.New("step has both if and move")
	case sd.If != nil:
		if !sd.If.Left.set || !sd.If.Right.set {
			return nil, errors.New("condition needs left and right")
		}
		op, err := effects.ParseOperator(sd.If.Op)
		if err != nil {
			return nil, err
		}
		return effects.If(sd.If.Left.operand, op, sd.If.Right.operand), nil
	case sd.Move != nil:
		from, err := zone.Parse(sd.Move.From)
		if err != nil {
			return nil, err
		}
		to, err := zone.Parse(sd.Move.To)
		if err != nil {
			return nil, err
		}
		if sd.Move.Count < 0 {
			return nil, fmt.Errorf("negative count %d", sd.Move.Count)
		}
		mode, err := effects.ParseMode(sd.Move.Mode)
		if err != nil {
			return nil, err
		}
		return effects.Move(from, to, sd.Move.Count, mode), nil
	default:
		return nil, errors.New("empty step")
	}
}
