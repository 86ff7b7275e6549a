package zone

import (
	"fmt"
	"strings"
)

// Zone identifies one of the six card containers of a match.
// It carries no state; the game state resolves it to a concrete pile.
type Zone int

const (
	Deck Zone = iota
	Hand1
	Hand2
	Score1
	Score2
	Discard

	// Count is the number of zones; usable as an array length.
	Count = int(Discard) + 1
)

var zoneNames = [Count]string{
	Deck:    "deck",
	Hand1:   "player1",
	Hand2:   "player2",
	Score1:  "score1",
	Score2:  "score2",
	Discard: "discard",
}

// short aliases used by hand-written card data
var zoneAliases = map[string]Zone{
	"h":  Deck,
	"p1": Hand1,
	"p2": Hand2,
	"s1": Score1,
	"s2": Score2,
	"a":  Discard,
}

func (z Zone) String() string {
	if z.Valid() {
		return zoneNames[z]
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// Valid reports whether z is one of the six known zones.
func (z Zone) Valid() bool {
	return z >= Deck && z <= Discard
}

// All returns every zone in table order.
func All() []Zone {
	return []Zone{Deck, Hand1, Hand2, Score1, Score2, Discard}
}

// Parse resolves a canonical zone name or short alias, case-insensitively.
func Parse(name string) (Zone, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range zoneNames {
		if n == key {
			return Zone(i), nil
		}
	}
	if z, ok := zoneAliases[key]; ok {
		return z, nil
	}
	return 0, fmt.Errorf("unknown zone %q", name)
}

// HandOf returns the hand zone of the given seat (0 or 1).
func HandOf(seat int) Zone {
	if seat == 1 {
		return Hand2
	}
	return Hand1
}

// ScoreOf returns the score zone of the given seat (0 or 1).
func ScoreOf(seat int) Zone {
	if seat == 1 {
		return Score2
	}
	return Score1
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	if !z.Valid() {
		return nil, fmt.Errorf("invalid zone %d", int(z))
	}
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}
