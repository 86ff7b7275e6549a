package effects

import (
	"fmt"
	"strings"

	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// Operator is the relational operator of a Condition.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
)

// ParseOperator accepts the six operator symbols plus "==" and "<>".
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case ">":
		return OpGreater, nil
	case ">=":
		return OpGreaterEqual, nil
	case "<":
		return OpLess, nil
	case "<=":
		return OpLessEqual, nil
	case "=", "==":
		return OpEqual, nil
	case "!=", "<>":
		return OpNotEqual, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Compare applies the operator. An unknown operator compares false.
func (op Operator) Compare(a, b int) bool {
	switch op {
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	default:
		return false
	}
}

// Operand is either a literal integer or a zone whose current card count is used.
type Operand struct {
	zone   zone.Zone
	value  int
	isZone bool
}

// Literal returns an operand that always resolves to n.
func Literal(n int) Operand {
	return Operand{value: n}
}

// CountOf returns an operand that resolves to the card count of z at evaluation time.
func CountOf(z zone.Zone) Operand {
	return Operand{zone: z, isZone: true}
}

// Zone returns the referenced zone and true, or false for a literal.
func (o Operand) Zone() (zone.Zone, bool) {
	return o.zone, o.isZone
}

// Resolve returns the operand value against the live zone counts.
func (o Operand) Resolve(c Counter) int {
	if !o.isZone {
		return o.value
	}
	return c.Count(o.zone)
}

func (o Operand) String() string {
	if o.isZone {
		return o.zone.String()
	}
	return fmt.Sprintf("%d", o.value)
}

// Mode selects which cards an Action takes from its source zone.
type Mode int

const (
	// ModeOrdered takes the first N cards in positional order.
	ModeOrdered Mode = iota
	// ModeRandom takes a uniform sample of N cards without replacement.
	ModeRandom
	// ModeSelect is an explicit player choice. Not supported yet: a no-op.
	ModeSelect
)

func (m Mode) String() string {
	switch m {
	case ModeOrdered:
		return "order"
	case ModeRandom:
		return "random"
	case ModeSelect:
		return "select"
	default:
		return fmt.Sprintf("MODE_%d", int(m))
	}
}

// ParseMode resolves "order", "random" or "select". Empty means ordered.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "order", "ordered":
		return ModeOrdered, nil
	case "random":
		return ModeRandom, nil
	case "select":
		return ModeSelect, nil
	}
	return 0, fmt.Errorf("unknown action mode %q", s)
}

// Step is one element of an effect chain: a Condition or an Action.
// The set of variants is closed to this package.
type Step interface {
	isStep()
	String() string
}

// Condition compares two operands. Evaluating it never touches the zones.
type Condition struct {
	Left  Operand
	Op    Operator
	Right Operand
}

// If builds a Condition step.
func If(left Operand, op Operator, right Operand) Condition {
	return Condition{Left: left, Op: op, Right: right}
}

func (Condition) isStep() {}

func (c Condition) String() string {
	return fmt.Sprintf("IF %s %s %s", c.Left, c.Op, c.Right)
}

// Action moves up to Count cards from From to To.
type Action struct {
	From  zone.Zone
	To    zone.Zone
	Count int
	Mode  Mode
}

// Move builds an Action step.
func Move(from, to zone.Zone, count int, mode Mode) Action {
	return Action{From: from, To: to, Count: count, Mode: mode}
}

func (Action) isStep() {}

func (a Action) String() string {
	return fmt.Sprintf("MOVE %d %s -> %s (%s)", a.Count, a.From, a.To, a.Mode)
}

// Chain is an ordered sequence of steps. The first false Condition ends it.
type Chain []Step
