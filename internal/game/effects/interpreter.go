package effects

import (
	"math/rand/v2"

	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

// Counter reports the current number of cards in a zone.
type Counter interface {
	Count(z zone.Zone) int
}

// Zones is the mutable zone model an effect chain runs against.
//
// Transfer removes the cards at the given positions of from and appends them
// to to, in the order given, as one step. It returns the number of cards moved.
type Zones interface {
	Counter
	Transfer(from, to zone.Zone, positions []int) int
}

// Sampler provides uniform random permutations. *rand.Rand satisfies it.
type Sampler interface {
	Perm(n int) []int
}

type globalSampler struct{}

func (globalSampler) Perm(n int) []int { return rand.Perm(n) }

// StepTrace records what a single step did during Run.
type StepTrace struct {
	Index  int
	Step   Step
	Passed bool // conditions only
	Moved  int  // actions only
}

// ChainResult summarises one chain execution.
type ChainResult struct {
	Trace     []StepTrace
	Aborted   bool
	AbortedAt int // index of the failing condition, -1 when not aborted
	Moved     int
}

// Interpreter evaluates conditions and applies actions against a Zones model.
type Interpreter struct {
	rng Sampler
}

// NewInterpreter returns an interpreter drawing random samples from rng.
// A nil rng uses the process-wide source.
func NewInterpreter(rng Sampler) *Interpreter {
	if rng == nil {
		rng = globalSampler{}
	}
	return &Interpreter{rng: rng}
}

// Evaluate resolves both operands against the live counts and compares them.
func (in *Interpreter) Evaluate(c Condition, counts Counter) bool {
	return c.Op.Compare(c.Left.Resolve(counts), c.Right.Resolve(counts))
}

// Apply performs the action in place and returns how many cards moved.
// A short source moves everything it has; ModeSelect moves nothing.
func (in *Interpreter) Apply(a Action, zs Zones) int {
	available := zs.Count(a.From)
	n := a.Count
	if n > available {
		n = available
	}
	if n <= 0 {
		return 0
	}

	var positions []int
	switch a.Mode {
	case ModeOrdered:
		positions = make([]int, n)
		for i := range positions {
			positions[i] = i
		}
	case ModeRandom:
		positions = in.rng.Perm(available)[:n]
	default:
		// ModeSelect needs a player decision the core cannot make.
		return 0
	}
	return zs.Transfer(a.From, a.To, positions)
}

// Run executes the chain in order. A false condition stops the whole chain.
func (in *Interpreter) Run(chain Chain, zs Zones) ChainResult {
	result := ChainResult{AbortedAt: -1}
	for i, step := range chain {
		switch s := step.(type) {
		case Condition:
			ok := in.Evaluate(s, zs)
			result.Trace = append(result.Trace, StepTrace{Index: i, Step: s, Passed: ok})
			if !ok {
				result.Aborted = true
				result.AbortedAt = i
				return result
			}
		case Action:
			moved := in.Apply(s, zs)
			result.Moved += moved
			result.Trace = append(result.Trace, StepTrace{Index: i, Step: s, Moved: moved})
		}
	}
	return result
}
