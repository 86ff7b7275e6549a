package rules

import (
	"fmt"
	"strings"
)

// Phase is a state of the turn resolution state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePrepare
	PhaseAttack
	PhaseCounter
	PhaseCombo
	PhaseResolve
	PhaseEndCheck
	PhaseTurnSwitch
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "IDLE",
	PhasePrepare:    "PREPARE",
	PhaseAttack:     "ATTACK",
	PhaseCounter:    "COUNTER",
	PhaseCombo:      "COMBO",
	PhaseResolve:    "RESOLVE",
	PhaseEndCheck:   "END_CHECK",
	PhaseTurnSwitch: "TURN_SWITCH",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// transitions lists the phases reachable from each phase.
var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhasePrepare},
	PhasePrepare:    {PhaseAttack},
	PhaseAttack:     {PhaseResolve},
	PhaseResolve:    {PhaseCounter, PhaseCombo, PhaseEndCheck},
	PhaseCounter:    {PhaseResolve},
	PhaseCombo:      {PhaseResolve},
	PhaseEndCheck:   {PhaseTurnSwitch},
	PhaseTurnSwitch: {PhaseIdle},
}

// CanTransition reports whether next may follow from.
func CanTransition(from, next Phase) bool {
	for _, p := range transitions[from] {
		if p == next {
			return true
		}
	}
	return false
}

// TurnManager tracks the turn owner, the round counter and the current phase.
type TurnManager struct {
	roundNumber  int
	activePlayer string
	phase        Phase
}

// NewTurnManager creates a turn manager at round 1, idle, owned by activePlayer.
func NewTurnManager(activePlayer string) *TurnManager {
	return &TurnManager{
		roundNumber:  1,
		activePlayer: strings.TrimSpace(activePlayer),
		phase:        PhaseIdle,
	}
}

// Phase returns the phase currently in progress.
func (tm *TurnManager) Phase() Phase {
	return tm.phase
}

// RoundNumber returns the current round (1-based).
func (tm *TurnManager) RoundNumber() int {
	return tm.roundNumber
}

// ActivePlayer returns the player who currently owns the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// Enter moves the state machine to next. It fails on a transition the
// turn structure does not allow and leaves the phase unchanged.
func (tm *TurnManager) Enter(next Phase) error {
	if !CanTransition(tm.phase, next) {
		return fmt.Errorf("illegal phase transition %s -> %s", tm.phase, next)
	}
	tm.phase = next
	return nil
}

// Abort returns the machine to idle without switching the turn owner.
func (tm *TurnManager) Abort() {
	tm.phase = PhaseIdle
}

// EndTurn hands the turn to nextActivePlayer and increments the round.
// It is the only place the round counter changes.
func (tm *TurnManager) EndTurn(nextActivePlayer string) {
	tm.roundNumber++
	if next := strings.TrimSpace(nextActivePlayer); next != "" {
		tm.activePlayer = next
	}
	tm.phase = PhaseIdle
}
