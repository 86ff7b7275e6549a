package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/game/effects"
	"github.com/summerquest/idiom-duel-go/internal/game/rules"
	"github.com/summerquest/idiom-duel-go/internal/game/zone"
)

var (
	// ErrCardNotInHand is returned when a declared card is not in its owner's hand.
	ErrCardNotInHand = errors.New("card not in hand")
	// ErrWrongCardType is returned for a counter that is not a counter card
	// or a combo that is not a combo card.
	ErrWrongCardType = errors.New("wrong card type")
	// ErrDuplicateCard is returned when the combo repeats the main card.
	ErrDuplicateCard = errors.New("card declared twice")
	// ErrGameOver is returned when a turn is requested after the match ended.
	ErrGameOver = errors.New("game is over")
	// ErrTurnInProgress is returned when a stopped turn is retried with a
	// different request, or passed, before it completes.
	ErrTurnInProgress = errors.New("turn in progress")
)

// Oracle judges a player's explanation of a card. Implementations may block
// on human input; they must honour ctx.
type Oracle interface {
	JudgeMeaning(ctx context.Context, card *Card, playerID string) (bool, error)
	JudgeStory(ctx context.Context, card *Card, playerID string) (bool, error)
}

// Role is the part a card plays within a turn.
type Role string

const (
	RoleAttack Role = "attack"
	// RoleCounter cards belong to the defender, but the attacker is the one
	// judged on them, as in the rules the game ships with.
	RoleCounter Role = "counter"
	RoleCombo   Role = "combo"
)

// Outcome is the result of resolving one card.
type Outcome string

const (
	// OutcomeDiscarded: meaning judged wrong, card discarded.
	OutcomeDiscarded Outcome = "discarded"
	// OutcomeScored: meaning right, story wrong, card scored without effect.
	OutcomeScored Outcome = "scored"
	// OutcomeScoredWithEffect: both right, card scored and its effects ran.
	OutcomeScoredWithEffect Outcome = "scored_with_effect"
	// OutcomeUnavailable: the card left its owner's hand before it resolved.
	OutcomeUnavailable Outcome = "unavailable"
)

// TurnRequest declares the cards of one turn. Counter and combo are optional.
// Cards are declared before the turn's draw, so a card drawn this turn can
// only be played from the next one.
type TurnRequest struct {
	MainCardID    int
	CounterCardID *int // from the defender's hand
	ComboCardID   *int // from the attacker's hand
}

// Resolution describes what happened to one played card.
type Resolution struct {
	Card     *Card
	Role     Role
	ActorID  string
	JudgedID string
	Outcome  Outcome
	Chains   []effects.ChainResult
}

// TurnResult summarises a full turn.
type TurnResult struct {
	AttackerID   string
	Drawn        *Card
	Resolutions  []Resolution
	ComboSkipped bool
	GameOver     bool
	Winner       string
	Round        int // round counter after the switch
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	MaxScore int
	Bus      *rules.EventBus
	Logger   *zap.Logger
}

// Engine drives the turns of one match. Like State it belongs to a single
// goroutine; a turn runs to completion (or error) before the next may start.
type Engine struct {
	state    *State
	oracle   Oracle
	interp   *effects.Interpreter
	bus      *rules.EventBus
	logger   *zap.Logger
	maxScore int

	finished bool
	winner   string
	pending  *turnProgress
}

// turnProgress is a turn that stopped on an oracle error. The next RunTurn
// with the same request picks it up after the last finished resolution.
type turnProgress struct {
	req    TurnRequest
	result *TurnResult
}

func sameRequest(a, b TurnRequest) bool {
	eq := func(x, y *int) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	return a.MainCardID == b.MainCardID && eq(a.CounterCardID, b.CounterCardID) && eq(a.ComboCardID, b.ComboCardID)
}

// NewEngine creates an engine over state using oracle for judgments.
func NewEngine(state *State, oracle Oracle, opts EngineOptions) *Engine {
	if opts.MaxScore <= 0 {
		opts.MaxScore = DefaultMaxScore
	}
	if opts.Bus == nil {
		opts.Bus = rules.NewEventBus()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		state:    state,
		oracle:   oracle,
		interp:   effects.NewInterpreter(state.Rand()),
		bus:      opts.Bus,
		logger:   opts.Logger,
		maxScore: opts.MaxScore,
	}
}

func (e *Engine) State() *State           { return e.state }
func (e *Engine) Events() *rules.EventBus { return e.bus }
func (e *Engine) MaxScore() int           { return e.maxScore }
func (e *Engine) Finished() bool          { return e.finished }
func (e *Engine) Winner() (string, bool)  { return e.winner, e.finished }

// PendingTurn returns the request of a stopped turn waiting to be resumed.
func (e *Engine) PendingTurn() (TurnRequest, bool) {
	if e.pending == nil {
		return TurnRequest{}, false
	}
	return e.pending.req, true
}

// Deal gives each player n cards, alternating from player1. An empty deck
// stops dealing without error.
func (e *Engine) Deal(n int) {
	for i := 0; i < n; i++ {
		for _, p := range []*Player{e.state.Player1, e.state.Player2} {
			card, ok := e.state.Draw(p)
			if !ok {
				return
			}
			evt := rules.NewEvent(rules.EventCardDealt, p.ID, card.ID)
			evt.Round = e.state.Round()
			e.bus.Publish(evt)
		}
	}
	e.logger.Debug("dealt initial hands",
		zap.Int("player1_hand", e.state.Player1.HandCount()),
		zap.Int("player2_hand", e.state.Player2.HandCount()),
	)
}

// RunTurn plays one full turn for the current turn owner.
//
// All declared ids are validated before anything changes. Declared cards stay
// in hand until their resolution moves them. If the oracle fails the turn stops
// where it is, the turn owner is kept, and the partial result is returned with
// the error. Calling RunTurn again with the same request resumes that turn
// without drawing again or replaying finished resolutions; any other request
// fails with ErrTurnInProgress until it completes.
func (e *Engine) RunTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if e.finished {
		return nil, ErrGameOver
	}

	attacker, defender := e.state.CurrentPlayer(), e.state.Opponent()
	progress := e.pending
	if progress != nil {
		if !sameRequest(progress.req, req) {
			return nil, fmt.Errorf("card %d of %s: %w", progress.req.MainCardID, attacker.ID, ErrTurnInProgress)
		}
	} else {
		if err := e.validate(attacker, defender, req); err != nil {
			return nil, err
		}
		progress = &turnProgress{req: req}
	}

	result := progress.result
	resumed := result != nil
	if !resumed {
		result = &TurnResult{AttackerID: attacker.ID}
	}
	if err := e.play(ctx, attacker, defender, req, result, resumed); err != nil {
		e.state.Turn().Abort()
		progress.result = result
		e.pending = progress
		e.logger.Warn("turn aborted",
			zap.String("attacker", attacker.ID),
			zap.Int("round", e.state.Round()),
			zap.Int("resolved", len(result.Resolutions)),
			zap.Error(err),
		)
		return result, err
	}
	e.pending = nil
	return result, nil
}

func (e *Engine) validate(attacker, defender *Player, req TurnRequest) error {
	if !attacker.Has(req.MainCardID) {
		return fmt.Errorf("main card %d of %s: %w", req.MainCardID, attacker.ID, ErrCardNotInHand)
	}
	if req.CounterCardID != nil {
		card, ok := defender.Find(*req.CounterCardID)
		if !ok {
			return fmt.Errorf("counter card %d of %s: %w", *req.CounterCardID, defender.ID, ErrCardNotInHand)
		}
		if !card.IsCounter() {
			return fmt.Errorf("counter card %d is %s: %w", card.ID, card.Type, ErrWrongCardType)
		}
		// a combo is never played once a counter is declared
		return nil
	}
	if req.ComboCardID != nil {
		if *req.ComboCardID == req.MainCardID {
			return fmt.Errorf("combo card %d: %w", *req.ComboCardID, ErrDuplicateCard)
		}
		card, ok := attacker.Find(*req.ComboCardID)
		if !ok {
			return fmt.Errorf("combo card %d of %s: %w", *req.ComboCardID, attacker.ID, ErrCardNotInHand)
		}
		if !card.IsCombo() {
			return fmt.Errorf("combo card %d is %s: %w", card.ID, card.Type, ErrWrongCardType)
		}
	}
	return nil
}

// play walks the phases of a turn. When resumed the draw already happened and
// resolutions already in result are skipped.
func (e *Engine) play(ctx context.Context, attacker, defender *Player, req TurnRequest, result *TurnResult, resumed bool) error {
	if err := e.enter(rules.PhasePrepare); err != nil {
		return err
	}
	if resumed {
		e.logger.Debug("resuming turn",
			zap.String("attacker", attacker.ID),
			zap.Int("resolved", len(result.Resolutions)),
		)
	} else if card, ok := e.state.Draw(attacker); ok {
		result.Drawn = card
		evt := rules.NewEvent(rules.EventCardDrawn, attacker.ID, card.ID)
		evt.Round = e.state.Round()
		e.bus.Publish(evt)
	}

	if err := e.enter(rules.PhaseAttack); err != nil {
		return err
	}
	if err := e.resolve(ctx, attacker, defender, req.MainCardID, RoleAttack, 0, result); err != nil {
		return err
	}

	switch {
	case req.CounterCardID != nil:
		if err := e.enter(rules.PhaseCounter); err != nil {
			return err
		}
		if err := e.resolve(ctx, defender, attacker, *req.CounterCardID, RoleCounter, 1, result); err != nil {
			return err
		}
		if req.ComboCardID != nil {
			result.ComboSkipped = true
			evt := rules.NewEvent(rules.EventComboSkipped, attacker.ID, *req.ComboCardID)
			evt.Round = e.state.Round()
			e.bus.Publish(evt)
		}
	case req.ComboCardID != nil:
		if err := e.enter(rules.PhaseCombo); err != nil {
			return err
		}
		if err := e.resolve(ctx, attacker, defender, *req.ComboCardID, RoleCombo, 1, result); err != nil {
			return err
		}
	}

	if err := e.enter(rules.PhaseEndCheck); err != nil {
		return err
	}
	if e.state.IsOver(e.maxScore) {
		e.finished = true
		e.winner = e.state.Winner()
		result.GameOver = true
		result.Winner = e.winner

		evt := rules.NewEvent(rules.EventGameOver, e.winner, 0)
		evt.Round = e.state.Round()
		evt.Data = e.winner
		e.bus.Publish(evt)
		e.logger.Info("game over",
			zap.String("winner", e.winner),
			zap.Int("round", e.state.Round()),
			zap.Int("player1_score", e.state.Player1.ScoreCount()),
			zap.Int("player2_score", e.state.Player2.ScoreCount()),
		)
	}

	// The switch happens on the final turn too; callers check Finished.
	if err := e.enter(rules.PhaseTurnSwitch); err != nil {
		return err
	}
	e.state.SwitchTurn()
	result.Round = e.state.Round()

	evt := rules.NewEventWithAmount(rules.EventTurnSwitched, e.state.CurrentPlayerID(), 0, result.Round)
	evt.Round = result.Round
	e.bus.Publish(evt)
	return nil
}

// Pass hands the turn to the opponent without drawing or playing.
func (e *Engine) Pass() error {
	if e.finished {
		return ErrGameOver
	}
	if e.pending != nil {
		return ErrTurnInProgress
	}
	passer := e.state.CurrentPlayerID()
	passed := rules.NewEvent(rules.EventTurnPassed, passer, 0)
	passed.Round = e.state.Round()
	e.bus.Publish(passed)
	e.state.SwitchTurn()

	round := e.state.Round()
	evt := rules.NewEventWithAmount(rules.EventTurnSwitched, e.state.CurrentPlayerID(), 0, round)
	evt.Round = round
	e.bus.Publish(evt)
	e.logger.Debug("turn passed", zap.String("player", passer), zap.Int("round", round))
	return nil
}

// resolve judges one card held by actor and moves it to its destination.
// slot is the card's position among the turn's resolutions; a slot already
// present in result was finished before an abort and is skipped.
func (e *Engine) resolve(ctx context.Context, actor, judged *Player, cardID int, role Role, slot int, result *TurnResult) error {
	if err := e.enter(rules.PhaseResolve); err != nil {
		return err
	}
	if slot < len(result.Resolutions) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res := Resolution{Role: role, ActorID: actor.ID, JudgedID: judged.ID}
	card, ok := actor.Find(cardID)
	if !ok {
		res.Outcome = OutcomeUnavailable
		result.Resolutions = append(result.Resolutions, res)
		e.logger.Debug("declared card left the hand before resolving",
			zap.String("player", actor.ID),
			zap.Int("card_id", cardID),
			zap.String("role", string(role)),
		)
		return nil
	}
	res.Card = card

	hand := e.state.HandZone(actor)
	meaning, err := e.oracle.JudgeMeaning(ctx, card, judged.ID)
	if err != nil {
		return fmt.Errorf("judge meaning of card %d: %w", card.ID, err)
	}
	if !meaning {
		e.state.MoveCard(hand, zone.Discard, card.ID)
		res.Outcome = OutcomeDiscarded
		e.finishResolution(res, result)
		return nil
	}

	story, err := e.oracle.JudgeStory(ctx, card, judged.ID)
	if err != nil {
		return fmt.Errorf("judge story of card %d: %w", card.ID, err)
	}
	e.state.MoveCard(hand, e.state.ScoreZone(actor), card.ID)
	if !story {
		res.Outcome = OutcomeScored
		e.finishResolution(res, result)
		return nil
	}

	res.Outcome = OutcomeScoredWithEffect
	res.Chains = card.PlayFullEffects(e.interp, e.state)
	e.publishChains(actor, card, res.Chains)
	e.finishResolution(res, result)
	return nil
}

func (e *Engine) finishResolution(res Resolution, result *TurnResult) {
	result.Resolutions = append(result.Resolutions, res)

	evt := rules.NewEvent(rules.EventCardResolved, res.ActorID, res.Card.ID)
	evt.Round = e.state.Round()
	evt.Data = string(res.Outcome)
	evt.Description = fmt.Sprintf("%s %s by %s: %s", res.Role, res.Card.Name, res.ActorID, res.Outcome)
	e.bus.Publish(evt)

	e.logger.Info("card resolved",
		zap.String("actor", res.ActorID),
		zap.String("judged", res.JudgedID),
		zap.Int("card_id", res.Card.ID),
		zap.String("role", string(res.Role)),
		zap.String("outcome", string(res.Outcome)),
	)
}

func (e *Engine) publishChains(actor *Player, card *Card, chains []effects.ChainResult) {
	for _, chain := range chains {
		for _, step := range chain.Trace {
			action, ok := step.Step.(effects.Action)
			if !ok || step.Moved == 0 {
				continue
			}
			evt := rules.NewEventWithAmount(rules.EventCardsMoved, actor.ID, card.ID, step.Moved)
			evt.Round = e.state.Round()
			evt.From = action.From.String()
			evt.To = action.To.String()
			e.bus.Publish(evt)
		}
		if chain.Aborted {
			evt := rules.NewEventWithAmount(rules.EventChainAborted, actor.ID, card.ID, chain.AbortedAt)
			evt.Round = e.state.Round()
			e.bus.Publish(evt)
		}
	}
}

func (e *Engine) enter(phase rules.Phase) error {
	if err := e.state.Turn().Enter(phase); err != nil {
		return err
	}
	evt := rules.NewEvent(rules.EventPhaseChanged, e.state.CurrentPlayerID(), 0)
	evt.Round = e.state.Round()
	evt.Data = phase.String()
	e.bus.Publish(evt)
	return nil
}
