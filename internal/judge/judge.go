package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/game"
)

// ErrUnknownMode is the configuration error for an unrecognised judge mode.
var ErrUnknownMode = errors.New("unknown judge mode")

// Mode selects how answers are judged.
type Mode string

const (
	// ModeManual asks the judged player and compares the answer to the card text.
	ModeManual Mode = "manual"
	// ModeAuto accepts every answer.
	ModeAuto Mode = "auto"
)

// ParseMode resolves a mode name. "cli" and "automatic" are accepted aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "cli":
		return ModeManual, nil
	case "auto", "automatic":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// Prompter collects a free-text answer from a player. Implementations may
// block on a human; they must return when ctx is done.
type Prompter interface {
	Ask(ctx context.Context, playerID, question string) (string, error)
}

// Reporter is optionally implemented by a Prompter that wants to show the
// player how their answer scored.
type Reporter interface {
	Report(playerID string, score float64, accepted bool)
}

// Config configures a Judge.
type Config struct {
	Mode      string
	Threshold float64 // 0 uses DefaultThreshold
}

// Judge implements game.Oracle.
type Judge struct {
	mode      Mode
	threshold float64
	prompter  Prompter
	logger    *zap.Logger
}

var _ game.Oracle = (*Judge)(nil)

// New builds a judge. Manual mode needs a prompter.
func New(cfg Config, prompter Prompter, logger *zap.Logger) (*Judge, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if mode == ModeManual && prompter == nil {
		return nil, errors.New("manual judge requires a prompter")
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("judge threshold %.2f outside [0,1]", threshold)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Judge{mode: mode, threshold: threshold, prompter: prompter, logger: logger}, nil
}

func (j *Judge) Mode() Mode         { return j.mode }
func (j *Judge) Threshold() float64 { return j.threshold }

// JudgeMeaning asks playerID to explain the meaning of card.
func (j *Judge) JudgeMeaning(ctx context.Context, card *game.Card, playerID string) (bool, error) {
	return j.judge(ctx, playerID, fmt.Sprintf("[%s] explain the meaning of 「%s」: ", playerID, card.Name), card.Meaning)
}

// JudgeStory asks playerID to tell the story behind card.
func (j *Judge) JudgeStory(ctx context.Context, card *game.Card, playerID string) (bool, error) {
	return j.judge(ctx, playerID, fmt.Sprintf("[%s] tell the story of 「%s」: ", playerID, card.Name), card.Story)
}

func (j *Judge) judge(ctx context.Context, playerID, question, reference string) (bool, error) {
	switch j.mode {
	case ModeAuto:
		return true, nil
	case ModeManual:
		answer, err := j.prompter.Ask(ctx, playerID, question)
		if err != nil {
			return false, fmt.Errorf("ask %s: %w", playerID, err)
		}
		score := Ratio(answer, reference)
		accepted := score >= j.threshold
		if r, ok := j.prompter.(Reporter); ok {
			r.Report(playerID, score, accepted)
		}
		j.logger.Debug("answer judged",
			zap.String("player", playerID),
			zap.Float64("score", score),
			zap.Bool("accepted", accepted),
		)
		return accepted, nil
	default:
		return false, fmt.Errorf("%q: %w", j.mode, ErrUnknownMode)
	}
}
