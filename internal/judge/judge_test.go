package judge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/summerquest/idiom-duel-go/internal/game"
)

type cannedPrompter struct {
	answers  []string
	asked    []string
	reported []float64
	err      error
}

func (p *cannedPrompter) Ask(ctx context.Context, playerID, question string) (string, error) {
	p.asked = append(p.asked, playerID)
	if p.err != nil {
		return "", p.err
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *cannedPrompter) Report(playerID string, score float64, accepted bool) {
	p.reported = append(p.reported, score)
}

var sampleCard = &game.Card{
	ID:      1,
	Name:    "守株待兔",
	Meaning: "比喻死守狭隘经验，不知变通",
	Story:   "宋国农夫见兔子撞树而死，便守在树旁等待",
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"manual": ModeManual, "cli": ModeManual, " CLI ": ModeManual,
		"auto": ModeAuto, "automatic": ModeAuto,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("ai")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Mode: "oracle"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = New(Config{Mode: "manual"}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{Mode: "auto", Threshold: 1.5}, nil, nil)
	assert.Error(t, err)

	j, err := New(Config{Mode: "auto"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, j.Threshold())
}

func TestAutoAcceptsEverything(t *testing.T) {
	j, err := New(Config{Mode: "auto"}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	ok, err := j.JudgeMeaning(context.Background(), sampleCard, game.Player1ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = j.JudgeStory(context.Background(), sampleCard, game.Player2ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManualScoresAnswers(t *testing.T) {
	p := &cannedPrompter{answers: []string{
		"比喻死守狭隘经验，不知变通",
		"完全无关的回答",
	}}
	j, err := New(Config{Mode: "manual"}, p, zaptest.NewLogger(t))
	require.NoError(t, err)

	ok, err := j.JudgeMeaning(context.Background(), sampleCard, game.Player2ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = j.JudgeStory(context.Background(), sampleCard, game.Player2ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{game.Player2ID, game.Player2ID}, p.asked)
	require.Len(t, p.reported, 2)
	assert.Equal(t, 1.0, p.reported[0])
}

func TestManualPromptError(t *testing.T) {
	boom := errors.New("connection closed")
	j, err := New(Config{Mode: "manual"}, &cannedPrompter{err: boom}, nil)
	require.NoError(t, err)

	_, err = j.JudgeMeaning(context.Background(), sampleCard, game.Player1ID)
	assert.ErrorIs(t, err, boom)
}

func TestZeroJudgeIsUnknownMode(t *testing.T) {
	var j Judge
	_, err := j.JudgeMeaning(context.Background(), sampleCard, game.Player1ID)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", ""))
	assert.Equal(t, 1.0, Ratio("  Hello   World ", "hello world"))
	assert.Equal(t, 1.0, Ratio("ＡＢＣ", "abc"), "full width folds to narrow")
	assert.InDelta(t, 0.75, Ratio("abcd", "abce"), 1e-9)
	assert.InDelta(t, 0.5, Ratio("成语接龙", "成语"), 1e-9)

	r := Ratio("kitten", "sitting")
	assert.True(t, r > 0 && r < 1)
	assert.Equal(t, r, Ratio("sitting", "kitten"))
}

func TestReaderPrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewReaderPrompter(strings.NewReader("first answer\nsecond"), &out)

	got, err := p.Ask(context.Background(), game.Player1ID, "q1? ")
	require.NoError(t, err)
	assert.Equal(t, "first answer", got)

	got, err = p.Ask(context.Background(), game.Player1ID, "q2? ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
	assert.Equal(t, "q1? q2? ", out.String())

	p.Report(game.Player1ID, 0.5, false)
	assert.Contains(t, out.String(), "0.50, rejected")
}

func TestReaderPrompterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewReaderPrompter(strings.NewReader("x\n"), &bytes.Buffer{})

	_, err := p.Ask(ctx, game.Player1ID, "q")
	assert.ErrorIs(t, err, context.Canceled)
}
