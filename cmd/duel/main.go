// Command duel plays a hot-seat match in the terminal. Both players share
// stdin; answers are judged by similarity to the card text unless the
// judge mode is auto.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/summerquest/idiom-duel-go/internal/cards"
	"github.com/summerquest/idiom-duel-go/internal/config"
	"github.com/summerquest/idiom-duel-go/internal/game"
	"github.com/summerquest/idiom-duel-go/internal/judge"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	judgeMode  = flag.String("judge", "", "override the judge mode (manual or auto)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *judgeMode != "" {
		cfg.Judge.Mode = *judgeMode
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, logger); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "duel: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes warnings and above to stderr so log lines stay out of the
// game transcript.
func newLogger(level string) *zap.Logger {
	lvl := zapcore.WarnLevel
	if level == "debug" {
		lvl = zapcore.DebugLevel
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.OutputPaths = []string{"stderr"}
	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *zap.Logger) error {
	library, err := cards.Load(cfg.Game.CardsPath)
	if err != nil {
		return err
	}

	prompter := judge.NewReaderPrompter(in, out)
	oracle, err := judge.New(judge.Config{Mode: cfg.Judge.Mode, Threshold: cfg.Judge.Threshold}, prompter, logger)
	if err != nil {
		return err
	}

	state := game.NewState(library.Deck(), game.Options{Shuffle: cfg.Game.Shuffle})
	engine := game.NewEngine(state, oracle, game.EngineOptions{MaxScore: cfg.Game.MaxScore, Logger: logger})
	engine.Deal(cfg.Game.InitialHand)

	fmt.Fprintln(out, "=== game start ===")
	fmt.Fprintln(out, state.Summary())

	for !engine.Finished() {
		attacker, defender := state.CurrentPlayer(), state.Opponent()
		fmt.Fprintf(out, "\n[attack] %s's turn\n", attacker.ID)

		attack, err := chooseCard(ctx, prompter, out, attacker, nil)
		if err != nil {
			return err
		}
		if attack == nil {
			fmt.Fprintln(out, "pass")
			if err := engine.Pass(); err != nil {
				return err
			}
			continue
		}

		req := game.TurnRequest{MainCardID: attack.ID}
		if defender.HasCounter() {
			fmt.Fprintf(out, "\n[counter] %s may answer with a counter card\n", defender.ID)
			counter, err := chooseCard(ctx, prompter, out, defender, (*game.Card).IsCounter)
			if err != nil {
				return err
			}
			if counter != nil {
				req.CounterCardID = &counter.ID
			}
		}
		if req.CounterCardID == nil && attacker.HasCombo() {
			fmt.Fprintf(out, "\n[combo] %s may follow up with a combo card\n", attacker.ID)
			combo, err := chooseCard(ctx, prompter, out, attacker, func(c *game.Card) bool {
				return c.IsCombo() && c.ID != attack.ID
			})
			if err != nil {
				return err
			}
			if combo != nil {
				req.ComboCardID = &combo.ID
			}
		}

		result, err := engine.RunTurn(ctx, req)
		if err != nil {
			return err
		}
		printResult(out, result)
		fmt.Fprintln(out, "\n"+state.Summary())
	}

	fmt.Fprintln(out, "\n=== game over ===")
	fmt.Fprintf(out, "%s score: %d\n", state.Player1.ID, state.Player1.ScoreCount())
	fmt.Fprintf(out, "%s score: %d\n", state.Player2.ID, state.Player2.ScoreCount())
	winner, _ := engine.Winner()
	fmt.Fprintf(out, "%s wins!\n", winner)
	return nil
}

// chooseCard lists p's hand and asks for a 1-based index. Zero declines and
// returns nil. keep restricts the acceptable cards when set.
func chooseCard(ctx context.Context, prompter judge.Prompter, out io.Writer, p *game.Player, keep func(*game.Card) bool) (*game.Card, error) {
	for {
		fmt.Fprintf(out, "%s's hand:\n", p.ID)
		for i, card := range p.Hand {
			fmt.Fprintf(out, "%d. %s\n", i+1, card)
		}

		answer, err := prompter.Ask(ctx, p.ID, "choose a card number (0 to decline): ")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(answer)
		switch {
		case err != nil || n < 0 || n > len(p.Hand):
			fmt.Fprintln(out, "invalid choice, try again")
		case n == 0:
			return nil, nil
		case keep != nil && !keep(p.Hand[n-1]):
			fmt.Fprintf(out, "%s cannot be played here\n", p.Hand[n-1])
		default:
			return p.Hand[n-1], nil
		}
	}
}

func printResult(out io.Writer, result *game.TurnResult) {
	if result.Drawn != nil {
		fmt.Fprintf(out, "%s drew %s\n", result.AttackerID, result.Drawn)
	}
	for _, res := range result.Resolutions {
		name := "(gone)"
		if res.Card != nil {
			name = res.Card.String()
		}
		fmt.Fprintf(out, "[%s] %s by %s: %s\n", res.Role, name, res.ActorID, res.Outcome)
		for _, chain := range res.Chains {
			if chain.Aborted {
				fmt.Fprintf(out, "  effect stopped at step %d\n", chain.AbortedAt+1)
			} else if chain.Moved > 0 {
				fmt.Fprintf(out, "  effect moved %d card(s)\n", chain.Moved)
			}
		}
	}
	if result.ComboSkipped {
		fmt.Fprintln(out, "combo skipped after the counter")
	}
}
