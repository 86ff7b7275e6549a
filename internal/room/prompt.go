package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Prompt asks a seated player for a free-text answer.
type Prompt struct {
	ID       string `json:"prompt_id"`
	PlayerID string `json:"player_id"`
	Question string `json:"question"`
}

type pendingPrompt struct {
	prompt Prompt
	answer chan string
}

// promptBroker matches answers arriving on connections to questions asked by
// the judge while the match goroutine waits. It never touches the engine.
type promptBroker struct {
	mu      sync.Mutex
	pending map[string]pendingPrompt
}

func newPromptBroker() *promptBroker {
	return &promptBroker{pending: make(map[string]pendingPrompt)}
}

func (b *promptBroker) open(playerID, question string) (Prompt, chan string) {
	p := Prompt{ID: uuid.NewString(), PlayerID: playerID, Question: question}
	ch := make(chan string, 1)

	b.mu.Lock()
	b.pending[p.ID] = pendingPrompt{prompt: p, answer: ch}
	b.mu.Unlock()
	return p, ch
}

func (b *promptBroker) cancel(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func (b *promptBroker) deliver(playerID, id, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[id]
	if !ok || p.prompt.PlayerID != playerID {
		return ErrNoPrompt
	}
	delete(b.pending, id)
	p.answer <- text
	return nil
}

// pendingFor returns the open prompts of playerID, for reconnecting clients.
func (b *promptBroker) pendingFor(playerID string) []Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Prompt
	for _, p := range b.pending {
		if p.prompt.PlayerID == playerID {
			out = append(out, p.prompt)
		}
	}
	return out
}

// roomPrompter implements judge.Prompter by pushing prompts to the judged
// player's connection and waiting for the answer.
type roomPrompter struct {
	room *Room
}

func (p roomPrompter) Ask(ctx context.Context, playerID, question string) (string, error) {
	key, ok := p.room.keyOf(playerID)
	if !ok {
		return "", fmt.Errorf("%s: %w", playerID, ErrNotInRoom)
	}

	prompt, answer := p.room.prompts.open(playerID, question)
	defer p.room.prompts.cancel(prompt.ID)

	if err := p.room.notifier.Prompt(p.room.ID, key, prompt); err != nil {
		return "", fmt.Errorf("send prompt to %s: %w", playerID, err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.room.done:
		return "", ErrRoomClosed
	case text := <-answer:
		return text, nil
	}
}
