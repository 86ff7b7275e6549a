package judge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ReaderPrompter asks questions on a terminal-like pair of streams.
type ReaderPrompter struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan lineResult
	once  sync.Once
}

type lineResult struct {
	line string
	err  error
}

// NewReaderPrompter reads answers line by line from in and writes questions to out.
func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan lineResult),
	}
}

// readLines is the only reader of in; an abandoned Ask leaves its line for
// the next one.
func (p *ReaderPrompter) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		p.lines <- lineResult{line: strings.TrimSpace(line), err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

// Ask writes the question and waits for one line or for ctx to end.
func (p *ReaderPrompter) Ask(ctx context.Context, playerID, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.once.Do(func() { go p.readLines() })
	fmt.Fprint(p.out, question)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// Report prints the similarity score of the last answer.
func (p *ReaderPrompter) Report(playerID string, score float64, accepted bool) {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	fmt.Fprintf(p.out, "match score %.2f, %s\n", score, verdict)
}
