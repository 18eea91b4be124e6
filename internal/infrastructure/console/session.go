// Package console provides the interactive chat session.
// Framework/driver layer - the outermost circle, wired to stdin/stdout in
// main and to buffers in tests.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/teknokeras/perso/internal/domain/entities"
)

// Answerer runs one retrieval-augmented turn.
// Satisfied by usecases.QueryUseCase.
type Answerer interface {
	Answer(ctx context.Context, query string) (*entities.ChatResponse, error)
}

// Session is the read-query-respond loop. One outstanding query at a time:
// the prompt does not return until the in-flight turn completes. A failed
// turn is reported and the loop continues; only startup failures are fatal.
type Session struct {
	answerer Answerer
	in       *bufio.Scanner
	out      io.Writer
	errOut   io.Writer
	timeout  time.Duration
}

// NewSession creates a chat session. timeout bounds each turn; zero means
// no deadline.
func NewSession(answerer Answerer, in io.Reader, out, errOut io.Writer, timeout time.Duration) *Session {
	scanner := bufio.NewScanner(in)
	// A pasted question can exceed bufio.Scanner's 64KiB default line cap;
	// hitting it would end the session instead of the turn.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Session{
		answerer: answerer,
		in:       scanner,
		out:      out,
		errOut:   errOut,
		timeout:  timeout,
	}
}

// Run drives the loop until the user types "exit" or "quit", input ends,
// or the context is canceled. Empty and whitespace-only lines re-prompt
// without a turn.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "✨ Perso is ready! (Type 'exit' or 'quit' to end)\n\n")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(s.out, "👤 You: ")
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			fmt.Fprintln(s.out, "\n👋 Goodbye!")
			return nil
		}

		query := strings.TrimSpace(s.in.Text())
		switch query {
		case "exit", "quit":
			fmt.Fprintln(s.out, "👋 Goodbye!")
			return nil
		case "":
			continue
		}

		s.respond(ctx, query)
	}
}

// respond runs a single turn. Errors are printed, never returned: one bad
// turn must not poison the session.
func (s *Session) respond(ctx context.Context, query string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	fmt.Fprintln(s.out, "🤖 Perso thinking...")
	resp, err := s.answerer.Answer(ctx, query)
	if err != nil {
		fmt.Fprintf(s.errOut, "❌ Error: %v\n\n", err)
		return
	}
	fmt.Fprintf(s.out, "🤖 Perso: %s\n\n", resp.Answer)
}
