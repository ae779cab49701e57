package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Session is an interactive question and answer loop about one account.
type Session struct {
	w   io.Writer
	r   *bufio.Reader
	ask func(ctx context.Context, query string) (string, error)
}

// NewSession creates a session reading questions from r and writing answers
// to w. Each question is answered by ask.
func NewSession(w io.Writer, r io.Reader, ask func(ctx context.Context, query string) (string, error)) *Session {
	return &Session{w: w, r: bufio.NewReader(r), ask: ask}
}

const prompt = "assist> "

// Run runs the loop until "bye", the end of input or the context is done.
// The prompts are asked first as if they were typed by the user.
//
// A failed question is reported and does not end the session.
func (s *Session) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(s.w, "Welcome to your financial assistant. Type 'bye' to exit.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		for len(prompts) > 0 && strings.TrimSpace(prompts[0]) == "" {
			prompts = prompts[1:]
		}
		fmt.Fprint(s.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			fmt.Fprintln(s.w, input)
		} else {
			var err error
			input, err = s.r.ReadString('\n')
			if err != nil && (err != io.EOF || input == "") {
				if err == io.EOF {
					fmt.Fprintln(s.w)
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
			input = strings.TrimSpace(input)
		}

		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		answer, err := s.ask(ctx, input)
		if err != nil {
			fmt.Fprintln(s.w, "Error:", err)
			continue
		}
		fmt.Fprintln(s.w, answer)
	}
}
