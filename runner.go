package flowbuilder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/flowbuilder/pkg/simulator"
)

// Runner drives the chat simulator over the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run greets the visitor with the flow's Welcome text and answers every line
// until EOF, "exit" or "quit". "/sv" and "/en" switch the reply language.
func (r *Runner) Run(ctx context.Context, editor *Editor) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- Flowbuilder Simulator ---")
	}
	r.print(editor.Greeting())

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lines.ReadString('\n')
		msg := strings.TrimSpace(text)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}

		switch msg {
		case "exit", "quit":
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		case "/sv":
			editor.SetLanguage(simulator.Swedish)
		case "/en":
			editor.SetLanguage(simulator.English)
		case "":
		default:
			if !r.Headless {
				fmt.Fprintln(r.Output, "...")
			}
			reply, rerr := editor.Simulate(ctx, msg)
			switch {
			case errors.Is(rerr, simulator.ErrInputTooLarge), errors.Is(rerr, simulator.ErrInvalidUTF8):
				fmt.Fprintf(r.Output, "Message rejected: %v\n", rerr)
			case rerr != nil:
				return rerr
			default:
				r.print(reply.Text)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (r *Runner) print(msg string) {
	output := msg
	if r.Renderer != nil {
		if rendered, err := r.Renderer(msg); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}
