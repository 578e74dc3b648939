package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/flowbuilder"
	"github.com/aretw0/flowbuilder/internal/config"
	"github.com/aretw0/flowbuilder/internal/presentation/tui"
	"golang.org/x/term"
)

// SimulateOptions contains all the configuration for the simulate command.
type SimulateOptions struct {
	Config   config.Config
	Debug    bool
	Headless bool
	Input    io.Reader // Defaults to os.Stdin
	Output   io.Writer // Defaults to os.Stdout
}

// RunSimulate opens the saved flow and chats with the simulator on the console.
// Piped input is treated as headless: no banner, prompts or markdown rendering.
func RunSimulate(opts SimulateOptions) error {
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.Headless = true
		}
	}
	if out == nil {
		out = os.Stdout
	}

	logger := NewLogger(opts.Config, false, opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	stack, err := NewStack(sigCtx, opts.Config, logger)
	if err != nil {
		return err
	}
	defer stack.Close(context.WithoutCancel(sigCtx))

	r := flowbuilder.NewRunner()
	r.Input = NewInterruptibleReader(in, sigCtx.Done())
	r.Output = out
	r.Headless = opts.Headless
	if !opts.Headless {
		tui.PrintBanner(out)
		printSystemMessage(out, "Simulating flow '%s'. Type 'quit' to exit, /sv or /en to switch language.", stack.Editor.Key())
		r.Renderer = tui.NewRenderer()
	}

	runErr := r.Run(sigCtx, stack.Editor)
	if sigCtx.Signal() != nil && !opts.Headless {
		fmt.Fprintln(out)
		printSystemMessage(out, "Interrupted.")
	}
	return handleExecutionError(runErr)
}
