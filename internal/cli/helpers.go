package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/flowbuilder/internal/config"
	"github.com/aretw0/flowbuilder/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from the config.
// Server mode logs JSON; the interactive console logs text to Stderr so it does
// not mix with the conversation on Stdout, and stays silent unless debugging.
func NewLogger(cfg config.Config, server, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	switch {
	case server && cfg.LogFormat == "json":
		return logging.NewJSON(level)
	case server || debug:
		return logging.New(level)
	default:
		return logging.NewNop()
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// errInterrupted is returned by InterruptibleReader once the cancel channel is closed.
var errInterrupted = errors.New("interrupted")

// InterruptibleReader stops a console read loop as soon as cancel is closed.
// The underlying Read may still block; the interruption is seen on its return.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{base: base, cancel: cancel}
}

func (r *InterruptibleReader) Read(p []byte) (int, error) {
	if r.cancelled() {
		return 0, errInterrupted
	}
	n, err := r.base.Read(p)
	if r.cancelled() {
		return 0, errInterrupted
	}
	return n, err
}

func (r *InterruptibleReader) cancelled() bool {
	select {
	case <-r.cancel:
		return true
	default:
		return false
	}
}

// isInterrupted reports whether err ends a simulator session normally: Ctrl+C, a cancelled
// context or the end of piped input.
func isInterrupted(err error) bool {
	return errors.Is(err, errInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError turns a normal end of session into a nil error (exit code 0).
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
