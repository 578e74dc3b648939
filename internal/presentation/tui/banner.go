package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner of the flow builder console.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Subtle gradient (Sky/Indigo)
	lines := []termenv.Style{
		termenv.String("  ___ _              ___      _ _    _         ").Foreground(p.Color("#38bdf8")),
		termenv.String(" | __| |_____ __ __ | _ )_  _(_) |__| |___ _ _ ").Foreground(p.Color("#60a5fa")),
		termenv.String(" | _|| / _ \\ V  V / | _ \\ || | | / _` / -_) '_|").Foreground(p.Color("#818cf8")),
		termenv.String(" |_| |_\\___/\\_/\\_/  |___/\\_,_|_|_\\__,_\\___|_|  ").Foreground(p.Color("#a78bfa")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
}
