package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the benepick banner in a green gradient.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{" _                          _      _    ", "#34d399"},
		{"| |__   ___ _ __   ___ _ __ (_) ___| | __", "#2dd4bf"},
		{"| '_ \\ / _ \\ '_ \\ / _ \\ '_ \\| |/ __| |/ /", "#22d3ee"},
		{"| |_) |  __/ | | |  __/ |_) | | (__|   < ", "#38bdf8"},
		{"|_.__/ \\___|_| |_|\\___| .__/|_|\\___|_|\\_\\", "#60a5fa"},
		{"                      |_|                ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
