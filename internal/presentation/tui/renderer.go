package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// Output wraps to the terminal width when stdout is a terminal; piped
// output falls back to a fixed width.
func NewRenderer() func(string) (string, error) {
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
