package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Terminal colors used by the text renderer.
var (
	colorPass = lipgloss.Color("2") // green
	colorFail = lipgloss.Color("1") // red
)

// Styles colors text output. Styles bound to a non-terminal writer render
// plain text.
type Styles struct {
	Pass lipgloss.Style
	Fail lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates styles that detect the color support of w.
// noColor forces plain text.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Pass: r.NewStyle().Foreground(colorPass),
		Fail: r.NewStyle().Foreground(colorFail),
		Bold: r.NewStyle().Bold(true),
	}
}

// Mark returns the colored pass/fail marker.
func (s Styles) Mark(pass bool) string {
	if pass {
		return s.Pass.Render("✓")
	}
	return s.Fail.Render("✗")
}
