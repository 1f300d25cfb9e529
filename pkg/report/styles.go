package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles used by the text report.
type Styles struct {
	Header lipgloss.Style
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Muted  lipgloss.Style
}

// NewStyles binds the report styles to w. With color false every style
// renders as plain text.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Header: r.NewStyle().Bold(true),
		Pass: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}),
		Fail: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}),
		Muted: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}),
	}
}
