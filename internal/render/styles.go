package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette
var (
	Amber     = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
	Orange    = lipgloss.Color("#F97316")
	Yellow    = lipgloss.Color("#EAB308")
	Blue      = lipgloss.Color("#3B82F6")
)

// statusColors maps reportable statuses to their badge colour; unlisted statuses use DimGray.
var statusColors = map[string]lipgloss.Color{
	"PUP":            Red,
	"IR":             Red,
	"Suspended":      Red,
	"OUT":            Red,
	"Out":            Red,
	"Doubtful":       Orange,
	"Questionable":   Yellow,
	"Probable":       Green,
	"Empty Position": Amber,
}

// Styles is the style set bound to one renderer.
type Styles struct {
	r *lipgloss.Renderer

	Title   lipgloss.Style
	League  lipgloss.Style
	Count   lipgloss.Style
	Dim     lipgloss.Style
	Rule    lipgloss.Style
	Success lipgloss.Style
	Player  lipgloss.Style
}

// NewStyles builds styles for r. Without color every style renders plain text.
func NewStyles(r *lipgloss.Renderer, color bool) Styles {
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		r: r,

		Title: r.NewStyle().
			Foreground(White).
			Bold(true),

		League: r.NewStyle().
			Foreground(Amber).
			Bold(true),

		Count: r.NewStyle().
			Foreground(LightGray),

		Dim: r.NewStyle().
			Foreground(DimGray),

		Rule: r.NewStyle().
			Foreground(DimGray),

		Success: r.NewStyle().
			Foreground(Green),

		Player: r.NewStyle().
			Foreground(White).
			PaddingLeft(4),
	}
}

// Status returns the badge style of a status group.
func (s Styles) Status(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = DimGray
	}
	return s.r.NewStyle().
		Foreground(c).
		Bold(true).
		PaddingLeft(2)
}
