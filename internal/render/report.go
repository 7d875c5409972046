package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/lineup/internal/domain"
)

const defaultWidth = 80

// Printer writes reports as styled terminal text.
type Printer struct {
	w      io.Writer
	styles Styles
	width  int
}

// NewPrinter creates a printer for w. width bounds separator lines; 0 uses 80 columns.
func NewPrinter(w io.Writer, color bool, width int) *Printer {
	if width <= 0 {
		width = defaultWidth
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{w: w, styles: NewStyles(r, color), width: width}
}

// StatusReport prints each league's issues, leagues ordered by name.
func (p *Printer) StatusReport(reports map[string]domain.StatusReport) error {
	var b strings.Builder
	if len(reports) == 0 {
		b.WriteString(p.styles.Success.Render("No lineup issues found."))
		b.WriteString("\n")
		_, err := io.WriteString(p.w, b.String())
		return err
	}

	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := reports[ids[i]], reports[ids[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		rep := reports[id]
		b.WriteString(p.styles.League.Render(rep.Name))
		b.WriteString(" ")
		b.WriteString(p.styles.Count.Render(plural(rep.TotalIssues, "issue")))
		b.WriteString("\n")
		b.WriteString(p.rule())
		b.WriteString("\n")
		for _, g := range rep.Issues {
			p.writeGroup(&b, g)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) writeGroup(b *strings.Builder, g domain.IssueGroup) {
	header := fmt.Sprintf("%s (%d)", g.Status, g.Count)
	if g.IsEmpty {
		b.WriteString(p.styles.Status(g.Status).Render(header))
		b.WriteString(" ")
		b.WriteString(p.styles.Dim.Render(strings.Join(g.Positions, ", ")))
		b.WriteString("\n")
		return
	}

	b.WriteString(p.styles.Status(g.Status).Render(header))
	b.WriteString("\n")
	for _, pl := range g.Players {
		b.WriteString(p.styles.Player.Render(pl.Name))
		b.WriteString(" ")
		b.WriteString(p.styles.Dim.Render(pl.Position + " " + pl.Team))
		b.WriteString("\n")
	}
}

// TopPlayers prints the usage table.
func (p *Printer) TopPlayers(entries []domain.UsageEntry) error {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Most rostered players"))
	b.WriteString("\n")
	b.WriteString(p.rule())
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(p.styles.Dim.Render("No rostered players."))
		b.WriteString("\n")
	}

	nameWidth := 0
	for _, e := range entries {
		if w := lipgloss.Width(e.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for i, e := range entries {
		name := e.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(e.Name))
		fmt.Fprintf(&b, "%2d. %s %s %s\n",
			i+1,
			p.styles.Title.Render(name),
			p.styles.Count.Render(fmt.Sprintf("%-3s x%d", e.Position, e.Count)),
			p.styles.Status(e.InjuryStatus).UnsetPaddingLeft().Render(e.InjuryStatus),
		)
		for _, l := range e.Leagues {
			b.WriteString(p.styles.Player.Render(fmt.Sprintf("%s [%s]", l.LeagueName, l.RosterPosition)))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) rule() string {
	return p.styles.Rule.Render(strings.Repeat("─", p.width))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
