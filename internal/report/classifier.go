package report

import (
	"fmt"

	"github.com/mmcdole/lineup/internal/domain"
)

// Classifier turns a roster's starting lineup into ordered issue groups.
type Classifier struct {
	order          []string
	includeUnknown bool
}

// NewClassifier creates a classifier emitting status groups in order.
// With includeUnknown, players missing from the catalog are reported in a
// trailing "Unknown" group; every other status outside order is dropped.
func NewClassifier(order []string, includeUnknown bool) *Classifier {
	return &Classifier{
		order:          append([]string(nil), order...),
		includeUnknown: includeUnknown,
	}
}

// Classify inspects starters, index-aligned with the league's slot layout.
// The empty-position group, when present, always comes first.
func (c *Classifier) Classify(starters, slots []string, catalog domain.Catalog) []domain.IssueGroup {
	var groups []domain.IssueGroup

	if empty := EmptyPositions(starters, slots); len(empty) > 0 {
		groups = append(groups, domain.NewEmptyGroup(empty))
	}

	byStatus := make(map[string][]domain.PlayerView)
	for _, id := range starters {
		if domain.IsEmptySlot(id) {
			continue
		}
		view := domain.NewPlayerView(id, catalog)
		if view.Status == domain.StatusActive {
			continue
		}
		byStatus[view.Status] = append(byStatus[view.Status], view)
	}

	for _, status := range c.order {
		if players := byStatus[status]; len(players) > 0 {
			groups = append(groups, domain.NewStatusGroup(status, players))
		}
	}
	if c.includeUnknown && !c.ordered(domain.StatusUnknown) {
		if players := byStatus[domain.StatusUnknown]; len(players) > 0 {
			groups = append(groups, domain.NewStatusGroup(domain.StatusUnknown, players))
		}
	}
	return groups
}

func (c *Classifier) ordered(status string) bool {
	for _, s := range c.order {
		if s == status {
			return true
		}
	}
	return false
}

// EmptyPositions returns the slot labels of unfilled starter entries.
// Entries past the end of the layout are labelled "Position <n>".
func EmptyPositions(starters, slots []string) []string {
	var out []string
	for i, id := range starters {
		if !domain.IsEmptySlot(id) {
			continue
		}
		if i < len(slots) {
			out = append(out, slots[i])
		} else {
			out = append(out, fmt.Sprintf("Position %d", i+1))
		}
	}
	return out
}

// TotalIssues sums the member counts of groups.
func TotalIssues(groups []domain.IssueGroup) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}
