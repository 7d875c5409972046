package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/lineup/internal/domain"
)

const (
	maxQueryLen    = 50
	maxSuggestions = 5
)

// NotFoundError is returned by FindByName; it wraps domain.ErrPlayerNotFound
// and carries close display names from the catalog.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("player %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return domain.ErrPlayerNotFound
}

// Search returns catalog players whose display name contains query (case-insensitive)
// and who are eligible for at least one of positions.
// Results are ordered by depth chart order (unset last), then name.
func (s *Service) Search(ctx context.Context, query string, positions []string) []domain.SearchResult {
	results := []domain.SearchResult{}
	if len(positions) == 0 {
		return results
	}

	query = normalizeQuery(query)
	wanted := make(map[string]bool, len(positions))
	for _, p := range positions {
		wanted[p] = true
	}

	for id, p := range s.Catalog(ctx) {
		name := domain.DisplayName(id, p)
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		if !eligible(p.FantasyPositions, wanted) {
			continue
		}
		status := p.Status
		if status == "" {
			status = domain.StatusActive
		}
		results = append(results, domain.SearchResult{
			ID:              id,
			Name:            name,
			Positions:       p.FantasyPositions,
			Status:          status,
			StatusAbbr:      StatusAbbr(status),
			DepthChartOrder: p.DepthChartOrder,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.DepthChartOrder == nil) != (b.DepthChartOrder == nil) {
			return a.DepthChartOrder != nil
		}
		if a.DepthChartOrder != nil && *a.DepthChartOrder != *b.DepthChartOrder {
			return *a.DepthChartOrder < *b.DepthChartOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	s.logger.Debug("player search", "query", query, "positions", positions, "results", len(results))
	return results
}

// FindByName resolves a display name (case-insensitive) to a catalog player.
// When several players share the name the lowest ID wins.
func (s *Service) FindByName(ctx context.Context, name string) (domain.Player, error) {
	name = strings.TrimSpace(name)
	players := s.Catalog(ctx)

	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		p := players[id]
		display := domain.DisplayName(id, p)
		if strings.EqualFold(display, name) {
			if p.ID == "" {
				p.ID = id
			}
			return p, nil
		}
		names = append(names, display)
	}

	return domain.Player{}, &NotFoundError{Name: name, Suggestions: suggest(name, names)}
}

// suggest ranks catalog names that contain the letters of name in order.
func suggest(name string, names []string) []string {
	if name == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	sort.Stable(ranks)

	var out []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if r := []rune(q); len(r) > maxQueryLen {
		q = string(r[:maxQueryLen])
	}
	return q
}

func eligible(playerPositions []string, wanted map[string]bool) bool {
	for _, p := range playerPositions {
		if wanted[p] {
			return true
		}
	}
	return false
}
