package domain

import (
	"fmt"
	"strings"
)

// Status codes with special meaning to the pipeline.
const (
	StatusActive  = "Active"
	StatusUnknown = "Unknown"
)

const unknownField = "?"

// PlayerView is a player with every fallback already resolved.
// It is the only shape in which players are rendered.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
	Status   string `json:"status"`
}

// NewPlayerView resolves the player with ID id against the catalog.
// IDs missing from the catalog produce an "Unknown Player" placeholder.
func NewPlayerView(id string, catalog Catalog) PlayerView {
	p, ok := catalog[id]
	if !ok {
		return PlayerView{
			ID:       id,
			Name:     fmt.Sprintf("Unknown Player (%s)", id),
			Position: unknownField,
			Team:     unknownField,
			Status:   StatusUnknown,
		}
	}
	return PlayerView{
		ID:       id,
		Name:     DisplayName(id, p),
		Position: orDefault(p.Position, unknownField),
		Team:     orDefault(p.Team, unknownField),
		Status:   AvailabilityStatus(p),
	}
}

// DisplayName returns the full name, then "first last", then Player_<id prefix>.
func DisplayName(id string, p Player) string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	prefix := id
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return "Player_" + prefix
}

// AvailabilityStatus prefers the injury designation over the roster status.
func AvailabilityStatus(p Player) string {
	if p.InjuryStatus != "" {
		return p.InjuryStatus
	}
	return orDefault(p.Status, StatusActive)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
