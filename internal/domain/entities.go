package domain

import "strings"

// Player is a single record of the upstream player catalog.
// Only the fields read by the report pipeline are decoded; everything else is ignored.
type Player struct {
	ID               string   `json:"player_id"`
	FullName         string   `json:"full_name,omitempty"`
	FirstName        string   `json:"first_name,omitempty"`
	LastName         string   `json:"last_name,omitempty"`
	Position         string   `json:"position,omitempty"`
	Team             string   `json:"team,omitempty"`
	Status           string   `json:"status,omitempty"`
	InjuryStatus     string   `json:"injury_status,omitempty"`
	Active           bool     `json:"active"`
	FantasyPositions []string `json:"fantasy_positions,omitempty"`
	DepthChartOrder  *int     `json:"depth_chart_order,omitempty"`
}

// Catalog maps player ID to the active player records of one sport.
// A Catalog is built once per refresh and never mutated afterwards.
type Catalog map[string]Player

// ActiveOnly returns a new catalog holding only players whose active flag is true.
func ActiveOnly(players map[string]Player) Catalog {
	out := make(Catalog, len(players))
	for id, p := range players {
		if !p.Active {
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
		out[id] = p
	}
	return out
}

// LeagueSettings holds the nested settings object of a league document.
type LeagueSettings struct {
	BestBall *int `json:"best_ball,omitempty"`
}

// League is a fantasy league as returned by both the user's league list
// and the per-league settings endpoint.
type League struct {
	ID              string         `json:"league_id"`
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	Season          string         `json:"season,omitempty"`
	Settings        LeagueSettings `json:"settings"`
	RosterPositions []string       `json:"roster_positions"`
}

// League season states reported by upstream.
const (
	LeagueStatusInSeason = "in_season"
)

// InSeason reports whether the league is currently being played.
func (l League) InSeason() bool {
	return l.Status == LeagueStatusInSeason
}

// IsBestBall reports whether the league uses best-ball lineups.
// A missing best_ball setting is treated as a regular league.
func (l League) IsBestBall() bool {
	return l.Settings.BestBall != nil && *l.Settings.BestBall == 1
}

// SlotLabel returns the roster-position label at index i and whether the layout covers it.
func (l League) SlotLabel(i int) (string, bool) {
	if i < 0 || i >= len(l.RosterPositions) {
		return "", false
	}
	return l.RosterPositions[i], true
}

// Roster is one team's squad in a league.
type Roster struct {
	ID       int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	LeagueID string   `json:"league_id"`
	Starters []string `json:"starters"`
	Players  []string `json:"players"`
	Reserve  []string `json:"reserve"`
	Taxi     []string `json:"taxi"`
}

// OwnedBy reports whether the roster belongs to userID.
func (r Roster) OwnedBy(userID string) bool {
	return userID != "" && r.OwnerID == userID
}

// Holds reports whether playerID is anywhere in the full squad.
func (r Roster) Holds(playerID string) bool {
	return contains(r.Players, playerID)
}

// InReserve reports whether playerID sits in the injured-reserve pool.
func (r Roster) InReserve(playerID string) bool {
	return contains(r.Reserve, playerID)
}

// InTaxi reports whether playerID sits on the taxi squad.
func (r Roster) InTaxi(playerID string) bool {
	return contains(r.Taxi, playerID)
}

// StarterIndex returns the lineup slot index of playerID, or -1 when not starting.
func (r Roster) StarterIndex(playerID string) int {
	return indexOf(r.Starters, playerID)
}

// User is the upstream account record for a handle.
type User struct {
	ID          string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// IsEmptySlot reports whether a starter entry marks an unfilled lineup slot.
// Upstream uses JSON null (decoded as ""), the string "None" or "0".
func IsEmptySlot(playerID string) bool {
	switch strings.TrimSpace(playerID) {
	case "", "None", "0":
		return true
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
