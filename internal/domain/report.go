package domain

import "time"

// EmptyPositionStatus is the issue kind for unfilled starting slots.
const EmptyPositionStatus = "Empty Position"

// IssueGroup is one entry of a league's issue list: either the empty-slot
// group (Positions set, IsEmpty true) or a named availability status (Players set).
type IssueGroup struct {
	Status    string       `json:"status"`
	Positions []string     `json:"positions,omitempty"`
	Players   []PlayerView `json:"players,omitempty"`
	Count     int          `json:"count"`
	IsEmpty   bool         `json:"is_empty,omitempty"`
}

// NewEmptyGroup builds the "Empty Position" group for the given slot labels.
func NewEmptyGroup(positions []string) IssueGroup {
	return IssueGroup{
		Status:    EmptyPositionStatus,
		Positions: positions,
		Count:     len(positions),
		IsEmpty:   true,
	}
}

// NewStatusGroup builds a named-status group.
func NewStatusGroup(status string, players []PlayerView) IssueGroup {
	return IssueGroup{Status: status, Players: players, Count: len(players)}
}

// StatusReport is the lineup problem summary of a single league.
type StatusReport struct {
	Name        string       `json:"name"`
	Issues      []IssueGroup `json:"issues"`
	TotalIssues int          `json:"total_issues"`
}

// LeagueAppearance records one roster of the user that holds a player.
type LeagueAppearance struct {
	LeagueName     string `json:"league_name"`
	LeagueID       string `json:"league_id"`
	RosterID       int    `json:"roster_id"`
	RosterPosition string `json:"roster_position"`
}

// UsageEntry counts how many of a user's rosters hold a player.
type UsageEntry struct {
	PlayerID     string             `json:"id"`
	Name         string             `json:"name"`
	Count        int                `json:"count"`
	Position     string             `json:"position"`
	InjuryStatus string             `json:"injury_status"`
	Leagues      []LeagueAppearance `json:"leagues"`
}

// SearchResult is one catalog match for a player search.
type SearchResult struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Positions       []string `json:"positions"`
	Status          string   `json:"status"`
	StatusAbbr      string   `json:"status_abbr"`
	DepthChartOrder *int     `json:"depth_chart_order"`
}

// PlayerDetails describes a player and where the user rosters them.
type PlayerDetails struct {
	PlayerID     string             `json:"player_id"`
	PlayerName   string             `json:"player_name"`
	Position     string             `json:"position"`
	InjuryStatus string             `json:"injury_status"`
	Leagues      []LeagueAppearance `json:"leagues"`
}

// CacheInfo describes the persisted catalog and the freshness window it is judged by.
type CacheInfo struct {
	Cached      bool      `json:"cached"`
	LastUpdated time.Time `json:"last_updated"`
	ExpiresAt   time.Time `json:"expires_at"`
	TTLSeconds  float64   `json:"ttl_seconds"`
	SizeBytes   int64     `json:"cache_size"`
	IsNight     bool      `json:"is_night"`
	IsMorning   bool      `json:"is_morning"`
	Valid       bool      `json:"valid"`
}
