package domain

import "context"

// Upstream provides read-only access to the fantasy platform API.
// Every method returns an error wrapping ErrUnavailable when no data could be fetched.
type Upstream interface {
	// GetUser resolves a handle to its user record
	GetUser(ctx context.Context, handle string) (User, error)

	// GetLeagues returns the user's leagues for a season
	GetLeagues(ctx context.Context, userID, season string) ([]League, error)

	// GetLeague returns a league's settings document
	GetLeague(ctx context.Context, leagueID string) (League, error)

	// GetRosters returns every roster of a league
	GetRosters(ctx context.Context, leagueID string) ([]Roster, error)

	// GetPlayers returns the full, unfiltered player catalog of the configured sport
	GetPlayers(ctx context.Context) (map[string]Player, error)
}
