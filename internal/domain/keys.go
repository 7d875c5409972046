package domain

import "fmt"

// CacheKind tags which collection a CacheKey addresses.
type CacheKind int

const (
	KindLeagues CacheKind = iota + 1
	KindRosters
	KindSettings
	KindCatalog
)

func (k CacheKind) String() string {
	switch k {
	case KindLeagues:
		return "leagues"
	case KindRosters:
		return "rosters"
	case KindSettings:
		return "settings"
	case KindCatalog:
		return "catalog"
	default:
		return "unknown"
	}
}

// CacheKey identifies one cached upstream collection.
// Fields not used by a kind stay empty, so keys of different kinds never collide.
type CacheKey struct {
	Kind     CacheKind
	UserID   string
	Season   string
	LeagueID string
}

// LeaguesKey addresses a user's league list for one season.
func LeaguesKey(userID, season string) CacheKey {
	return CacheKey{Kind: KindLeagues, UserID: userID, Season: season}
}

// RostersKey addresses the roster list of a league.
func RostersKey(leagueID string) CacheKey {
	return CacheKey{Kind: KindRosters, LeagueID: leagueID}
}

// SettingsKey addresses the settings document of a league.
func SettingsKey(leagueID string) CacheKey {
	return CacheKey{Kind: KindSettings, LeagueID: leagueID}
}

// CatalogKey addresses the player catalog.
func CatalogKey() CacheKey {
	return CacheKey{Kind: KindCatalog}
}

func (k CacheKey) String() string {
	switch k.Kind {
	case KindLeagues:
		return fmt.Sprintf("leagues:%s:%s", k.UserID, k.Season)
	case KindRosters, KindSettings:
		return fmt.Sprintf("%s:%s", k.Kind, k.LeagueID)
	default:
		return k.Kind.String()
	}
}
