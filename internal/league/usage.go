package league

import (
	"context"
	"sort"

	"github.com/mmcdole/lineup/internal/catalog"
	"github.com/mmcdole/lineup/internal/domain"
)

// TopPlayers counts how many of the user's rosters hold each player, across
// all leagues, and returns the most used ones (count desc, then name).
func (s *Service) TopPlayers(ctx context.Context, userID string) (result []domain.UsageEntry) {
	result = []domain.UsageEntry{}
	defer s.recoverTo("top players", userID, func() { result = []domain.UsageEntry{} })

	leagues, err := s.LeaguesForUser(ctx, userID)
	if err != nil {
		s.logger.Warn("leagues unavailable", "userID", userID, "error", err)
		return result
	}
	players := s.players.Catalog(ctx)

	usage := make(map[string]*domain.UsageEntry)
	for _, league := range leagues {
		rosters, err := s.Rosters(ctx, league.ID)
		if err != nil {
			s.logger.Warn("skipping league", "leagueID", league.ID, "error", err)
			continue
		}
		for _, roster := range rosters {
			if !roster.OwnedBy(userID) {
				continue
			}
			for _, pid := range roster.Players {
				if domain.IsEmptySlot(pid) {
					continue
				}
				entry, ok := usage[pid]
				if !ok {
					entry = newUsageEntry(pid, players)
					usage[pid] = entry
				}
				entry.Count++
				entry.Leagues = append(entry.Leagues, s.appearance(ctx, league, roster, pid))
			}
		}
	}

	for _, entry := range usage {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	if len(result) > s.topN {
		result = result[:s.topN]
	}
	return result
}

// PlayerDetails resolves a display name against the catalog and lists the
// first roster of the user holding that player in each league.
func (s *Service) PlayerDetails(ctx context.Context, userID, name string) (domain.PlayerDetails, error) {
	player, err := s.players.FindByName(ctx, name)
	if err != nil {
		return domain.PlayerDetails{}, err
	}

	details := domain.PlayerDetails{
		PlayerID:     player.ID,
		PlayerName:   domain.DisplayName(player.ID, player),
		Position:     orUnknown(player.Position),
		InjuryStatus: catalog.FormatStatus(player.InjuryStatus),
		Leagues:      []domain.LeagueAppearance{},
	}

	leagues, err := s.LeaguesForUser(ctx, userID)
	if err != nil {
		s.logger.Warn("leagues unavailable", "userID", userID, "error", err)
		return details, nil
	}
	for _, league := range leagues {
		rosters, err := s.Rosters(ctx, league.ID)
		if err != nil {
			continue
		}
		for _, roster := range rosters {
			if roster.OwnedBy(userID) && roster.Holds(player.ID) {
				details.Leagues = append(details.Leagues, s.appearance(ctx, league, roster, player.ID))
				break
			}
		}
	}
	return details, nil
}

func (s *Service) appearance(ctx context.Context, league domain.League, roster domain.Roster, playerID string) domain.LeagueAppearance {
	name := league.Name
	if name == "" {
		name = "Unknown"
	}
	return domain.LeagueAppearance{
		LeagueName:     name,
		LeagueID:       league.ID,
		RosterID:       roster.ID,
		RosterPosition: s.RosterPosition(ctx, playerID, roster, league.ID),
	}
}

func newUsageEntry(id string, players domain.Catalog) *domain.UsageEntry {
	p := players[id]
	return &domain.UsageEntry{
		PlayerID:     id,
		Name:         domain.DisplayName(id, p),
		Position:     orUnknown(p.Position),
		InjuryStatus: catalog.FormatStatus(p.InjuryStatus),
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "?"
	}
	return v
}
