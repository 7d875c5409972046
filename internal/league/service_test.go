package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/lineup/internal/catalog"
	"github.com/mmcdole/lineup/internal/config"
	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/report"
	"github.com/mmcdole/lineup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "u1"

type fakeUpstream struct {
	mu      sync.Mutex
	users   map[string]domain.User
	leagues []domain.League
	details map[string]domain.League
	rosters map[string][]domain.Roster
	players map[string]domain.Player

	failRosters map[string]bool
	calls       map[string]int
}

func (f *fakeUpstream) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeUpstream) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeUpstream) GetUser(ctx context.Context, handle string) (domain.User, error) {
	if u, ok := f.users[handle]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUnavailable
}

func (f *fakeUpstream) GetLeagues(ctx context.Context, userID, season string) ([]domain.League, error) {
	f.count("leagues")
	return f.leagues, nil
}

func (f *fakeUpstream) GetLeague(ctx context.Context, leagueID string) (domain.League, error) {
	f.count("league:" + leagueID)
	if l, ok := f.details[leagueID]; ok {
		return l, nil
	}
	return domain.League{}, domain.ErrUnavailable
}

func (f *fakeUpstream) GetRosters(ctx context.Context, leagueID string) ([]domain.Roster, error) {
	f.count("rosters:" + leagueID)
	if f.failRosters[leagueID] {
		return nil, domain.ErrUnavailable
	}
	return f.rosters[leagueID], nil
}

func (f *fakeUpstream) GetPlayers(ctx context.Context) (map[string]domain.Player, error) {
	return f.players, nil
}

func bestBall(v int) domain.LeagueSettings {
	return domain.LeagueSettings{BestBall: &v}
}

func fixture() *fakeUpstream {
	inSeason := func(id, name string) domain.League {
		return domain.League{ID: id, Name: name, Status: domain.LeagueStatusInSeason}
	}
	return &fakeUpstream{
		users: map[string]domain.User{"coach": {ID: userID, Username: "coach"}},
		leagues: []domain.League{
			inSeason("L1", "Dynasty"),
			inSeason("L2", "Best Ball"),
			{ID: "L3", Name: "Offseason", Status: "pre_draft"},
			inSeason("L4", "Broken"),
			inSeason("L5", "Healthy"),
		},
		details: map[string]domain.League{
			"L1": {ID: "L1", Settings: bestBall(0), RosterPositions: []string{"QB", "RB", "RB", "WR"}},
			"L2": {ID: "L2", Settings: bestBall(1), RosterPositions: []string{"QB", "RB"}},
			"L3": {ID: "L3", RosterPositions: []string{"QB"}},
			"L4": {ID: "L4", RosterPositions: []string{"QB"}},
			"L5": {ID: "L5", RosterPositions: []string{"QB"}},
		},
		rosters: map[string][]domain.Roster{
			"L1": {
				{ID: 1, OwnerID: userID, Starters: []string{"", "P1", "0", "P3"}, Players: []string{"P1", "P3", "P4"}, Reserve: []string{"P4"}},
				{ID: 2, OwnerID: "someone", Starters: []string{"P2", "None"}, Players: []string{"P2"}},
				{ID: 3, OwnerID: userID, Starters: []string{"P2"}, Players: []string{"P2", "P1"}, Taxi: []string{"P1"}},
			},
			"L2": {
				{ID: 1, OwnerID: userID, Starters: []string{"P3", "P1"}, Players: []string{"P3", "P1"}},
			},
			"L3": {
				{ID: 1, OwnerID: userID, Starters: []string{"None"}, Players: []string{"P1"}},
			},
			"L4": {
				{ID: 1, OwnerID: userID, Starters: []string{"None"}},
			},
			"L5": {
				{ID: 4, OwnerID: userID, Starters: []string{"P1"}, Players: []string{"P1", "P9"}},
			},
		},
		failRosters: map[string]bool{"L4": true},
		players: map[string]domain.Player{
			"P1": {FullName: "Healthy Back", Position: "RB", Team: "KC", Active: true},
			"P2": {FullName: "Maybe Receiver", Position: "WR", Team: "BUF", InjuryStatus: "Questionable", Active: true},
			"P3": {FullName: "Out Receiver", Position: "WR", Team: "DAL", InjuryStatus: "OUT", Active: true},
			"P4": {FullName: "Reserve Back", Position: "RB", InjuryStatus: "IR", Active: true},
		},
	}
}

func newTestService(t *testing.T, up *fakeUpstream) (*Service, *store.MemoryCache) {
	t.Helper()
	st, err := store.NewBoltCatalogStore("", nil)
	require.NoError(t, err)
	players := catalog.NewService(up, st, store.NewFreshness(time.UTC), nil)
	memory := store.NewMemoryCache(100, time.Minute)
	svc := NewService(up, memory, players, report.NewClassifier(config.DefaultStatusOrder, true), Options{Season: "2025", TopN: 3}, nil)
	return svc, memory
}

func TestStatusReport(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	result := svc.StatusReport(context.Background(), userID, false, false)

	require.Len(t, result, 1)
	dynasty, ok := result["L1"]
	require.True(t, ok)
	assert.Equal(t, "Dynasty", dynasty.Name)

	require.Len(t, dynasty.Issues, 3)
	assert.True(t, dynasty.Issues[0].IsEmpty)
	assert.Equal(t, []string{"QB", "RB"}, dynasty.Issues[0].Positions)
	assert.Equal(t, "OUT", dynasty.Issues[1].Status)
	assert.Equal(t, "Out Receiver", dynasty.Issues[1].Players[0].Name)
	assert.Equal(t, "Questionable", dynasty.Issues[2].Status)
	assert.Equal(t, 4, dynasty.TotalIssues)
}

func TestStatusReportIncludesBestBall(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	result := svc.StatusReport(context.Background(), userID, false, true)

	require.Contains(t, result, "L2")
	assert.Equal(t, 1, result["L2"].TotalIssues)
	assert.NotContains(t, result, "L3")
	assert.NotContains(t, result, "L4")
	assert.NotContains(t, result, "L5")
}

func TestStatusReportMissingBestBallFlagIsRegular(t *testing.T) {
	up := fixture()
	up.details["L5"] = domain.League{ID: "L5", RosterPositions: []string{"QB", "RB"}}
	up.rosters["L5"] = []domain.Roster{{ID: 4, OwnerID: userID, Starters: []string{"P1", "None"}}}
	svc, _ := newTestService(t, up)

	result := svc.StatusReport(context.Background(), userID, false, false)
	require.Contains(t, result, "L5")
	assert.Equal(t, []string{"RB"}, result["L5"].Issues[0].Positions)
}

func TestStatusReportIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, fixture())
	ctx := context.Background()

	first, err := json.Marshal(svc.StatusReport(ctx, userID, false, true))
	require.NoError(t, err)
	second, err := json.Marshal(svc.StatusReport(ctx, userID, false, true))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestStatusReportUsesMemoryTier(t *testing.T) {
	up := fixture()
	svc, memory := newTestService(t, up)
	ctx := context.Background()

	svc.StatusReport(ctx, userID, false, false)
	svc.StatusReport(ctx, userID, false, false)
	assert.Equal(t, 1, up.called("leagues"))
	assert.Equal(t, 1, up.called("rosters:L1"))
	assert.Equal(t, 2, up.called("rosters:L4"), "failed fetches are not cached")
	assert.Positive(t, memory.Len())

	svc.StatusReport(ctx, userID, true, false)
	assert.Equal(t, 2, up.called("leagues"))
	assert.Equal(t, 2, up.called("rosters:L1"))
}

func TestStatusReportEmptyWhenNothingOwned(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	result := svc.StatusReport(context.Background(), "stranger", false, true)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestRosterPosition(t *testing.T) {
	svc, _ := newTestService(t, fixture())
	ctx := context.Background()

	roster := domain.Roster{
		Starters: []string{"P1", "P2", "P3", "P4", "P5"},
		Players:  []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"},
		Reserve:  []string{"P3", "P6"},
		Taxi:     []string{"P7"},
	}
	assert.Equal(t, "QB", svc.RosterPosition(ctx, "P1", roster, "L1"))
	assert.Equal(t, "RB", svc.RosterPosition(ctx, "P2", roster, "L1"))
	assert.Equal(t, "IR", svc.RosterPosition(ctx, "P3", roster, "L1"))
	assert.Equal(t, "ST", svc.RosterPosition(ctx, "P5", roster, "L1"))
	assert.Equal(t, "IR", svc.RosterPosition(ctx, "P6", roster, "L1"))
	assert.Equal(t, "TS", svc.RosterPosition(ctx, "P7", roster, "L1"))
	assert.Equal(t, "BN", svc.RosterPosition(ctx, "P8", roster, "L1"))
	assert.Equal(t, "ST", svc.RosterPosition(ctx, "P1", roster, "missing"))
}

func TestTopPlayers(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	top := svc.TopPlayers(context.Background(), userID)

	require.Len(t, top, 3)
	assert.Equal(t, "P1", top[0].PlayerID)
	assert.Equal(t, "Healthy Back", top[0].Name)
	assert.Equal(t, 5, top[0].Count)
	assert.Equal(t, "Active", top[0].InjuryStatus)

	positions := make(map[string]string)
	for _, l := range top[0].Leagues {
		positions[fmt.Sprintf("%s/%d", l.LeagueID, l.RosterID)] = l.RosterPosition
	}
	assert.Equal(t, "RB", positions["L1/1"])
	assert.Equal(t, "TS", positions["L1/3"])
	assert.Equal(t, "RB", positions["L2/1"])
	assert.Equal(t, "BN", positions["L3/1"])
	assert.Equal(t, "QB", positions["L5/4"])

	assert.Equal(t, "Out Receiver", top[1].Name)
	assert.Equal(t, 2, top[1].Count)
	// ties on count are broken by name
	assert.Equal(t, "Maybe Receiver", top[2].Name)
}

func TestPlayerDetails(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	details, err := svc.PlayerDetails(context.Background(), userID, "reserve back")
	require.NoError(t, err)
	assert.Equal(t, "P4", details.PlayerID)
	assert.Equal(t, "Reserve Back", details.PlayerName)
	assert.Equal(t, "IR", details.InjuryStatus)
	require.Len(t, details.Leagues, 1)
	assert.Equal(t, "IR", details.Leagues[0].RosterPosition)
	assert.Equal(t, "Dynasty", details.Leagues[0].LeagueName)

	details, err = svc.PlayerDetails(context.Background(), userID, "Healthy Back")
	require.NoError(t, err)
	// first owned roster per league only
	assert.Len(t, details.Leagues, 4)
	assert.Equal(t, "RB", details.Leagues[0].RosterPosition)

	_, err = svc.PlayerDetails(context.Background(), userID, "Nobody Here")
	assert.True(t, errors.Is(err, domain.ErrPlayerNotFound))
}

func TestResolveUser(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	id, err := svc.ResolveUser(context.Background(), "coach")
	require.NoError(t, err)
	assert.Equal(t, userID, id)

	_, err = svc.ResolveUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

type panickingCatalog struct{}

func (panickingCatalog) Catalog(ctx context.Context) domain.Catalog {
	panic("catalog exploded")
}

func (panickingCatalog) FindByName(ctx context.Context, name string) (domain.Player, error) {
	panic("catalog exploded")
}

func TestStatusReportRecoversFromPanic(t *testing.T) {
	svc := NewService(fixture(), store.NewMemoryCache(0, 0), panickingCatalog{}, report.NewClassifier(config.DefaultStatusOrder, true), Options{Season: "2025"}, nil)

	var got map[string]domain.StatusReport
	require.NotPanics(t, func() { got = svc.StatusReport(context.Background(), userID, false, true) })
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopPlayersRecoversFromPanic(t *testing.T) {
	svc := NewService(fixture(), store.NewMemoryCache(0, 0), panickingCatalog{}, report.NewClassifier(config.DefaultStatusOrder, true), Options{Season: "2025"}, nil)

	var got []domain.UsageEntry
	require.NotPanics(t, func() { got = svc.TopPlayers(context.Background(), userID) })
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
