package league

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/report"
	"golang.org/x/sync/errgroup"
)

const defaultTopN = 6

// PlayerCatalog is the part of the catalog loader the aggregator reads.
type PlayerCatalog interface {
	Catalog(ctx context.Context) domain.Catalog
	FindByName(ctx context.Context, name string) (domain.Player, error)
}

// Options holds the aggregator's report settings
type Options struct {
	Season string
	TopN   int
}

// Service joins leagues, settings, rosters and the player catalog into
// per-user reports. League collections are cached in the memory tier;
// failed fetches are never cached.
type Service struct {
	upstream   domain.Upstream
	memory     domain.MemoryTier
	players    PlayerCatalog
	classifier *report.Classifier
	season     string
	topN       int
	logger     *slog.Logger
}

// NewService creates a league aggregator.
func NewService(
	upstream domain.Upstream,
	memory domain.MemoryTier,
	players PlayerCatalog,
	classifier *report.Classifier,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	return &Service{
		upstream:   upstream,
		memory:     memory,
		players:    players,
		classifier: classifier,
		season:     opts.Season,
		topN:       opts.TopN,
		logger:     logger,
	}
}

// ResolveUser looks up the user ID for a handle.
func (s *Service) ResolveUser(ctx context.Context, handle string) (string, error) {
	user, err := s.upstream.GetUser(ctx, handle)
	if err != nil {
		s.logger.Warn("user lookup failed", "handle", handle, "error", err)
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, handle)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, handle)
	}
	return user.ID, nil
}

// LeaguesForUser returns the user's leagues for the configured season.
func (s *Service) LeaguesForUser(ctx context.Context, userID string) ([]domain.League, error) {
	key := domain.LeaguesKey(userID, s.season)
	if cached, ok := s.memory.Get(key); ok {
		s.logger.Debug("cache hit", "key", key.String())
		return cached.([]domain.League), nil
	}

	leagues, err := s.upstream.GetLeagues(ctx, userID, s.season)
	if err != nil {
		return nil, err
	}
	s.memory.Add(key, leagues)
	s.logger.Info("loaded leagues", "userID", userID, "count", len(leagues))
	return leagues, nil
}

// Rosters returns every roster of a league.
func (s *Service) Rosters(ctx context.Context, leagueID string) ([]domain.Roster, error) {
	key := domain.RostersKey(leagueID)
	if cached, ok := s.memory.Get(key); ok {
		s.logger.Debug("cache hit", "key", key.String())
		return cached.([]domain.Roster), nil
	}

	rosters, err := s.upstream.GetRosters(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	s.memory.Add(key, rosters)
	return rosters, nil
}

// Settings returns the league document holding the slot layout and best-ball flag.
func (s *Service) Settings(ctx context.Context, leagueID string) (domain.League, error) {
	key := domain.SettingsKey(leagueID)
	if cached, ok := s.memory.Get(key); ok {
		s.logger.Debug("cache hit", "key", key.String())
		return cached.(domain.League), nil
	}

	league, err := s.upstream.GetLeague(ctx, leagueID)
	if err != nil {
		return domain.League{}, err
	}
	s.memory.Add(key, league)
	return league, nil
}

// leagueData fetches settings and rosters of one league concurrently.
func (s *Service) leagueData(ctx context.Context, leagueID string) (domain.League, []domain.Roster, error) {
	var (
		settings domain.League
		rosters  []domain.Roster
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = s.Settings(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		rosters, err = s.Rosters(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.League{}, nil, err
	}
	return settings, rosters, nil
}

// StatusReport builds the lineup problem report of every in-season league
// where the user has a roster with issues, keyed by league ID.
// Leagues whose settings or rosters are unavailable are left out; the result is never nil.
func (s *Service) StatusReport(ctx context.Context, userID string, forceRefresh, includeBestBall bool) (result map[string]domain.StatusReport) {
	result = make(map[string]domain.StatusReport)
	defer s.recoverTo("status report", userID, func() { result = make(map[string]domain.StatusReport) })

	if forceRefresh {
		s.memory.Purge()
		s.logger.Info("purged league cache", "userID", userID)
	}

	leagues, err := s.LeaguesForUser(ctx, userID)
	if err != nil {
		s.logger.Warn("leagues unavailable", "userID", userID, "error", err)
		return result
	}
	players := s.players.Catalog(ctx)

	for _, league := range leagues {
		settings, rosters, err := s.leagueData(ctx, league.ID)
		if err != nil {
			s.logger.Warn("skipping league", "leagueID", league.ID, "error", err)
			continue
		}
		if !league.InSeason() {
			continue
		}
		if settings.IsBestBall() && !includeBestBall {
			continue
		}

		var issues []domain.IssueGroup
		for _, roster := range rosters {
			if !roster.OwnedBy(userID) {
				continue
			}
			issues = append(issues, s.classifier.Classify(roster.Starters, settings.RosterPositions, players)...)
		}
		if len(issues) == 0 {
			continue
		}
		result[league.ID] = domain.StatusReport{
			Name:        league.Name,
			Issues:      issues,
			TotalIssues: report.TotalIssues(issues),
		}
	}

	s.logger.Info("built status report", "userID", userID, "leagues", len(result))
	return result
}

// RosterPosition classifies where playerID sits on roster: reserve "IR", taxi "TS",
// the slot label when starting ("ST" past the known layout), otherwise bench "BN".
func (s *Service) RosterPosition(ctx context.Context, playerID string, roster domain.Roster, leagueID string) string {
	switch {
	case roster.InReserve(playerID):
		return "IR"
	case roster.InTaxi(playerID):
		return "TS"
	}

	idx := roster.StarterIndex(playerID)
	if idx < 0 {
		return "BN"
	}
	settings, err := s.Settings(ctx, leagueID)
	if err != nil {
		return "ST"
	}
	if label, ok := settings.SlotLabel(idx); ok {
		return label
	}
	return "ST"
}

// recoverTo must be deferred directly; it logs a panic and resets the named result.
func (s *Service) recoverTo(op, userID string, reset func()) {
	if r := recover(); r != nil {
		s.logger.Error(op+" failed", "userID", userID, "panic", r, "stack", string(debug.Stack()))
		reset()
	}
}
