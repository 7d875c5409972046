package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	players map[string]domain.Player
	err     error
	calls   int
}

func (f *fakeSource) GetPlayers(ctx context.Context) (map[string]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.players, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func intp(v int) *int { return &v }

func upstreamPlayers() map[string]domain.Player {
	return map[string]domain.Player{
		"1001": {FullName: "Patrick Mahomes", Position: "QB", Active: true, FantasyPositions: []string{"QB"}, DepthChartOrder: intp(1)},
		"1002": {FirstName: "Travis", LastName: "Kelce", Position: "TE", Active: true, FantasyPositions: []string{"TE"}, DepthChartOrder: intp(1)},
		"1003": {FullName: "Retired Guy", Position: "RB", Active: false, FantasyPositions: []string{"RB"}},
		"1004": {FullName: "Carson Wentz", Position: "QB", Active: true, FantasyPositions: []string{"QB"}, DepthChartOrder: intp(2)},
		"1005": {FullName: "Backup Quarterback", Position: "QB", Active: true, FantasyPositions: []string{"QB"}, Status: "Injured Reserve"},
		"1006": {FullName: "Andy Early", Position: "QB", Active: true, FantasyPositions: []string{"QB"}, DepthChartOrder: intp(1)},
	}
}

func newService(t *testing.T, src *fakeSource, c *clock) (*Service, domain.CatalogStore) {
	t.Helper()
	st, err := store.NewBoltCatalogStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	svc := NewService(src, st, store.NewFreshness(time.UTC), nil, WithClock(c.now))
	return svc, st
}

func TestCatalogMissFetchesActivePlayersAndPersists(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, st := newService(t, src, c)

	players := svc.Catalog(ctx)
	assert.Len(t, players, 5)
	assert.NotContains(t, players, "1003")
	assert.Equal(t, "1001", players["1001"].ID)

	entry, ok := st.Load(ctx)
	require.True(t, ok)
	assert.True(t, entry.WrittenAt.Equal(c.t))
	assert.Len(t, entry.Players, 5)
}

func TestCatalogHitDoesNotRefetch(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	svc.Catalog(ctx)
	c.t = c.t.Add(9 * time.Minute)
	svc.Catalog(ctx)
	assert.Equal(t, 1, src.calls)

	c.t = c.t.Add(2 * time.Minute)
	svc.Catalog(ctx)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogNightEntryServedUntilMorning(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 23, 30, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	svc.Catalog(ctx)
	c.t = time.Date(2025, 10, 6, 5, 30, 0, 0, time.UTC)
	svc.Catalog(ctx)
	assert.Equal(t, 1, src.calls)

	c.t = time.Date(2025, 10, 6, 6, 30, 0, 0, time.UTC)
	svc.Catalog(ctx)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogUnavailableLeavesPersistedEntry(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{err: fmt.Errorf("%w: /players/nfl", domain.ErrUnavailable)}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, st := newService(t, src, c)

	old := domain.Catalog{"9": {ID: "9", FullName: "Old Timer", Active: true}}
	written := c.t.Add(-time.Hour)
	require.NoError(t, st.Save(ctx, old, written))

	players := svc.Catalog(ctx)
	assert.Empty(t, players)

	entry, ok := st.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, old, entry.Players)
	assert.True(t, entry.WrittenAt.Equal(written))
}

func TestCatalogUnavailableWithoutPersistedEntry(t *testing.T) {
	src := &fakeSource{err: domain.ErrUnavailable}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, st := newService(t, src, c)

	assert.Empty(t, svc.Catalog(context.Background()))
	_, ok := st.Load(context.Background())
	assert.False(t, ok)
}

func TestRefreshForcesRefetch(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	svc.Catalog(ctx)
	players, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 5)
	assert.Equal(t, 2, src.calls)
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 7, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	info := svc.Info(ctx)
	assert.False(t, info.Cached)
	assert.True(t, info.IsMorning)

	svc.Catalog(ctx)
	c.t = c.t.Add(10 * time.Minute)
	info = svc.Info(ctx)
	assert.True(t, info.Cached)
	assert.True(t, info.Valid)
	assert.Equal(t, 3600.0, info.TTLSeconds)
	assert.True(t, info.ExpiresAt.Equal(time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC)))
	assert.Positive(t, info.SizeBytes)
}

func TestSearchOrdersByDepthChartThenName(t *testing.T) {
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	results := svc.Search(context.Background(), "", []string{"QB"})
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Andy Early", "Patrick Mahomes", "Carson Wentz", "Backup Quarterback"}, names)
	assert.Equal(t, "Injured Reserve", results[3].Status)
	assert.Equal(t, "Active", results[0].Status)
}

func TestSearchMatchesSubstringCaseInsensitive(t *testing.T) {
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	results := svc.Search(context.Background(), "  KEL ", []string{"QB", "TE"})
	require.Len(t, results, 1)
	assert.Equal(t, "Travis Kelce", results[0].Name)
	assert.Equal(t, []string{"TE"}, results[0].Positions)

	assert.Empty(t, svc.Search(context.Background(), "kelce", []string{"QB"}))
}

func TestSearchWithoutPositionsIsEmpty(t *testing.T) {
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	results := svc.Search(context.Background(), "mahomes", nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, src.calls)
}

func TestFindByName(t *testing.T) {
	src := &fakeSource{players: upstreamPlayers()}
	c := &clock{t: time.Date(2025, 10, 5, 14, 0, 0, 0, time.UTC)}
	svc, _ := newService(t, src, c)

	p, err := svc.FindByName(context.Background(), "travis kelce")
	require.NoError(t, err)
	assert.Equal(t, "1002", p.ID)

	_, err = svc.FindByName(context.Background(), "mahomes")
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"Patrick Mahomes"}, nf.Suggestions)
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "Active", FormatStatus(""))
	assert.Equal(t, "Questionable", FormatStatus("q"))
	assert.Equal(t, "Suspended", FormatStatus(" S "))
	assert.Equal(t, "PUP", FormatStatus("pup"))
	assert.Equal(t, "Out", FormatStatus("OUT"))
	assert.Equal(t, "Doubtful", FormatStatus("Doubtful"))
	assert.Equal(t, "Na", FormatStatus("NA"))
}

func TestStatusAbbr(t *testing.T) {
	assert.Equal(t, "Q", StatusAbbr("Questionable"))
	assert.Equal(t, "O", StatusAbbr("OUT"))
	assert.Equal(t, "", StatusAbbr("Active"))
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSource) GetPlayers(ctx context.Context) (map[string]domain.Player, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
	}
	<-b.release
	return upstreamPlayers(), nil
}

func TestCatalogCancelledCallerDoesNotEmptySharedFetch(t *testing.T) {
	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	st, err := store.NewBoltCatalogStore("", nil)
	require.NoError(t, err)
	svc := NewService(src, st, store.NewFreshness(time.UTC), nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	resultA := make(chan domain.Catalog, 1)
	go func() { resultA <- svc.Catalog(ctxA) }()
	<-src.entered

	resultB := make(chan domain.Catalog, 1)
	go func() { resultB <- svc.Catalog(context.Background()) }()

	cancelA()
	select {
	case players := <-resultA:
		assert.Empty(t, players)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared fetch")
	}

	close(src.release)
	select {
	case players := <-resultB:
		assert.Len(t, players, 5)
	case <-time.After(time.Second):
		t.Fatal("live caller never received the catalog")
	}

	entry, ok := st.Load(context.Background())
	require.True(t, ok)
	assert.Len(t, entry.Players, 5)
	assert.Equal(t, int32(1), src.calls.Load())
}
