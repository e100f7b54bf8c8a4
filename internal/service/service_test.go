package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"clan-tracker/internal/api"
	"clan-tracker/internal/config"
	"clan-tracker/internal/database"
	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakePubg serves canned provider documents and counts hits per path.
type fakePubg struct {
	mu       sync.Mutex
	players  map[string][]string
	matches  map[string]string
	lifetime map[string]string
	clans    map[string]string
	down     bool
	hits     map[string]int
}

func newFakePubg() *fakePubg {
	return &fakePubg{
		players:  map[string][]string{},
		matches:  map[string]string{},
		lifetime: map[string]string{},
		clans:    map[string]string{},
		hits:     map[string]int{},
	}
}

func (f *fakePubg) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits[r.URL.Path]++
	if f.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[0] == "players" && parts[3] == "lifetime":
		if body, ok := f.lifetime[parts[1]]; ok {
			w.Write([]byte(body))
			return
		}
	case len(parts) == 2 && parts[0] == "players":
		if ids, ok := f.players[parts[1]]; ok {
			w.Write(playerDoc(parts[1], ids))
			return
		}
	case len(parts) == 2 && parts[0] == "matches":
		if body, ok := f.matches[parts[1]]; ok {
			w.Write([]byte(body))
			return
		}
	case len(parts) == 2 && parts[0] == "clans":
		if body, ok := f.clans[parts[1]]; ok {
			w.Write([]byte(body))
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"errors":[{"title":"Not Found"}]}`))
}

func (f *fakePubg) Hits(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for path, n := range f.hits {
		if strings.HasPrefix(path, prefix) {
			total += n
		}
	}
	return total
}

func (f *fakePubg) TotalHits() int {
	return f.Hits("/")
}

func (f *fakePubg) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func playerDoc(id string, matchIDs []string) []byte {
	refs := make([]map[string]string, len(matchIDs))
	for i, m := range matchIDs {
		refs[i] = map[string]string{"type": "match", "id": m}
	}
	doc := map[string]any{
		"data": map[string]any{
			"type": "player",
			"id":   id,
			"relationships": map[string]any{
				"matches": map[string]any{"data": refs},
			},
		},
	}
	b, _ := json.Marshal(doc)
	return b
}

func matchDoc(id, matchType, createdAt string, participants ...map[string]any) string {
	included := make([]map[string]any, 0, len(participants))
	for i, stats := range participants {
		included = append(included, map[string]any{
			"type":       "participant",
			"id":         id + "-p" + string(rune('a'+i)),
			"attributes": map[string]any{"stats": stats},
		})
	}
	doc := map[string]any{
		"data": map[string]any{
			"type": "match",
			"id":   id,
			"attributes": map[string]any{
				"mapName":       "Erangel_Main",
				"matchType":     matchType,
				"gameMode":      "squad-fpp",
				"createdAt":     createdAt,
				"isCustomMatch": matchType == "custom",
			},
		},
		"included": included,
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

type testClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept += d
	c.now = c.now.Add(d)
	return nil
}

func (c *testClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

type testEnv struct {
	fake    *fakePubg
	clock   *testClock
	client  *api.PubgClient
	roster  *repository.RosterRepository
	matches *repository.MatchRepository
	life    *repository.LifetimeRepository
	recent  *repository.RecentGameRepository
	clans   *repository.ClanRepository
	cfg     *config.Config
	db      *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := newFakePubg()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "clan.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	q := db.New(sqlDB)

	clock := &testClock{now: time.Date(2025, 9, 6, 2, 0, 0, 0, time.UTC)}
	limiter := api.NewRateLimiter(6*time.Second).WithClock(clock.Now, clock.Sleep)
	cfg := &config.Config{PubgAPIKey: "secret", PubgBaseURL: srv.URL, ClanID: "clan.x"}

	logger := zerolog.Nop()
	return &testEnv{
		fake:    fake,
		clock:   clock,
		client:  api.NewPubgClient(cfg, limiter, logger),
		roster:  repository.NewRosterRepository(sqlDB, q, logger),
		matches: repository.NewMatchRepository(sqlDB, q, logger),
		life:    repository.NewLifetimeRepository(sqlDB, q, logger),
		recent:  repository.NewRecentGameRepository(sqlDB, q, logger),
		clans:   repository.NewClanRepository(sqlDB, q, logger),
		cfg:     cfg,
		db:      sqlDB,
	}
}

func (e *testEnv) addMembers(t *testing.T, members ...domain.RosterMember) {
	t.Helper()
	for _, m := range members {
		require.NoError(t, e.roster.Upsert(context.Background(), m))
	}
}
