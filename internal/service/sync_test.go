package service

import (
	"context"
	"testing"
	"time"

	"clan-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncService(env *testEnv) *SyncService {
	svc := NewSyncService(env.client, env.matches, env.roster, zerolog.Nop())
	svc.matchDelay = 0
	return svc
}

func seedSyncFixtures(env *testEnv) {
	env.fake.players["account.a"] = []string{"m1", "m2", "m3"}
	env.fake.players["account.b"] = []string{"m1", "m4"}

	env.fake.matches["m1"] = matchDoc("m1", "official", "2025-09-05T10:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 5, "damageDealt": 500.5, "winPlace": 2},
		map[string]any{"playerId": "ACCOUNT.B", "kills": 1, "DBNOs": "oops", "winPlace": 2},
		map[string]any{"playerId": "account.stranger", "kills": 9},
	)
	env.fake.matches["m2"] = matchDoc("m2", "arcade", "2025-09-05T11:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 20})
	env.fake.matches["m3"] = matchDoc("m3", "Custom", "2025-09-05T12:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 20})
	env.fake.matches["m4"] = matchDoc("m4", "competitive", "2025-09-05T13:00:00Z",
		map[string]any{"playerId": "account.b", "kills": 3, "winPlace": 1})
}

var syncRoster = []domain.RosterMember{
	{PlayerID: "account.a", Nickname: "Alpha", Active: true},
	{PlayerID: "account.b", Nickname: "Bravo", Active: true},
}

func TestSynchronize_StoresRosterStats(t *testing.T) {
	env := newTestEnv(t)
	seedSyncFixtures(env)
	svc := newSyncService(env)

	report, err := svc.Synchronize(context.Background(), syncRoster)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Players)
	assert.Equal(t, 2, report.MatchesInserted)
	assert.Equal(t, 2, report.MatchesExcluded)
	assert.Equal(t, 1, report.MatchesSkipped)
	assert.Equal(t, 3, report.StatsInserted)

	stats, err := env.matches.ListByTimeWindow(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byKey := map[string]domain.PlayerMatchStat{}
	for _, s := range stats {
		byKey[s.PlayerID+"/"+s.MatchID] = s
	}
	a := byKey["account.a/m1"]
	assert.Equal(t, 5, a.Kills)
	assert.Equal(t, 500.5, a.DamageDealt)
	assert.Equal(t, "2025-09-05T10:00:00Z", a.MatchCreatedAt)

	b := byKey["ACCOUNT.B/m1"]
	assert.Equal(t, 1, b.Kills)
	assert.Equal(t, 0, b.DBNOs)

	_, ok := byKey["account.b/m4"]
	assert.True(t, ok)

	for _, s := range stats {
		assert.NotEqual(t, "m2", s.MatchID)
		assert.NotEqual(t, "m3", s.MatchID)
		assert.NotEqual(t, "account.stranger", s.PlayerID)
	}

	for _, id := range []string{"m2", "m3"} {
		exists, err := env.matches.Exists(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, exists, id)
	}
}

func TestSynchronize_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	seedSyncFixtures(env)
	svc := newSyncService(env)

	_, err := svc.Synchronize(context.Background(), syncRoster)
	require.NoError(t, err)
	matchFetches := env.fake.Hits("/matches/m1")

	report, err := svc.Synchronize(context.Background(), syncRoster)
	require.NoError(t, err)
	assert.Equal(t, 0, report.MatchesInserted)
	assert.Equal(t, 0, report.StatsInserted)
	assert.Equal(t, matchFetches, env.fake.Hits("/matches/m1"))

	stats, err := env.matches.ListByTimeWindow(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, stats, 3)
}

func TestSynchronize_RateLimitsPlayerLookups(t *testing.T) {
	env := newTestEnv(t)
	roster := []domain.RosterMember{
		{PlayerID: "account.a", Active: true},
		{PlayerID: "account.b", Active: true},
		{PlayerID: "account.c", Active: true},
		{PlayerID: "account.d", Active: true},
	}
	for _, m := range roster {
		env.fake.players[m.PlayerID] = nil
	}
	svc := newSyncService(env)

	_, err := svc.Synchronize(context.Background(), roster)
	require.NoError(t, err)

	assert.Equal(t, time.Duration(len(roster)-1)*6*time.Second, env.clock.Slept())
	assert.Equal(t, len(roster), env.fake.Hits("/players/"))
}

func TestSynchronize_SkipsFailingPlayer(t *testing.T) {
	env := newTestEnv(t)
	seedSyncFixtures(env)
	svc := newSyncService(env)

	roster := append([]domain.RosterMember{{PlayerID: "account.gone", Active: true}}, syncRoster...)
	report, err := svc.Synchronize(context.Background(), roster)
	require.NoError(t, err)

	assert.Equal(t, 1, report.PlayersFailed)
	assert.Equal(t, 3, report.StatsInserted)
}

func TestSynchronize_SkipsUnavailableMatch(t *testing.T) {
	env := newTestEnv(t)
	env.fake.players["account.a"] = []string{"missing", "m1"}
	env.fake.matches["m1"] = matchDoc("m1", "official", "2025-09-05T10:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 2})
	env.fake.matches["broken"] = `{"data":`
	env.fake.players["account.a"] = append(env.fake.players["account.a"], "broken")
	svc := newSyncService(env)

	report, err := svc.Synchronize(context.Background(), syncRoster[:1])
	require.NoError(t, err)
	assert.Equal(t, 2, report.MatchesFailed)
	assert.Equal(t, 1, report.MatchesInserted)
	assert.Equal(t, 1, report.StatsInserted)
}

func TestSynchronize_EmptyRoster(t *testing.T) {
	env := newTestEnv(t)
	svc := newSyncService(env)

	report, err := svc.Synchronize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Players)
	assert.Equal(t, 0, env.fake.TotalHits())
}

func TestSynchronize_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	seedSyncFixtures(env)
	svc := newSyncService(env)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Synchronize(ctx, syncRoster)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, env.fake.TotalHits())
}

func TestSynchronizeActive_UsesStoredRoster(t *testing.T) {
	env := newTestEnv(t)
	seedSyncFixtures(env)
	env.addMembers(t,
		domain.RosterMember{PlayerID: "account.a", Nickname: "Alpha", Active: true},
		domain.RosterMember{PlayerID: "account.b", Nickname: "Bravo", Active: false},
	)
	svc := newSyncService(env)

	report, err := svc.SynchronizeActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Players)
	// account.b is not active, so only account.a's row in m1 is kept
	assert.Equal(t, 1, report.StatsInserted)
}

func TestSynchronize_SkipsMatchWithoutAttributes(t *testing.T) {
	env := newTestEnv(t)
	env.fake.players["account.a"] = []string{"bare", "m1"}
	env.fake.matches["bare"] = `{"data":{"type":"match","id":"bare"},` +
		`"included":[{"type":"participant","id":"p1","attributes":{"stats":{"playerId":"account.a","kills":4}}}]}`
	env.fake.matches["m1"] = matchDoc("m1", "official", "2025-09-05T10:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 2})
	svc := newSyncService(env)

	report, err := svc.Synchronize(context.Background(), syncRoster[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchesFailed)
	assert.Equal(t, 1, report.MatchesInserted)
	assert.Equal(t, 1, report.StatsInserted)

	exists, err := env.matches.Exists(context.Background(), "bare")
	require.NoError(t, err)
	assert.False(t, exists)

	stats, err := env.matches.ListByTimeWindow(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "m1", stats[0].MatchID)
}

func TestSynchronize_FailedMatchInsertSkipsParticipants(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.db.Exec(`CREATE TRIGGER reject_m1 BEFORE INSERT ON matches
		WHEN NEW.match_id = 'm1'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	env.fake.players["account.a"] = []string{"m1", "m2"}
	env.fake.matches["m1"] = matchDoc("m1", "official", "2025-09-05T10:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 7})
	env.fake.matches["m2"] = matchDoc("m2", "official", "2025-09-05T11:00:00Z",
		map[string]any{"playerId": "account.a", "kills": 1})
	svc := newSyncService(env)

	report, err := svc.Synchronize(context.Background(), syncRoster[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchesFailed)
	assert.Equal(t, 1, report.MatchesInserted)
	assert.Equal(t, 1, report.StatsInserted)
	assert.Equal(t, 0, report.StatsFailed)

	var orphans int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM player_match_stats WHERE match_id = 'm1'`).Scan(&orphans))
	assert.Zero(t, orphans)

	stats, err := env.matches.ListByTimeWindow(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "m2", stats[0].MatchID)
}
