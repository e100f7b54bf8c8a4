package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	weightDBNOs        = 0.08
	weightAssists      = 0.08
	weightKills        = 0.30
	weightHeadshots    = 0.06
	weightDamage       = 0.20
	weightRevives      = 0.05
	weightTimeSurvived = 0.10
	weightWinPlace     = 0.13
	teamKillPenalty    = 0.25

	// matches needed for full reliability
	reliabilityMatches = 10
	epsilon            = 1e-9
)

type RankingService struct {
	matches *repository.MatchRepository
	roster  *repository.RosterRepository
	logger  zerolog.Logger
}

func NewRankingService(matches *repository.MatchRepository, roster *repository.RosterRepository, logger zerolog.Logger) *RankingService {
	return &RankingService{matches: matches, roster: roster, logger: logger}
}

// ComputeRanking scores every player with stats in [start, end) and every
// active roster member, best first. Nil bounds are open.
func (s *RankingService) ComputeRanking(ctx context.Context, start, end *time.Time) ([]domain.RankingRow, error) {
	stats, err := s.matches.ListByTimeWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	members, err := s.roster.ActiveMembers(ctx)
	if err != nil {
		return nil, err
	}

	rows := Rank(stats, members)
	s.logger.Debug().Int("stats", len(stats)).Int("rows", len(rows)).Msg("computed ranking")
	return rows, nil
}

// Rank is the pure scoring step behind ComputeRanking.
func Rank(stats []domain.PlayerMatchStat, members []domain.RosterMember) []domain.RankingRow {
	nicknames := make(map[string]string, len(members))
	for _, m := range members {
		nicknames[strings.ToLower(m.PlayerID)] = m.Nickname
	}

	rows := aggregate(stats)
	score(rows)

	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		key := strings.ToLower(rows[i].PlayerID)
		seen[key] = struct{}{}
		if nick, ok := nicknames[key]; ok {
			rows[i].Nickname = nick
		}
	}

	for _, m := range members {
		key := strings.ToLower(m.PlayerID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, domain.RankingRow{PlayerID: m.PlayerID, Nickname: m.Nickname})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.MatchesCount != b.MatchesCount {
			return a.MatchesCount > b.MatchesCount
		}
		return a.TotalKills > b.TotalKills
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func aggregate(stats []domain.PlayerMatchStat) []domain.RankingRow {
	index := make(map[string]int)
	var rows []domain.RankingRow
	winPlaceSum := make(map[int]float64)

	for _, st := range stats {
		key := strings.ToLower(st.PlayerID)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, domain.RankingRow{PlayerID: st.PlayerID})
		}

		r := &rows[i]
		r.MatchesCount++
		r.TotalDBNOs += st.DBNOs
		r.TotalAssists += st.Assists
		r.TotalKills += st.Kills
		r.TotalHeadshots += st.HeadshotKills
		r.TotalDamageDealt += st.DamageDealt
		r.TotalRevives += st.Revives
		r.TotalTeamKills += st.TeamKills
		r.TotalTimeSurvived += st.TimeSurvived
		winPlaceSum[i] += float64(st.WinPlace)
	}

	for i := range rows {
		r := &rows[i]
		n := float64(r.MatchesCount)
		r.AvgDBNOs = float64(r.TotalDBNOs) / n
		r.AvgAssists = float64(r.TotalAssists) / n
		r.AvgKills = float64(r.TotalKills) / n
		r.AvgHeadshots = float64(r.TotalHeadshots) / n
		r.AvgDamageDealt = r.TotalDamageDealt / n
		r.AvgRevives = float64(r.TotalRevives) / n
		r.AvgTeamKills = float64(r.TotalTeamKills) / n
		r.AvgTimeSurvived = r.TotalTimeSurvived / n
		r.AverageWinPlace = winPlaceSum[i] / n
	}
	return rows
}

func score(rows []domain.RankingRow) {
	if len(rows) == 0 {
		return
	}

	var maxDBNOs, maxAssists, maxKills, maxHeadshots, maxDamage, maxRevives, maxTime, maxTeamKills float64
	minWin, maxWin := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		maxDBNOs = math.Max(maxDBNOs, r.AvgDBNOs)
		maxAssists = math.Max(maxAssists, r.AvgAssists)
		maxKills = math.Max(maxKills, r.AvgKills)
		maxHeadshots = math.Max(maxHeadshots, r.AvgHeadshots)
		maxDamage = math.Max(maxDamage, r.AvgDamageDealt)
		maxRevives = math.Max(maxRevives, r.AvgRevives)
		maxTime = math.Max(maxTime, r.AvgTimeSurvived)
		maxTeamKills = math.Max(maxTeamKills, r.AvgTeamKills)
		minWin = math.Min(minWin, r.AverageWinPlace)
		maxWin = math.Max(maxWin, r.AverageWinPlace)
	}

	for i := range rows {
		r := &rows[i]

		positive := weightDBNOs*normalize(r.AvgDBNOs, maxDBNOs) +
			weightAssists*normalize(r.AvgAssists, maxAssists) +
			weightKills*normalize(r.AvgKills, maxKills) +
			weightHeadshots*normalize(r.AvgHeadshots, maxHeadshots) +
			weightDamage*normalize(r.AvgDamageDealt, maxDamage) +
			weightRevives*normalize(r.AvgRevives, maxRevives) +
			weightTimeSurvived*normalize(r.AvgTimeSurvived, maxTime) +
			weightWinPlace*normalizeInverse(r.AverageWinPlace, minWin, maxWin)

		penalty := teamKillPenalty * normalize(r.AvgTeamKills, maxTeamKills)
		base := clamp01(positive - penalty)

		r.TotalPoints = roundHalfAway(10*base*reliability(r.MatchesCount), 2)
	}
}

func normalize(v, max float64) float64 {
	if max <= epsilon {
		return 0
	}
	return clamp01(v / max)
}

// normalizeInverse maps the best (lowest) win place to 1 and the worst to 0.
func normalizeInverse(v, min, max float64) float64 {
	if math.Abs(max-min) < epsilon {
		return 0
	}
	return clamp01((max - v) / (max - min))
}

func reliability(matches int) float64 {
	return math.Min(1, math.Log(float64(matches)+1)/math.Log(reliabilityMatches+1))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// roundHalfAway rounds the value as it reads at 15 significant digits, so a
// score like 0.125 that the float math lands a hair below still goes up.
func roundHalfAway(v float64, places int32) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'g', 15, 64))
	if err != nil {
		return v
	}
	return d.Round(places).InexactFloat64()
}
