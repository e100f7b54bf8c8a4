package server

import (
	"encoding/json"
	"time"

	"clan-tracker/internal/domain"
)

type GetRankingRequest struct {
	// RFC 3339 bounds; take precedence over Range
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Range string `json:"range,omitempty"`
}

type GetRankingResponse struct {
	Label string       `json:"label"`
	Start *time.Time   `json:"start,omitempty"`
	End   *time.Time   `json:"end,omitempty"`
	Rows  []RankingRow `json:"rows"`
}

type RankingRow struct {
	Rank              int     `json:"rank"`
	PlayerID          string  `json:"playerId"`
	Nickname          string  `json:"nickname"`
	MatchesCount      int     `json:"matchesCount"`
	TotalDBNOs        int     `json:"totalDbnos"`
	TotalAssists      int     `json:"totalAssists"`
	TotalKills        int     `json:"totalKills"`
	TotalHeadshots    int     `json:"totalHeadshots"`
	TotalDamageDealt  float64 `json:"totalDamageDealt"`
	TotalRevives      int     `json:"totalRevives"`
	TotalTeamKills    int     `json:"totalTeamKills"`
	TotalTimeSurvived string  `json:"totalTimeSurvived"`
	AvgKills          float64 `json:"avgKills"`
	AvgDamageDealt    float64 `json:"avgDamageDealt"`
	AverageWinPlace   float64 `json:"averageWinPlace"`
	TotalPoints       float64 `json:"totalPoints"`
}

func toRankingRow(r domain.RankingRow) RankingRow {
	return RankingRow{
		Rank:              r.Rank,
		PlayerID:          r.PlayerID,
		Nickname:          r.Nickname,
		MatchesCount:      r.MatchesCount,
		TotalDBNOs:        r.TotalDBNOs,
		TotalAssists:      r.TotalAssists,
		TotalKills:        r.TotalKills,
		TotalHeadshots:    r.TotalHeadshots,
		TotalDamageDealt:  r.TotalDamageDealt,
		TotalRevives:      r.TotalRevives,
		TotalTeamKills:    r.TotalTeamKills,
		TotalTimeSurvived: r.TimeSurvivedHMS(),
		AvgKills:          r.AvgKills,
		AvgDamageDealt:    r.AvgDamageDealt,
		AverageWinPlace:   r.AverageWinPlace,
		TotalPoints:       r.TotalPoints,
	}
}

type PlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type GetLifetimeStatsResponse struct {
	PlayerID    string          `json:"playerId"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Stats       json.RawMessage `json:"stats"`
}

type GetRecentGamesResponse struct {
	PlayerID string       `json:"playerId"`
	Games    []RecentGame `json:"games"`
}

type RecentGame struct {
	MatchID         string  `json:"matchId"`
	CreatedAt       string  `json:"createdAt"`
	MapName         string  `json:"mapName"`
	GameMode        string  `json:"gameMode"`
	MatchType       string  `json:"matchType"`
	IsCustomMatch   bool    `json:"isCustomMatch"`
	DBNOs           int     `json:"dbnos"`
	Assists         int     `json:"assists"`
	Boosts          int     `json:"boosts"`
	DamageDealt     float64 `json:"damageDealt"`
	HeadshotKills   int     `json:"headshotKills"`
	Heals           int     `json:"heals"`
	KillPlace       int     `json:"killPlace"`
	KillStreaks     int     `json:"killStreaks"`
	Kills           int     `json:"kills"`
	LongestKill     float64 `json:"longestKill"`
	Revives         int     `json:"revives"`
	RideDistance    float64 `json:"rideDistance"`
	SwimDistance    float64 `json:"swimDistance"`
	WalkDistance    float64 `json:"walkDistance"`
	RoadKills       int     `json:"roadKills"`
	TeamKills       int     `json:"teamKills"`
	TimeSurvived    string  `json:"timeSurvived"`
	VehicleDestroys int     `json:"vehicleDestroys"`
	WeaponsAcquired int     `json:"weaponsAcquired"`
	WinPlace        int     `json:"winPlace"`
}

func toRecentGame(g domain.RecentGame) RecentGame {
	return RecentGame{
		MatchID:         g.MatchID,
		CreatedAt:       g.CreatedAt,
		MapName:         g.MapName,
		GameMode:        g.GameMode,
		MatchType:       g.MatchType,
		IsCustomMatch:   g.IsCustomMatch,
		DBNOs:           g.DBNOs,
		Assists:         g.Assists,
		Boosts:          g.Boosts,
		DamageDealt:     g.DamageDealt,
		HeadshotKills:   g.HeadshotKills,
		Heals:           g.Heals,
		KillPlace:       g.KillPlace,
		KillStreaks:     g.KillStreaks,
		Kills:           g.Kills,
		LongestKill:     g.LongestKill,
		Revives:         g.Revives,
		RideDistance:    g.RideDistance,
		SwimDistance:    g.SwimDistance,
		WalkDistance:    g.WalkDistance,
		RoadKills:       g.RoadKills,
		TeamKills:       g.TeamKills,
		TimeSurvived:    domain.FormatSecondsHMS(g.TimeSurvived),
		VehicleDestroys: g.VehicleDestroys,
		WeaponsAcquired: g.WeaponsAcquired,
		WinPlace:        g.WinPlace,
	}
}

type GetClanRequest struct{}

type GetClanResponse struct {
	ClanID      string    `json:"clanId"`
	Name        string    `json:"name"`
	Tag         string    `json:"tag"`
	Level       int       `json:"level"`
	MemberCount int       `json:"memberCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SyncNowRequest struct{}

type SyncNowResponse struct {
	Started bool `json:"started"`
}
