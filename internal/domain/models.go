package domain

import (
	"fmt"
	"time"
)

type RosterMember struct {
	PlayerID string
	Nickname string
	Active   bool
}

type Clan struct {
	ClanID      string
	Name        string
	Tag         string
	Level       int
	MemberCount int
	UpdatedAt   time.Time
}

type Match struct {
	MatchID   string
	MapName   string
	MatchType string
	// provider format, e.g. 2025-09-06T01:02:03Z
	CreatedAt string
}

type PlayerMatchStat struct {
	ID             string
	PlayerID       string
	MatchID        string
	DBNOs          int
	Assists        int
	Kills          int
	HeadshotKills  int
	DamageDealt    float64
	Revives        int
	TeamKills      int
	TimeSurvived   float64
	WinPlace       int
	MatchCreatedAt string
}

type LifetimeStats struct {
	PlayerID    string
	RawJSON     string
	LastUpdated time.Time
}

type RecentGame struct {
	ID            string
	PlayerID      string
	MatchID       string
	LastUpdated   time.Time
	CreatedAt     string
	MapName       string
	GameMode      string
	MatchType     string
	IsCustomMatch bool

	DBNOs           int
	Assists         int
	Boosts          int
	DamageDealt     float64
	HeadshotKills   int
	Heals           int
	KillPlace       int
	KillStreaks     int
	Kills           int
	LongestKill     float64
	Revives         int
	RideDistance    float64
	SwimDistance    float64
	WalkDistance    float64
	RoadKills       int
	TeamKills       int
	TimeSurvived    float64
	VehicleDestroys int
	WeaponsAcquired int
	WinPlace        int
}

type RankingRow struct {
	Rank              int
	PlayerID          string
	Nickname          string
	MatchesCount      int
	TotalDBNOs        int
	TotalAssists      int
	TotalKills        int
	TotalHeadshots    int
	TotalDamageDealt  float64
	TotalRevives      int
	TotalTeamKills    int
	TotalTimeSurvived float64
	AvgDBNOs          float64
	AvgAssists        float64
	AvgKills          float64
	AvgHeadshots      float64
	AvgDamageDealt    float64
	AvgRevives        float64
	AvgTeamKills      float64
	AvgTimeSurvived   float64
	AverageWinPlace   float64
	TotalPoints       float64
}

// TimeSurvivedHMS renders TotalTimeSurvived as HH:mm:ss using total hours.
func (r RankingRow) TimeSurvivedHMS() string {
	return FormatSecondsHMS(r.TotalTimeSurvived)
}

func FormatSecondsHMS(seconds float64) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
