package db

import (
	"time"
)

type Clan struct {
	ClanID      string
	Name        string
	Tag         string
	Level       int64
	MemberCount int64
	UpdatedAt   time.Time
}

type RosterMember struct {
	PlayerID string
	Nickname string
	Active   bool
}

type Match struct {
	ID        int64
	MatchID   string
	MapName   string
	MatchType string
	CreatedAt string
	CreatedMs *int64
}

type PlayerMatchStat struct {
	ID             string
	PlayerID       string
	MatchID        string
	Dbnos          int64
	Assists        int64
	Kills          int64
	HeadshotKills  int64
	DamageDealt    float64
	Revives        int64
	TeamKills      int64
	TimeSurvived   float64
	WinPlace       int64
	MatchCreatedAt string
	MatchCreatedMs *int64
}

type LifetimeStat struct {
	PlayerID    string
	RawJson     string
	LastUpdated time.Time
}

type RecentGame struct {
	ID              string
	PlayerID        string
	MatchID         string
	LastUpdated     time.Time
	CreatedAt       string
	MapName         string
	GameMode        string
	MatchType       string
	IsCustomMatch   bool
	Dbnos           int64
	Assists         int64
	Boosts          int64
	DamageDealt     float64
	HeadshotKills   int64
	Heals           int64
	KillPlace       int64
	KillStreaks     int64
	Kills           int64
	LongestKill     float64
	Revives         int64
	RideDistance    float64
	SwimDistance    float64
	WalkDistance    float64
	RoadKills       int64
	TeamKills       int64
	TimeSurvived    float64
	VehicleDestroys int64
	WeaponsAcquired int64
	WinPlace        int64
}
