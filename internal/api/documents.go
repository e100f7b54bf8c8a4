package api

import (
	"encoding/json"
	"strings"
)

type ClanDocument struct {
	Data struct {
		Type       string          `json:"type"`
		ID         string          `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	} `json:"data"`
}

type ClanInfo struct {
	Name        string
	Tag         string
	Level       int
	MemberCount int
}

// Info reads clan attributes. Missing fields keep the values from fallback.
func (d *ClanDocument) Info(fallback ClanInfo) (ClanInfo, bool) {
	attrs := ParseFields(d.Data.Attributes)
	if attrs == nil {
		return fallback, false
	}

	info := fallback
	if v, ok := attrs.String("clanName"); ok {
		info.Name = v
	}
	if v, ok := attrs.String("clanTag"); ok {
		info.Tag = v
	}
	if v, ok := attrs.Int("clanLevel"); ok {
		info.Level = v
	}
	if v, ok := attrs.Int("clanMemberCount"); ok {
		info.MemberCount = v
	}
	return info, true
}

type PlayerDocument struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
		Relationships struct {
			Matches struct {
				Data []ResourceRef `json:"data"`
			} `json:"matches"`
		} `json:"relationships"`
	} `json:"data"`
}

type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// MatchIDs lists referenced matches, newest first as the provider returns them.
func (d *PlayerDocument) MatchIDs() []string {
	refs := d.Data.Relationships.Matches.Data
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

type MatchDocument struct {
	Data struct {
		Type       string          `json:"type"`
		ID         string          `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	} `json:"data"`
	Included []IncludedResource `json:"included"`
}

type IncludedResource struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

type MatchInfo struct {
	MatchID       string
	MapName       string
	MatchType     string
	GameMode      string
	CreatedAt     string
	IsCustomMatch bool
}

// Excluded reports match types that never count towards stats.
func (m MatchInfo) Excluded() bool {
	return strings.EqualFold(m.MatchType, "arcade") || strings.EqualFold(m.MatchType, "custom")
}

// Info reads the match attributes. ok is false when data.attributes is
// missing or not an object.
func (d *MatchDocument) Info() (MatchInfo, bool) {
	attrs := ParseFields(d.Data.Attributes)
	if attrs == nil {
		return MatchInfo{MatchID: d.Data.ID}, false
	}
	isCustom, _ := attrs.Bool("isCustomMatch")
	return MatchInfo{
		MatchID:       d.Data.ID,
		MapName:       attrs.StringOrEmpty("mapName"),
		MatchType:     attrs.StringOrEmpty("matchType"),
		GameMode:      attrs.StringOrEmpty("gameMode"),
		CreatedAt:     attrs.StringOrEmpty("createdAt"),
		IsCustomMatch: isCustom,
	}, true
}

type ParticipantStats struct {
	PlayerID        string
	Name            string
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

// Participants decodes every participant block. Fields that are missing or
// of the wrong type read as zero; blocks without a player id are dropped.
func (d *MatchDocument) Participants() []ParticipantStats {
	var out []ParticipantStats
	for _, inc := range d.Included {
		if inc.Type != "participant" {
			continue
		}
		stats := ParseFields(inc.Attributes).Object("stats")
		playerID, ok := stats.String("playerId")
		if !ok || playerID == "" {
			continue
		}
		out = append(out, ParticipantStats{
			PlayerID:        playerID,
			Name:            stats.StringOrEmpty("name"),
			DBNOs:           stats.IntOrZero("DBNOs"),
			Assists:         stats.IntOrZero("assists"),
			Boosts:          stats.IntOrZero("boosts"),
			DamageDealt:     stats.FloatOrZero("damageDealt"),
			HeadshotKills:   stats.IntOrZero("headshotKills"),
			Heals:           stats.IntOrZero("heals"),
			KillPlace:       stats.IntOrZero("killPlace"),
			KillStreaks:     stats.IntOrZero("killStreaks"),
			Kills:           stats.IntOrZero("kills"),
			LongestKill:     stats.FloatOrZero("longestKill"),
			Revives:         stats.IntOrZero("revives"),
			RideDistance:    stats.FloatOrZero("rideDistance"),
			SwimDistance:    stats.FloatOrZero("swimDistance"),
			WalkDistance:    stats.FloatOrZero("walkDistance"),
			RoadKills:       stats.IntOrZero("roadKills"),
			TeamKills:       stats.IntOrZero("teamKills"),
			TimeSurvived:    stats.FloatOrZero("timeSurvived"),
			VehicleDestroys: stats.IntOrZero("vehicleDestroys"),
			WeaponsAcquired: stats.IntOrZero("weaponsAcquired"),
			WinPlace:        stats.IntOrZero("winPlace"),
		})
	}
	return out
}

// Participant finds a single player's block, matching ids case-insensitively.
func (d *MatchDocument) Participant(playerID string) (ParticipantStats, bool) {
	for _, p := range d.Participants() {
		if strings.EqualFold(p.PlayerID, playerID) {
			return p, true
		}
	}
	return ParticipantStats{}, false
}
