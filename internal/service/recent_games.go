package service

import (
	"context"
	"time"

	"clan-tracker/internal/api"
	"clan-tracker/internal/constants"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type RecentGamesService struct {
	pubg   *api.PubgClient
	repo   *repository.RecentGameRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewRecentGamesService(pubg *api.PubgClient, repo *repository.RecentGameRepository, logger zerolog.Logger) *RecentGamesService {
	return &RecentGamesService{pubg: pubg, repo: repo, logger: logger, now: time.Now}
}

// GetOrRefresh returns up to RecentGamesLimit games, newest first. The stored
// batch is served while its newest entry is younger than RecentGamesTTL.
// Every refresh stamps the whole retained batch with one timestamp, so a
// refresh that finds nothing new still resets the TTL.
func (s *RecentGamesService) GetOrRefresh(ctx context.Context, playerID string) ([]domain.RecentGame, error) {
	now := s.now().UTC()

	stored, err := s.repo.ListLatest(ctx, playerID, constants.RecentGamesLimit)
	if err != nil {
		return nil, err
	}

	if len(stored) > 0 && now.Sub(stored[0].LastUpdated) < constants.RecentGamesTTL {
		s.logger.Debug().Str("player_id", playerID).Int("games", len(stored)).Msg("returning cached recent games")
		return stored, nil
	}

	doc, err := s.pubg.GetPlayer(ctx, playerID)
	if err != nil {
		if isCancellation(ctx, err) {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("player_id", playerID).Msg("recent games refresh failed, serving stored games")
		return stored, nil
	}

	matchIDs := doc.MatchIDs()
	if len(matchIDs) > constants.RecentGamesLimit {
		matchIDs = matchIDs[:constants.RecentGamesLimit]
	}

	storedByMatch := make(map[string]string, len(stored))
	for _, g := range stored {
		storedByMatch[g.MatchID] = g.ID
	}

	var (
		inserts  []domain.RecentGame
		touchIDs []string
	)
	for _, matchID := range matchIDs {
		if id, ok := storedByMatch[matchID]; ok {
			touchIDs = append(touchIDs, id)
			continue
		}

		exists, err := s.repo.ExistsForPlayer(ctx, playerID, matchID)
		if err != nil {
			if isCancellation(ctx, err) {
				return nil, ctx.Err()
			}
			s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to check recent game")
			continue
		}
		if exists {
			continue
		}

		game, err := s.buildGame(ctx, playerID, matchID)
		if err != nil {
			if isCancellation(ctx, err) {
				return nil, ctx.Err()
			}
			s.logger.Warn().Err(err).Str("player_id", playerID).Str("match_id", matchID).Msg("skipping recent game")
			continue
		}
		inserts = append(inserts, game)
	}

	if err := s.repo.SaveBatch(ctx, inserts, touchIDs, now); err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to store recent games")
		return stored, nil
	}

	s.logger.Info().Str("player_id", playerID).Int("inserted", len(inserts)).Msg("recent games refreshed")
	return s.repo.ListLatest(ctx, playerID, constants.RecentGamesLimit)
}

func (s *RecentGamesService) buildGame(ctx context.Context, playerID, matchID string) (domain.RecentGame, error) {
	doc, err := s.pubg.GetMatch(ctx, matchID)
	if err != nil {
		return domain.RecentGame{}, err
	}

	info, _ := doc.Info()
	game := domain.RecentGame{
		PlayerID:      playerID,
		MatchID:       matchID,
		CreatedAt:     info.CreatedAt,
		MapName:       info.MapName,
		GameMode:      info.GameMode,
		MatchType:     info.MatchType,
		IsCustomMatch: info.IsCustomMatch,
	}

	p, ok := doc.Participant(playerID)
	if !ok {
		s.logger.Debug().Str("player_id", playerID).Str("match_id", matchID).Msg("no participant block, storing metadata only")
		return game, nil
	}

	game.DBNOs = p.DBNOs
	game.Assists = p.Assists
	game.Boosts = p.Boosts
	game.DamageDealt = p.DamageDealt
	game.HeadshotKills = p.HeadshotKills
	game.Heals = p.Heals
	game.KillPlace = p.KillPlace
	game.KillStreaks = p.KillStreaks
	game.Kills = p.Kills
	game.LongestKill = p.LongestKill
	game.Revives = p.Revives
	game.RideDistance = p.RideDistance
	game.SwimDistance = p.SwimDistance
	game.WalkDistance = p.WalkDistance
	game.RoadKills = p.RoadKills
	game.TeamKills = p.TeamKills
	game.TimeSurvived = p.TimeSurvived
	game.VehicleDestroys = p.VehicleDestroys
	game.WeaponsAcquired = p.WeaponsAcquired
	game.WinPlace = p.WinPlace
	return game, nil
}
