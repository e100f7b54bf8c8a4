package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clan-tracker/internal/api"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"
	"clan-tracker/internal/timeutil"

	"github.com/rs/zerolog"
)

type LifetimeService struct {
	pubg   *api.PubgClient
	repo   *repository.LifetimeRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewLifetimeService(pubg *api.PubgClient, repo *repository.LifetimeRepository, logger zerolog.Logger) *LifetimeService {
	return &LifetimeService{pubg: pubg, repo: repo, logger: logger, now: time.Now}
}

// GetOrRefresh serves the cached lifetime document when it was fetched on
// the current clan-calendar day, and refetches it otherwise. A failed fetch
// falls back to the stale copy.
func (s *LifetimeService) GetOrRefresh(ctx context.Context, playerID string) (*domain.LifetimeStats, error) {
	now := s.now()

	cached, err := s.repo.Get(ctx, playerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read lifetime cache: %w", err)
	}

	if cached != nil && timeutil.SameDay(cached.LastUpdated, now) {
		s.logger.Debug().Str("player_id", playerID).Msg("returning cached lifetime stats")
		return cached, nil
	}

	raw, err := s.pubg.GetPlayerLifetime(ctx, playerID)
	if err != nil {
		if isCancellation(ctx, err) {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("player_id", playerID).Bool("has_cache", cached != nil).Msg("lifetime refresh failed")
		if cached != nil {
			return cached, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	fresh := &domain.LifetimeStats{
		PlayerID:    playerID,
		RawJSON:     string(raw),
		LastUpdated: now.UTC(),
	}
	if err := s.repo.Upsert(ctx, fresh); err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to store lifetime stats")
	}
	return fresh, nil
}
