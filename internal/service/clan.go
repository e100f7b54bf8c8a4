package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clan-tracker/internal/api"
	"clan-tracker/internal/config"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"
	"clan-tracker/internal/timeutil"

	"github.com/rs/zerolog"
)

type ClanService struct {
	pubg   *api.PubgClient
	repo   *repository.ClanRepository
	clanID string
	logger zerolog.Logger
	now    func() time.Time
}

func NewClanService(cfg *config.Config, pubg *api.PubgClient, repo *repository.ClanRepository, logger zerolog.Logger) *ClanService {
	return &ClanService{pubg: pubg, repo: repo, clanID: cfg.ClanID, logger: logger, now: time.Now}
}

// GetOrUpdate refreshes the clan snapshot once per clan-calendar day.
func (s *ClanService) GetOrUpdate(ctx context.Context) (*domain.Clan, error) {
	if s.clanID == "" {
		return nil, fmt.Errorf("%w: clan id not configured", ErrNoData)
	}

	now := s.now()

	stored, err := s.repo.Get(ctx, s.clanID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read clan: %w", err)
	}

	if stored != nil && timeutil.SameDay(stored.UpdatedAt, now) {
		return stored, nil
	}

	doc, err := s.pubg.GetClan(ctx, s.clanID)
	if err != nil {
		if isCancellation(ctx, err) {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("clan_id", s.clanID).Msg("clan refresh failed")
		if stored != nil {
			return stored, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	var fallback api.ClanInfo
	if stored != nil {
		fallback = api.ClanInfo{Name: stored.Name, Tag: stored.Tag, Level: stored.Level, MemberCount: stored.MemberCount}
	}

	info, ok := doc.Info(fallback)
	if !ok {
		s.logger.Warn().Str("clan_id", s.clanID).Msg("clan response did not contain data.attributes")
		if stored != nil {
			return stored, nil
		}
		return nil, ErrNoData
	}

	clan := &domain.Clan{
		ClanID:      s.clanID,
		Name:        info.Name,
		Tag:         info.Tag,
		Level:       info.Level,
		MemberCount: info.MemberCount,
		UpdatedAt:   now.UTC(),
	}
	if err := s.repo.Upsert(ctx, clan); err != nil {
		s.logger.Error().Err(err).Str("clan_id", s.clanID).Msg("failed to store clan")
	} else {
		s.logger.Info().Str("clan_id", s.clanID).Msg("clan updated")
	}
	return clan, nil
}
