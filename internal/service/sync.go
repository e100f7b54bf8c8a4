package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"clan-tracker/internal/api"
	"clan-tracker/internal/constants"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type SyncReport struct {
	Players         int
	PlayersFailed   int
	MatchesInserted int
	MatchesSkipped  int
	MatchesExcluded int
	MatchesFailed   int
	StatsInserted   int
	StatsFailed     int
}

type SyncService struct {
	pubg    *api.PubgClient
	matches *repository.MatchRepository
	roster  *repository.RosterRepository
	logger  zerolog.Logger

	matchDelay time.Duration
}

func NewSyncService(pubg *api.PubgClient, matches *repository.MatchRepository, roster *repository.RosterRepository, logger zerolog.Logger) *SyncService {
	return &SyncService{
		pubg:       pubg,
		matches:    matches,
		roster:     roster,
		logger:     logger,
		matchDelay: constants.MatchFetchDelay,
	}
}

// SynchronizeActive loads the active roster and synchronizes it.
func (s *SyncService) SynchronizeActive(ctx context.Context) (SyncReport, error) {
	members, err := s.roster.ActiveMembers(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	return s.Synchronize(ctx, members)
}

// Synchronize pulls every roster member's recent matches and stores the ones
// not seen before. Failures for a single player or match are logged and
// skipped; only cancellation aborts the run.
func (s *SyncService) Synchronize(ctx context.Context, roster []domain.RosterMember) (SyncReport, error) {
	var report SyncReport

	if len(roster) == 0 {
		s.logger.Info().Msg("no active roster members, nothing to synchronize")
		return report, nil
	}

	members := make(map[string]struct{}, len(roster))
	for _, m := range roster {
		members[strings.ToLower(m.PlayerID)] = struct{}{}
	}

	s.logger.Info().Int("members", len(roster)).Msg("starting synchronization")

	for _, member := range roster {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Players++

		if err := s.syncPlayer(ctx, member, members, &report); err != nil {
			if isCancellation(ctx, err) {
				s.logger.Info().Msg("synchronization cancelled")
				return report, ctx.Err()
			}
			report.PlayersFailed++
			s.logger.Error().Err(err).Str("player_id", member.PlayerID).Msg("failed to process player")
		}
	}

	s.logger.Info().
		Int("players", report.Players).
		Int("players_failed", report.PlayersFailed).
		Int("matches_inserted", report.MatchesInserted).
		Int("matches_skipped", report.MatchesSkipped).
		Int("matches_excluded", report.MatchesExcluded).
		Int("stats_inserted", report.StatsInserted).
		Msg("synchronization completed")

	return report, nil
}

func (s *SyncService) syncPlayer(ctx context.Context, member domain.RosterMember, members map[string]struct{}, report *SyncReport) error {
	doc, err := s.pubg.GetPlayer(ctx, member.PlayerID)
	if err != nil {
		return err
	}

	matchIDs := doc.MatchIDs()
	if len(matchIDs) == 0 {
		s.logger.Debug().Str("player_id", member.PlayerID).Msg("no matches for player")
		return nil
	}

	for _, matchID := range matchIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		exists, err := s.matches.Exists(ctx, matchID)
		if err != nil {
			if isCancellation(ctx, err) {
				return ctx.Err()
			}
			report.MatchesFailed++
			s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to check match")
			continue
		}
		if exists {
			report.MatchesSkipped++
			s.logger.Debug().Str("match_id", matchID).Msg("match already stored")
			continue
		}

		if err := s.syncMatch(ctx, matchID, members, report); err != nil {
			if isCancellation(ctx, err) {
				return ctx.Err()
			}
			continue
		}

		if err := sleepContext(ctx, s.matchDelay); err != nil {
			return err
		}
	}
	return nil
}

// syncMatch returns a non-nil error only when the match was not processed.
func (s *SyncService) syncMatch(ctx context.Context, matchID string, members map[string]struct{}, report *SyncReport) error {
	doc, err := s.pubg.GetMatch(ctx, matchID)
	if err != nil {
		if !isCancellation(ctx, err) {
			report.MatchesFailed++
			s.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to fetch match")
		}
		return err
	}

	info, ok := doc.Info()
	if !ok {
		report.MatchesFailed++
		s.logger.Warn().Str("match_id", matchID).Msg("match response missing data.attributes")
		return errNoAttributes
	}
	if info.Excluded() {
		report.MatchesExcluded++
		s.logger.Info().Str("match_id", matchID).Str("match_type", info.MatchType).Msg("skipping excluded match type")
		return errExcluded
	}

	match := &domain.Match{
		MatchID:   matchID,
		MapName:   info.MapName,
		MatchType: info.MatchType,
		CreatedAt: info.CreatedAt,
	}
	if err := s.matches.InsertMatch(ctx, match); err != nil {
		if !isCancellation(ctx, err) {
			report.MatchesFailed++
			s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to insert match")
		}
		return err
	}
	report.MatchesInserted++
	s.logger.Info().Str("match_id", matchID).Str("map", info.MapName).Msg("inserted match")

	for _, p := range doc.Participants() {
		if _, ok := members[strings.ToLower(p.PlayerID)]; !ok {
			continue
		}

		stat := &domain.PlayerMatchStat{
			PlayerID:       p.PlayerID,
			MatchID:        matchID,
			DBNOs:          p.DBNOs,
			Assists:        p.Assists,
			Kills:          p.Kills,
			HeadshotKills:  p.HeadshotKills,
			DamageDealt:    p.DamageDealt,
			Revives:        p.Revives,
			TeamKills:      p.TeamKills,
			TimeSurvived:   p.TimeSurvived,
			WinPlace:       p.WinPlace,
			MatchCreatedAt: info.CreatedAt,
		}
		if err := s.matches.InsertPlayerStat(ctx, stat); err != nil {
			if isCancellation(ctx, err) {
				return err
			}
			report.StatsFailed++
			s.logger.Error().Err(err).Str("player_id", p.PlayerID).Str("match_id", matchID).Msg("failed to insert player stats")
			continue
		}
		report.StatsInserted++
	}
	return nil
}

var (
	errExcluded     = errors.New("match type excluded")
	errNoAttributes = errors.New("match has no attributes")
)

func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
