package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clan-tracker/internal/constants"
	"clan-tracker/internal/scheduler"
	"clan-tracker/internal/service"
	"clan-tracker/internal/timeutil"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const TrackerPath = "/clantracker.v1.ClanTracker/"

const (
	GetRankingProcedure       = TrackerPath + "GetRanking"
	GetLifetimeStatsProcedure = TrackerPath + "GetLifetimeStats"
	GetRecentGamesProcedure   = TrackerPath + "GetRecentGames"
	GetClanProcedure          = TrackerPath + "GetClan"
	SyncNowProcedure          = TrackerPath + "SyncNow"
)

type SyncTrigger interface {
	Trigger(ctx context.Context) error
}

type TrackerServer struct {
	ranking  *service.RankingService
	lifetime *service.LifetimeService
	recent   *service.RecentGamesService
	clan     *service.ClanService
	sync     SyncTrigger
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTrackerServer(
	ranking *service.RankingService,
	lifetime *service.LifetimeService,
	recent *service.RecentGamesService,
	clan *service.ClanService,
	worker *scheduler.DailyWorker,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		ranking:  ranking,
		lifetime: lifetime,
		recent:   recent,
		clan:     clan,
		sync:     worker,
		logger:   logger,
		now:      time.Now,
	}
}

// NewTrackerHandler mounts every procedure under TrackerPath.
func NewTrackerHandler(s *TrackerServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetRankingProcedure, connect.NewUnaryHandler(GetRankingProcedure, s.GetRanking, opts...))
	mux.Handle(GetLifetimeStatsProcedure, connect.NewUnaryHandler(GetLifetimeStatsProcedure, s.GetLifetimeStats, opts...))
	mux.Handle(GetRecentGamesProcedure, connect.NewUnaryHandler(GetRecentGamesProcedure, s.GetRecentGames, opts...))
	mux.Handle(GetClanProcedure, connect.NewUnaryHandler(GetClanProcedure, s.GetClan, opts...))
	mux.Handle(SyncNowProcedure, connect.NewUnaryHandler(SyncNowProcedure, s.SyncNow, opts...))
	return TrackerPath, mux
}

func (s *TrackerServer) GetRanking(ctx context.Context, req *connect.Request[GetRankingRequest]) (*connect.Response[GetRankingResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	window, err := s.resolveWindow(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	rows, err := s.ranking.ComputeRanking(ctx, window.Start, window.End)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetRankingResponse{
		Label: window.Label,
		Start: window.Start,
		End:   window.End,
		Rows:  make([]RankingRow, len(rows)),
	}
	for i, r := range rows {
		resp.Rows[i] = toRankingRow(r)
	}
	return connect.NewResponse(resp), nil
}

func (s *TrackerServer) resolveWindow(msg *GetRankingRequest) (timeutil.Window, error) {
	if msg.Start != "" || msg.End != "" {
		var w timeutil.Window
		if msg.Start != "" {
			t, err := time.Parse(time.RFC3339, msg.Start)
			if err != nil {
				return w, fmt.Errorf("invalid start: %w", err)
			}
			t = t.UTC()
			w.Start = &t
		}
		if msg.End != "" {
			t, err := time.Parse(time.RFC3339, msg.End)
			if err != nil {
				return w, fmt.Errorf("invalid end: %w", err)
			}
			t = t.UTC()
			w.End = &t
		}
		if w.Start != nil && w.End != nil && !w.Start.Before(*w.End) {
			return w, errors.New("start must be before end")
		}
		w.Label = "custom"
		return w, nil
	}

	if msg.Range == "" {
		return timeutil.RangeBounds(timeutil.RangeAll, s.now()), nil
	}

	r, ok := timeutil.ParseRange(msg.Range)
	if !ok {
		return timeutil.Window{}, fmt.Errorf("unknown range %q", msg.Range)
	}
	return timeutil.RangeBounds(r, s.now()), nil
}

func (s *TrackerServer) GetLifetimeStats(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GetLifetimeStatsResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	playerID := strings.TrimSpace(req.Msg.PlayerID)
	if playerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("playerId is required"))
	}

	stats, err := s.lifetime.GetOrRefresh(ctx, playerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetLifetimeStatsResponse{
		PlayerID:    stats.PlayerID,
		LastUpdated: stats.LastUpdated,
		Stats:       json.RawMessage(stats.RawJSON),
	}), nil
}

func (s *TrackerServer) GetRecentGames(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GetRecentGamesResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	playerID := strings.TrimSpace(req.Msg.PlayerID)
	if playerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("playerId is required"))
	}

	games, err := s.recent.GetOrRefresh(ctx, playerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetRecentGamesResponse{PlayerID: playerID, Games: make([]RecentGame, len(games))}
	for i, g := range games {
		resp.Games[i] = toRecentGame(g)
	}
	return connect.NewResponse(resp), nil
}

func (s *TrackerServer) GetClan(ctx context.Context, req *connect.Request[GetClanRequest]) (*connect.Response[GetClanResponse], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	clan, err := s.clan.GetOrUpdate(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetClanResponse{
		ClanID:      clan.ClanID,
		Name:        clan.Name,
		Tag:         clan.Tag,
		Level:       clan.Level,
		MemberCount: clan.MemberCount,
		UpdatedAt:   clan.UpdatedAt,
	}), nil
}

func (s *TrackerServer) SyncNow(ctx context.Context, req *connect.Request[SyncNowRequest]) (*connect.Response[SyncNowResponse], error) {
	if err := s.sync.Trigger(ctx); err != nil {
		return nil, toConnectError(err)
	}
	zerolog.Ctx(ctx).Info().Msg("manual sync triggered")
	return connect.NewResponse(&SyncNowResponse{Started: true}), nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, service.ErrNoData):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, scheduler.ErrLocked):
		return connect.NewError(connect.CodeAborted, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
