package domain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	mathutil "github.com/pkg/math"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/enum"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"github.com/stunity/backend/pkg/xredis"
)

const (
	leaderboardSnapshotSize = 200
	leaderboardBonusRank    = 10
	leaderboardBonusCoins   = 100

	leaderboardBonusSource = "leaderboard_bonus"
)

// ScoreRow is one raw scoring record before ranks are assigned. The
// input of ComputeRanks must be sorted by value descending.
type ScoreRow struct {
	UserID string
	Value  int64
}

// ComputeRanks assigns dense competition ranks: tied values share a
// rank, and the value after a tie group of size k jumps k ranks
// ("1,2,2,4").
func ComputeRanks(rows []ScoreRow) []model.LeaderboardEntry {
	result := make([]model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entry := model.LeaderboardEntry{
			Rank:   i + 1,
			UserID: row.UserID,
			Value:  row.Value,
		}

		if i > 0 && row.Value == rows[i-1].Value {
			entry.Rank = result[i-1].Rank
			entry.TiedWithPrevious = true
		}

		result = append(result, entry)
	}

	return result
}

type LeaderboardDomain interface {
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetMyRank(ctx context.Context, req *model.GetMyRankRequest) (*model.GetMyRankResponse, error)
	GetMyAllCategoryRanks(ctx context.Context, req *model.GetMyAllCategoryRanksRequest) (*model.GetMyAllCategoryRanksResponse, error)
	Reset(ctx context.Context, req *model.ResetLeaderboardRequest) (*model.ResetLeaderboardResponse, error)
}

type leaderboardDomain struct {
	userStatsRepo   repository.UserStatsRepository
	challengeRepo   repository.ChallengeRepository
	leaderboardRepo repository.LeaderboardRepository
	ledger          ledger.Ledger
	redisClient     xredis.Client
}

func NewLeaderboardDomain(
	userStatsRepo repository.UserStatsRepository,
	challengeRepo repository.ChallengeRepository,
	leaderboardRepo repository.LeaderboardRepository,
	ledger ledger.Ledger,
	redisClient xredis.Client,
) *leaderboardDomain {
	return &leaderboardDomain{
		userStatsRepo:   userStatsRepo,
		challengeRepo:   challengeRepo,
		leaderboardRepo: leaderboardRepo,
		ledger:          ledger,
		redisClient:     redisClient,
	}
}

func cacheKey(category entity.LeaderboardCategory, scope entity.LeaderboardScope, period entity.LeaderboardPeriod) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s", category, scope, period)
}

// fetchScores returns the raw scoring rows of a category sorted by
// value descending. Categories without dedicated data fall back to XP.
func (d *leaderboardDomain) fetchScores(
	ctx context.Context, category entity.LeaderboardCategory, period entity.LeaderboardPeriod,
) ([]ScoreRow, error) {
	var rows []ScoreRow
	switch category {
	case entity.LeaderboardChallengeCompletion:
		counts, err := d.challengeRepo.CompletionCountsSince(ctx, period.PeriodStart(time.Now()))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get completion counts: %v", err)
			return nil, errorx.Unknown
		}

		for _, c := range counts {
			rows = append(rows, ScoreRow{UserID: c.UserID, Value: c.Total})
		}

	case entity.LeaderboardAttendanceRate:
		streaks, err := d.userStatsRepo.GetStreaksDesc(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get attendance streaks: %v", err)
			return nil, errorx.Unknown
		}

		for _, s := range streaks {
			rows = append(rows, ScoreRow{UserID: s.UserID, Value: int64(s.CurrentStreak)})
		}

	default:
		stats, err := d.userStatsRepo.GetAllByXpDesc(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user stats: %v", err)
			return nil, errorx.Unknown
		}

		for _, s := range stats {
			rows = append(rows, ScoreRow{UserID: s.UserID, Value: s.Xp})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows, nil
}

func (d *leaderboardDomain) parse(
	req *model.GetLeaderboardRequest,
) (entity.LeaderboardCategory, entity.LeaderboardScope, entity.LeaderboardPeriod, error) {
	category, err := enum.ToEnum[entity.LeaderboardCategory](req.Category)
	if err != nil {
		return "", "", "", errorx.New(errorx.BadRequest, "Invalid category %s", req.Category)
	}

	scope := entity.LeaderboardSchoolWide
	if req.Scope != "" {
		scope, err = enum.ToEnum[entity.LeaderboardScope](req.Scope)
		if err != nil {
			return "", "", "", errorx.New(errorx.BadRequest, "Invalid scope %s", req.Scope)
		}
	}

	period := entity.LeaderboardAllTime
	if req.Period != "" {
		period, err = enum.ToEnum[entity.LeaderboardPeriod](req.Period)
		if err != nil {
			return "", "", "", errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}
	}

	return category, scope, period, nil
}

func (d *leaderboardDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	category, scope, period, err := d.parse(req)
	if err != nil {
		return nil, err
	}

	if req.Limit == 0 {
		req.Limit = xcontext.Configs(ctx).ApiServer.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > xcontext.Configs(ctx).ApiServer.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)",
			xcontext.Configs(ctx).ApiServer.MaxLimit)
	}

	// The first page with default parameters is the hot one; serve it
	// from redis when a fresh copy exists.
	cacheable := req.Cursor == "" && req.Limit == xcontext.Configs(ctx).ApiServer.DefaultLimit
	key := cacheKey(category, scope, period)
	if cacheable {
		var cached model.GetLeaderboardResponse
		if err := d.redisClient.GetObj(ctx, key, &cached); err == nil {
			cached.MyEntry = nil
			if userID := xcontext.RequestUserID(ctx); userID != "" {
				for i := range cached.Entries {
					if cached.Entries[i].UserID == userID {
						cached.MyEntry = &cached.Entries[i]
						break
					}
				}
			}

			return &cached, nil
		}
	}

	rows, err := d.fetchScores(ctx, category, period)
	if err != nil {
		return nil, err
	}

	ranked := ComputeRanks(rows)

	begin := 0
	if req.Cursor != "" {
		for i := range ranked {
			if ranked[i].UserID == req.Cursor {
				begin = i + 1
				break
			}
		}
	}

	end := mathutil.MinInt(begin+req.Limit, len(ranked))

	resp := &model.GetLeaderboardResponse{Entries: ranked[begin:end]}
	if end < len(ranked) && end > begin {
		resp.NextCursor = ranked[end-1].UserID
	}

	if userID := xcontext.RequestUserID(ctx); userID != "" {
		for i := range ranked {
			if ranked[i].UserID == userID {
				resp.MyEntry = &ranked[i]
				break
			}
		}
	}

	if cacheable {
		err := d.redisClient.SetObj(ctx, key, resp, xcontext.Configs(ctx).Leaderboard.CacheTTL)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache leaderboard page: %v", err)
		}
	}

	return resp, nil
}

func (d *leaderboardDomain) GetMyRank(
	ctx context.Context, req *model.GetMyRankRequest,
) (*model.GetMyRankResponse, error) {
	category, err := enum.ToEnum[entity.LeaderboardCategory](req.Category)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid category %s", req.Category)
	}

	period := entity.LeaderboardAllTime
	if req.Period != "" {
		period, err = enum.ToEnum[entity.LeaderboardPeriod](req.Period)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}
	}

	entry, err := d.findEntry(ctx, category, period, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetMyRankResponse{Entry: entry}, nil
}

func (d *leaderboardDomain) findEntry(
	ctx context.Context,
	category entity.LeaderboardCategory,
	period entity.LeaderboardPeriod,
	userID string,
) (*model.LeaderboardEntry, error) {
	rows, err := d.fetchScores(ctx, category, period)
	if err != nil {
		return nil, err
	}

	ranked := ComputeRanks(rows)
	for i := range ranked {
		if ranked[i].UserID == userID {
			return &ranked[i], nil
		}
	}

	return nil, nil
}

func (d *leaderboardDomain) GetMyAllCategoryRanks(
	ctx context.Context, req *model.GetMyAllCategoryRanksRequest,
) (*model.GetMyAllCategoryRanksResponse, error) {
	period := entity.LeaderboardAllTime
	if req.Period != "" {
		var err error
		period, err = enum.ToEnum[entity.LeaderboardPeriod](req.Period)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}
	}

	userID := xcontext.RequestUserID(ctx)
	ranks := make([]model.CategoryRank, 0, len(entity.LeaderboardCategoryList))
	for _, category := range entity.LeaderboardCategoryList {
		entry, err := d.findEntry(ctx, category, period, userID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot rank category %s: %v", category, err)
			continue
		}

		rank := model.CategoryRank{Category: string(category)}
		if entry != nil {
			rank.Rank = entry.Rank
			rank.Value = entry.Value
		}

		ranks = append(ranks, rank)
	}

	return &model.GetMyAllCategoryRanksResponse{Ranks: ranks}, nil
}

// Reset archives the current top entries into an immutable snapshot,
// pays the top-ten bonus, and drops the cached pages of the category.
func (d *leaderboardDomain) Reset(
	ctx context.Context, req *model.ResetLeaderboardRequest,
) (*model.ResetLeaderboardResponse, error) {
	category, scope, period, err := d.parse(&model.GetLeaderboardRequest{
		Category: req.Category,
		Scope:    req.Scope,
		Period:   req.Period,
	})
	if err != nil {
		return nil, err
	}

	rows, err := d.fetchScores(ctx, category, period)
	if err != nil {
		return nil, err
	}

	ranked := ComputeRanks(rows)
	if len(ranked) > leaderboardSnapshotSize {
		ranked = ranked[:leaderboardSnapshotSize]
	}

	entries := make([]entity.SnapshotEntry, 0, len(ranked))
	for _, e := range ranked {
		entries = append(entries, entity.SnapshotEntry{
			Rank:   e.Rank,
			UserID: e.UserID,
			Value:  e.Value,
		})
	}

	snapshot := &entity.LeaderboardSnapshot{
		Base:        entity.Base{ID: uuid.NewString()},
		Category:    category,
		Scope:       scope,
		Period:      period,
		PeriodStart: period.PeriodStart(time.Now()),
		Entries:     entries,
	}

	if err := d.leaderboardRepo.CreateSnapshot(ctx, snapshot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create leaderboard snapshot: %v", err)
		return nil, errorx.Unknown
	}

	rewarded := 0
	for _, e := range ranked {
		if e.Rank > leaderboardBonusRank {
			break
		}

		_, err := d.ledger.Credit(ctx, ledger.TransactionInput{
			UserID:   e.UserID,
			Amount:   leaderboardBonusCoins,
			Source:   leaderboardBonusSource,
			SourceID: snapshot.ID,
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot pay leaderboard bonus to %s: %v", e.UserID, err)
			continue
		}

		rewarded++
	}

	pattern := fmt.Sprintf("leaderboard:%s:*", category)
	keys, err := d.redisClient.Keys(ctx, pattern)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot list cached leaderboard pages: %v", err)
	} else if len(keys) > 0 {
		if err := d.redisClient.Del(ctx, keys...); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot invalidate leaderboard cache: %v", err)
		}
	}

	return &model.ResetLeaderboardResponse{
		SnapshotID: snapshot.ID,
		Entries:    len(entries),
		Rewarded:   rewarded,
	}, nil
}
