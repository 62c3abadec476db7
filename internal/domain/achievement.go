package domain

import (
	"context"
	"errors"
	"time"

	"github.com/stunity/backend/internal/domain/criteria"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/enum"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const achievementRewardSource = "achievement"

type AchievementDomain interface {
	GetAchievements(ctx context.Context, req *model.GetAchievementsRequest) (*model.GetAchievementsResponse, error)
	UpdateProgress(ctx context.Context, req *model.UpdateAchievementProgressRequest) (*model.UpdateAchievementProgressResponse, error)
	Unlock(ctx context.Context, req *model.UnlockAchievementRequest) (*model.UnlockAchievementResponse, error)
	Evaluate(ctx context.Context, req *model.EvaluateAchievementsRequest) (*model.EvaluateAchievementsResponse, error)
}

type achievementDomain struct {
	achievementRepo repository.AchievementRepository
	userStatsRepo   repository.UserStatsRepository
	criteriaFactory criteria.Factory
	ledger          ledger.Ledger
}

func NewAchievementDomain(
	achievementRepo repository.AchievementRepository,
	userStatsRepo repository.UserStatsRepository,
	criteriaFactory criteria.Factory,
	ledger ledger.Ledger,
) *achievementDomain {
	return &achievementDomain{
		achievementRepo: achievementRepo,
		userStatsRepo:   userStatsRepo,
		criteriaFactory: criteriaFactory,
		ledger:          ledger,
	}
}

func (d *achievementDomain) GetAchievements(
	ctx context.Context, req *model.GetAchievementsRequest,
) (*model.GetAchievementsResponse, error) {
	filter := repository.GetListAchievementFilter{ActiveOnly: true}
	if req.Category != "" {
		category, err := enum.ToEnum[entity.AchievementCategory](req.Category)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid achievement category: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid category %s", req.Category)
		}

		filter.Category = category
	}

	achievements, err := d.achievementRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievements: %v", err)
		return nil, errorx.Unknown
	}

	progressList, err := d.achievementRepo.GetProgressList(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievement progress: %v", err)
		return nil, errorx.Unknown
	}

	progressMap := map[string]*entity.UserAchievementProgress{}
	for i := range progressList {
		progressMap[progressList[i].AchievementID] = &progressList[i]
	}

	result := make([]model.Achievement, 0, len(achievements))
	for i := range achievements {
		result = append(result, convertAchievement(&achievements[i], progressMap[achievements[i].ID]))
	}

	return &model.GetAchievementsResponse{Achievements: result}, nil
}

func (d *achievementDomain) UpdateProgress(
	ctx context.Context, req *model.UpdateAchievementProgressRequest,
) (*model.UpdateAchievementProgressResponse, error) {
	if req.Progress < 0 || req.Progress > 100 {
		return nil, errorx.New(errorx.BadRequest, "Progress must be in range [0, 100]")
	}

	userID := xcontext.RequestUserID(ctx)
	achievement, err := d.achievementRepo.GetByID(ctx, req.AchievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found achievement")
		}

		xcontext.Logger(ctx).Errorf("Cannot get achievement: %v", err)
		return nil, errorx.Unknown
	}

	progress, err := d.achievementRepo.GetProgress(ctx, userID, req.AchievementID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get achievement progress: %v", err)
		return nil, errorx.Unknown
	}

	if progress != nil && progress.IsUnlocked {
		return &model.UpdateAchievementProgressResponse{
			Achievement: convertAchievement(achievement, progress),
		}, nil
	}

	if req.Progress >= 100 {
		unlocked, err := d.unlock(ctx, userID, achievement)
		if err != nil {
			return nil, err
		}

		return &model.UpdateAchievementProgressResponse{
			Achievement: convertAchievement(achievement, unlocked),
		}, nil
	}

	newProgress := &entity.UserAchievementProgress{
		UserID:        userID,
		AchievementID: req.AchievementID,
		Progress:      req.Progress,
	}

	if err := d.achievementRepo.UpsertProgress(ctx, newProgress); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert achievement progress: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateAchievementProgressResponse{
		Achievement: convertAchievement(achievement, newProgress),
	}, nil
}

func (d *achievementDomain) Unlock(
	ctx context.Context, req *model.UnlockAchievementRequest,
) (*model.UnlockAchievementResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	achievement, err := d.achievementRepo.GetByID(ctx, req.AchievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found achievement")
		}

		xcontext.Logger(ctx).Errorf("Cannot get achievement: %v", err)
		return nil, errorx.Unknown
	}

	progress, err := d.unlock(ctx, userID, achievement)
	if err != nil {
		return nil, err
	}

	return &model.UnlockAchievementResponse{
		Achievement: convertAchievement(achievement, progress),
	}, nil
}

// unlock grants the achievement rewards exactly once. A second call for
// an already unlocked achievement returns the existing record untouched.
func (d *achievementDomain) unlock(
	ctx context.Context, userID string, achievement *entity.Achievement,
) (*entity.UserAchievementProgress, error) {
	existing, err := d.achievementRepo.GetProgress(ctx, userID, achievement.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get achievement progress: %v", err)
		return nil, errorx.Unknown
	}

	if existing != nil && existing.IsUnlocked {
		return existing, nil
	}

	progress := &entity.UserAchievementProgress{
		UserID:        userID,
		AchievementID: achievement.ID,
		Progress:      100,
		IsUnlocked:    true,
		UnlockedAt:    time.Now(),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.achievementRepo.MarkUnlocked(ctx, progress); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark achievement as unlocked: %v", err)
		return nil, errorx.Unknown
	}

	if achievement.CoinReward > 0 {
		_, err := d.ledger.Credit(ctx, ledger.TransactionInput{
			UserID:   userID,
			Amount:   achievement.CoinReward,
			Source:   achievementRewardSource,
			SourceID: achievement.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	if achievement.XpReward > 0 {
		if err := d.userStatsRepo.UpsertXp(ctx, userID, achievement.XpReward); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot grant achievement xp: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return progress, nil
}

// Evaluate runs the criteria tree of every active achievement the user
// has not unlocked yet, and unlocks the satisfied ones. One failing
// achievement does not stop the rest.
func (d *achievementDomain) Evaluate(
	ctx context.Context, req *model.EvaluateAchievementsRequest,
) (*model.EvaluateAchievementsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	achievements, err := d.achievementRepo.GetList(ctx, repository.GetListAchievementFilter{ActiveOnly: true})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievements: %v", err)
		return nil, errorx.Unknown
	}

	progressList, err := d.achievementRepo.GetProgressList(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievement progress: %v", err)
		return nil, errorx.Unknown
	}

	unlockedSet := map[string]bool{}
	for _, p := range progressList {
		if p.IsUnlocked {
			unlockedSet[p.AchievementID] = true
		}
	}

	unlocked := []model.Achievement{}
	for i := range achievements {
		achievement := &achievements[i]
		if unlockedSet[achievement.ID] {
			continue
		}

		ok, err := d.criteriaFactory.Evaluate(ctx, achievement.Criteria, userID)
		if err != nil {
			xcontext.Logger(ctx).Warnf(
				"Cannot evaluate criteria of achievement %s: %v", achievement.ID, err)
			continue
		}

		if !ok {
			continue
		}

		progress, err := d.unlock(ctx, userID, achievement)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot unlock achievement %s: %v", achievement.ID, err)
			continue
		}

		unlocked = append(unlocked, convertAchievement(achievement, progress))
	}

	return &model.EvaluateAchievementsResponse{Unlocked: unlocked}, nil
}
