package repository

import (
	"context"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GetListAchievementFilter struct {
	Category   entity.AchievementCategory
	ActiveOnly bool
}

type AchievementRepository interface {
	Create(ctx context.Context, achievement *entity.Achievement) error
	GetByID(ctx context.Context, id string) (*entity.Achievement, error)
	GetList(ctx context.Context, filter GetListAchievementFilter) ([]entity.Achievement, error)

	GetProgress(ctx context.Context, userID, achievementID string) (*entity.UserAchievementProgress, error)
	GetProgressList(ctx context.Context, userID string) ([]entity.UserAchievementProgress, error)
	UpsertProgress(ctx context.Context, progress *entity.UserAchievementProgress) error
	MarkUnlocked(ctx context.Context, progress *entity.UserAchievementProgress) error
}

type achievementRepository struct{}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *entity.Achievement) error {
	return xcontext.DB(ctx).Create(achievement).Error
}

func (r *achievementRepository) GetByID(ctx context.Context, id string) (*entity.Achievement, error) {
	result := &entity.Achievement{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) GetList(
	ctx context.Context, filter GetListAchievementFilter,
) ([]entity.Achievement, error) {
	tx := xcontext.DB(ctx).Model(&entity.Achievement{})
	if filter.Category != "" {
		tx.Where("category=?", filter.Category)
	}

	if filter.ActiveOnly {
		tx.Where("is_active=?", true)
	}

	var result []entity.Achievement
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) GetProgress(
	ctx context.Context, userID, achievementID string,
) (*entity.UserAchievementProgress, error) {
	result := &entity.UserAchievementProgress{}
	err := xcontext.DB(ctx).
		Where("user_id=? AND achievement_id=?", userID, achievementID).
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) GetProgressList(
	ctx context.Context, userID string,
) ([]entity.UserAchievementProgress, error) {
	var result []entity.UserAchievementProgress
	err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) UpsertProgress(
	ctx context.Context, progress *entity.UserAchievementProgress,
) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "achievement_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"progress": progress.Progress,
			}),
		}).Create(progress).Error
}

// MarkUnlocked persists the unlocked state. The caller must have
// checked that the progress row is not unlocked yet.
func (r *achievementRepository) MarkUnlocked(
	ctx context.Context, progress *entity.UserAchievementProgress,
) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "achievement_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"progress":    progress.Progress,
				"is_unlocked": true,
				"unlocked_at": progress.UnlockedAt,
			}),
		}).Create(progress).Error
}
