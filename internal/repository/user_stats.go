package repository

import (
	"context"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStatsRepository interface {
	Get(ctx context.Context, userID string) (*entity.UserStats, error)
	UpsertXp(ctx context.Context, userID string, xp int64) error
	GetAllUserIDs(ctx context.Context) ([]string, error)
	GetAllByXpDesc(ctx context.Context) ([]entity.UserStats, error)
	GetStreak(ctx context.Context, userID string) (*entity.AttendanceStreak, error)
	GetStreaksDesc(ctx context.Context) ([]entity.AttendanceStreak, error)
}

type userStatsRepository struct{}

func NewUserStatsRepository() *userStatsRepository {
	return &userStatsRepository{}
}

func (r *userStatsRepository) Get(ctx context.Context, userID string) (*entity.UserStats, error) {
	result := &entity.UserStats{}
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertXp increments the user's XP, creating the stats row at level 1
// if the user has none yet.
func (r *userStatsRepository) UpsertXp(ctx context.Context, userID string, xp int64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"xp": gorm.Expr("xp + ?", xp),
			}),
		}).Create(&entity.UserStats{UserID: userID, Xp: xp, Level: 1}).Error
}

func (r *userStatsRepository) GetAllUserIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.UserStats{}).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userStatsRepository) GetAllByXpDesc(ctx context.Context) ([]entity.UserStats, error) {
	var result []entity.UserStats
	if err := xcontext.DB(ctx).Order("xp DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userStatsRepository) GetStreak(ctx context.Context, userID string) (*entity.AttendanceStreak, error) {
	result := &entity.AttendanceStreak{}
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userStatsRepository) GetStreaksDesc(ctx context.Context) ([]entity.AttendanceStreak, error) {
	var result []entity.AttendanceStreak
	if err := xcontext.DB(ctx).Order("current_streak DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
