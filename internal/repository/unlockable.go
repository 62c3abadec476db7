package repository

import (
	"context"
	"errors"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UnlockableRepository interface {
	Create(ctx context.Context, unlockable *entity.Unlockable) error
	GetByID(ctx context.Context, id string) (*entity.Unlockable, error)
	GetList(ctx context.Context, unlockableType entity.UnlockableType, activeOnly bool) ([]entity.Unlockable, error)

	CreateUserUnlockable(ctx context.Context, owned *entity.UserUnlockable) error
	GetUserUnlockable(ctx context.Context, userID, unlockableID string) (*entity.UserUnlockable, error)
	GetUserUnlockables(ctx context.Context, userID string) ([]entity.UserUnlockable, error)
	UnequipAllOfType(ctx context.Context, userID string, unlockableType entity.UnlockableType) error
	Equip(ctx context.Context, userID, unlockableID string) error
}

type unlockableRepository struct{}

func NewUnlockableRepository() *unlockableRepository {
	return &unlockableRepository{}
}

func (r *unlockableRepository) Create(ctx context.Context, unlockable *entity.Unlockable) error {
	return xcontext.DB(ctx).Create(unlockable).Error
}

func (r *unlockableRepository) GetByID(ctx context.Context, id string) (*entity.Unlockable, error) {
	result := &entity.Unlockable{}
	if err := xcontext.DB(ctx).Where("id=?", id).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *unlockableRepository) GetList(
	ctx context.Context, unlockableType entity.UnlockableType, activeOnly bool,
) ([]entity.Unlockable, error) {
	tx := xcontext.DB(ctx).Model(&entity.Unlockable{})
	if unlockableType != "" {
		tx.Where("type=?", unlockableType)
	}

	if activeOnly {
		tx.Where("is_active=?", true)
	}

	var result []entity.Unlockable
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *unlockableRepository) CreateUserUnlockable(ctx context.Context, owned *entity.UserUnlockable) error {
	return xcontext.DB(ctx).Create(owned).Error
}

func (r *unlockableRepository) GetUserUnlockable(
	ctx context.Context, userID, unlockableID string,
) (*entity.UserUnlockable, error) {
	result := &entity.UserUnlockable{}
	err := xcontext.DB(ctx).
		Where("user_id=? AND unlockable_id=?", userID, unlockableID).
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *unlockableRepository) GetUserUnlockables(
	ctx context.Context, userID string,
) ([]entity.UserUnlockable, error) {
	var result []entity.UserUnlockable
	err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UnequipAllOfType clears the equip flag on every owned item of the
// given type, keeping the one-equipped-per-type invariant before a new
// item is equipped.
func (r *unlockableRepository) UnequipAllOfType(
	ctx context.Context, userID string, unlockableType entity.UnlockableType,
) error {
	return xcontext.DB(ctx).
		Model(&entity.UserUnlockable{}).
		Where("user_id=? AND is_equipped=?", userID, true).
		Where(
			"unlockable_id IN (?)",
			xcontext.DB(ctx).
				Model(&entity.Unlockable{}).
				Select("id").
				Where("type=?", unlockableType),
		).
		Update("is_equipped", false).Error
}

func (r *unlockableRepository) Equip(ctx context.Context, userID, unlockableID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserUnlockable{}).
		Where("user_id=? AND unlockable_id=?", userID, unlockableID).
		Update("is_equipped", true)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
