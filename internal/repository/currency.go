package repository

import (
	"context"
	"errors"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CurrencyRepository interface {
	GetAccount(ctx context.Context, userID string) (*entity.CurrencyAccount, error)
	CreateAccount(ctx context.Context, account *entity.CurrencyAccount) error
	AddBalance(ctx context.Context, userID string, delta int64) error
	CreateTransaction(ctx context.Context, tx *entity.CurrencyTransaction) error
	GetTransactions(ctx context.Context, userID string, offset, limit int) ([]entity.CurrencyTransaction, error)
}

type currencyRepository struct{}

func NewCurrencyRepository() *currencyRepository {
	return &currencyRepository{}
}

func (r *currencyRepository) GetAccount(ctx context.Context, userID string) (*entity.CurrencyAccount, error) {
	result := &entity.CurrencyAccount{}
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *currencyRepository) CreateAccount(ctx context.Context, account *entity.CurrencyAccount) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(account).Error
}

// AddBalance atomically adjusts the account balance. The guard in the
// WHERE clause keeps a negative delta from overdrawing the account even
// under concurrent writers.
func (r *currencyRepository) AddBalance(ctx context.Context, userID string, delta int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.CurrencyAccount{}).
		Where("user_id=? AND balance + ? >= 0", userID, delta).
		Update("balance", gorm.Expr("balance + ?", delta))

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

func (r *currencyRepository) CreateTransaction(ctx context.Context, tx *entity.CurrencyTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *currencyRepository) GetTransactions(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.CurrencyTransaction, error) {
	var result []entity.CurrencyTransaction
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
