package domain

import (
	"context"
	"errors"

	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/enum"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const shopPurchaseSource = "shop_purchase"

type ShopDomain interface {
	GetUnlockables(ctx context.Context, req *model.GetUnlockablesRequest) (*model.GetUnlockablesResponse, error)
	Purchase(ctx context.Context, req *model.PurchaseUnlockableRequest) (*model.PurchaseUnlockableResponse, error)
	Equip(ctx context.Context, req *model.EquipUnlockableRequest) (*model.EquipUnlockableResponse, error)
}

type shopDomain struct {
	unlockableRepo  repository.UnlockableRepository
	achievementRepo repository.AchievementRepository
	ledger          ledger.Ledger
}

func NewShopDomain(
	unlockableRepo repository.UnlockableRepository,
	achievementRepo repository.AchievementRepository,
	ledger ledger.Ledger,
) *shopDomain {
	return &shopDomain{
		unlockableRepo:  unlockableRepo,
		achievementRepo: achievementRepo,
		ledger:          ledger,
	}
}

func (d *shopDomain) GetUnlockables(
	ctx context.Context, req *model.GetUnlockablesRequest,
) (*model.GetUnlockablesResponse, error) {
	var unlockableType entity.UnlockableType
	if req.Type != "" {
		var err error
		unlockableType, err = enum.ToEnum[entity.UnlockableType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid unlockable type %s", req.Type)
		}
	}

	unlockables, err := d.unlockableRepo.GetList(ctx, unlockableType, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get unlockables: %v", err)
		return nil, errorx.Unknown
	}

	owned, err := d.unlockableRepo.GetUserUnlockables(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user unlockables: %v", err)
		return nil, errorx.Unknown
	}

	ownedMap := map[string]*entity.UserUnlockable{}
	for i := range owned {
		ownedMap[owned[i].UnlockableID] = &owned[i]
	}

	result := make([]model.Unlockable, 0, len(unlockables))
	for i := range unlockables {
		result = append(result, convertUnlockable(&unlockables[i], ownedMap[unlockables[i].ID]))
	}

	return &model.GetUnlockablesResponse{Unlockables: result}, nil
}

func (d *shopDomain) Purchase(
	ctx context.Context, req *model.PurchaseUnlockableRequest,
) (*model.PurchaseUnlockableResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	unlockable, err := d.unlockableRepo.GetByID(ctx, req.UnlockableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found unlockable")
		}

		xcontext.Logger(ctx).Errorf("Cannot get unlockable: %v", err)
		return nil, errorx.Unknown
	}

	if !unlockable.IsActive {
		return nil, errorx.New(errorx.Unavailable, "This item is not available")
	}

	_, err = d.unlockableRepo.GetUserUnlockable(ctx, userID, req.UnlockableID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "You already own this item")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user unlockable: %v", err)
		return nil, errorx.Unknown
	}

	if unlockable.RequiredAchievementID.Valid {
		progress, err := d.achievementRepo.GetProgress(
			ctx, userID, unlockable.RequiredAchievementID.String)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get achievement progress: %v", err)
			return nil, errorx.Unknown
		}

		if progress == nil || !progress.IsUnlocked {
			return nil, errorx.New(errorx.PermissionDenied,
				"This item requires an achievement you have not unlocked")
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if unlockable.Cost > 0 {
		_, err := d.ledger.Debit(ctx, ledger.TransactionInput{
			UserID:   userID,
			Amount:   unlockable.Cost,
			Source:   shopPurchaseSource,
			SourceID: unlockable.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	err = d.unlockableRepo.CreateUserUnlockable(ctx, &entity.UserUnlockable{
		UserID:       userID,
		UnlockableID: unlockable.ID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user unlockable: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	balance, err := d.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.PurchaseUnlockableResponse{Balance: balance}, nil
}

// Equip atomically swaps the equipped item of the type, keeping at most
// one equipped per (user, type).
func (d *shopDomain) Equip(
	ctx context.Context, req *model.EquipUnlockableRequest,
) (*model.EquipUnlockableResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	unlockable, err := d.unlockableRepo.GetByID(ctx, req.UnlockableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found unlockable")
		}

		xcontext.Logger(ctx).Errorf("Cannot get unlockable: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.unlockableRepo.GetUserUnlockable(ctx, userID, req.UnlockableID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "You do not own this item")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user unlockable: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.unlockableRepo.UnequipAllOfType(ctx, userID, unlockable.Type); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unequip items: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.unlockableRepo.Equip(ctx, userID, req.UnlockableID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot equip item: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.EquipUnlockableResponse{}, nil
}
