package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/testutil"
	"github.com/stunity/backend/pkg/xcontext"
)

func newShopDomainForTest() (*shopDomain, ledger.Ledger) {
	coinLedger := ledger.New(repository.NewCurrencyRepository())
	domain := NewShopDomain(
		repository.NewUnlockableRepository(),
		repository.NewAchievementRepository(),
		coinLedger,
	)

	return domain, coinLedger
}

func Test_shopDomain_Purchase(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newShopDomainForTest()

	avatarX := testutil.InsertUnlockable(ctx, entity.Unlockable{Name: "Avatar X", Cost: 300})
	avatarY := testutil.InsertUnlockable(ctx, entity.Unlockable{Name: "Avatar Y", Cost: 200})

	_, err := coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 1000, Source: "challenge",
	})
	require.NoError(t, err)

	resp, err := domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: avatarX.ID})
	require.NoError(t, err)
	require.Equal(t, int64(700), resp.Balance)

	resp, err = domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: avatarY.ID})
	require.NoError(t, err)
	require.Equal(t, int64(500), resp.Balance)

	// Buying the same item twice is refused.
	var errx errorx.Error
	_, err = domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: avatarX.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)

	_, err = domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: "bogus"})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)

	list, err := domain.GetUnlockables(ctx, &model.GetUnlockablesRequest{Type: "avatar"})
	require.NoError(t, err)
	require.Len(t, list.Unlockables, 2)
	for _, u := range list.Unlockables {
		require.True(t, u.IsOwned)
		require.False(t, u.IsEquipped)
	}
}

func Test_shopDomain_Purchase_insufficientBalance(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newShopDomainForTest()

	unlockable := testutil.InsertUnlockable(ctx, entity.Unlockable{Cost: 300})
	_, err := coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 100, Source: "challenge",
	})
	require.NoError(t, err)

	var errx errorx.Error
	_, err = domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: unlockable.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PaymentRequired, errx.Code)

	// The refused purchase grants no ownership and spends nothing.
	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	list, err := domain.GetUnlockables(ctx, &model.GetUnlockablesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Unlockables, 1)
	require.False(t, list.Unlockables[0].IsOwned)
}

func Test_shopDomain_Purchase_achievementGate(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, _ := newShopDomainForTest()

	achievement := testutil.InsertAchievement(ctx, entity.Achievement{Title: "Scholar"})
	unlockable := testutil.InsertUnlockable(ctx, entity.Unlockable{
		Name:                  "Scholar Frame",
		Type:                  entity.UnlockableBadgeFrame,
		RequiredAchievementID: sql.NullString{String: achievement.ID, Valid: true},
	})

	var errx errorx.Error
	_, err := domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: unlockable.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	err = domain.achievementRepo.MarkUnlocked(ctx, &entity.UserAchievementProgress{
		UserID:        "user1",
		AchievementID: achievement.ID,
		Progress:      100,
		IsUnlocked:    true,
		UnlockedAt:    time.Now(),
	})
	require.NoError(t, err)

	_, err = domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: unlockable.ID})
	require.NoError(t, err)
}

func Test_shopDomain_Equip(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newShopDomainForTest()

	avatarX := testutil.InsertUnlockable(ctx, entity.Unlockable{Name: "Avatar X", Cost: 10})
	avatarY := testutil.InsertUnlockable(ctx, entity.Unlockable{Name: "Avatar Y", Cost: 10})
	theme := testutil.InsertUnlockable(ctx, entity.Unlockable{
		Name: "Dark Theme", Type: entity.UnlockableTheme, Cost: 10,
	})

	_, err := coinLedger.Credit(ctx, ledger.TransactionInput{
		UserID: "user1", Amount: 100, Source: "challenge",
	})
	require.NoError(t, err)

	for _, id := range []string{avatarX.ID, avatarY.ID, theme.ID} {
		_, err := domain.Purchase(ctx, &model.PurchaseUnlockableRequest{UnlockableID: id})
		require.NoError(t, err)
	}

	// Equipping an item of a type unequips the previous one of that
	// type only.
	_, err = domain.Equip(ctx, &model.EquipUnlockableRequest{UnlockableID: avatarX.ID})
	require.NoError(t, err)

	_, err = domain.Equip(ctx, &model.EquipUnlockableRequest{UnlockableID: theme.ID})
	require.NoError(t, err)

	_, err = domain.Equip(ctx, &model.EquipUnlockableRequest{UnlockableID: avatarY.ID})
	require.NoError(t, err)

	list, err := domain.GetUnlockables(ctx, &model.GetUnlockablesRequest{})
	require.NoError(t, err)

	equipped := map[string]bool{}
	for _, u := range list.Unlockables {
		equipped[u.ID] = u.IsEquipped
	}
	require.False(t, equipped[avatarX.ID])
	require.True(t, equipped[avatarY.ID])
	require.True(t, equipped[theme.ID])

	// Items the user does not own cannot be equipped.
	var errx errorx.Error
	bobCtx := xcontext.WithRequestUserID(ctx, "bob")
	_, err = domain.Equip(bobCtx, &model.EquipUnlockableRequest{UnlockableID: avatarX.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)
}
