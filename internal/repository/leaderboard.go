package repository

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
)

type SnapshotKey struct {
	Category entity.LeaderboardCategory
	Scope    entity.LeaderboardScope
	Period   entity.LeaderboardPeriod
}

func (k SnapshotKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Category, k.Scope, k.Period)
}

type LeaderboardRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *entity.LeaderboardSnapshot) error
	GetLatestSnapshot(ctx context.Context, key SnapshotKey) (*entity.LeaderboardSnapshot, error)
}

type leaderboardRepository struct {
	// Snapshots are immutable, so the latest one per key can be
	// memoized until a newer one is written.
	latest *xsync.MapOf[string, entity.LeaderboardSnapshot]
}

func NewLeaderboardRepository() *leaderboardRepository {
	return &leaderboardRepository{latest: xsync.NewMapOf[entity.LeaderboardSnapshot]()}
}

func (r *leaderboardRepository) CreateSnapshot(
	ctx context.Context, snapshot *entity.LeaderboardSnapshot,
) error {
	if err := xcontext.DB(ctx).Create(snapshot).Error; err != nil {
		return err
	}

	key := SnapshotKey{Category: snapshot.Category, Scope: snapshot.Scope, Period: snapshot.Period}
	r.latest.Store(key.String(), *snapshot)
	return nil
}

func (r *leaderboardRepository) GetLatestSnapshot(
	ctx context.Context, key SnapshotKey,
) (*entity.LeaderboardSnapshot, error) {
	if cached, ok := r.latest.Load(key.String()); ok {
		return &cached, nil
	}

	result := &entity.LeaderboardSnapshot{}
	err := xcontext.DB(ctx).
		Where("category=? AND scope=? AND period=?", key.Category, key.Scope, key.Period).
		Order("period_start DESC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	r.latest.Store(key.String(), *result)
	return result, nil
}
