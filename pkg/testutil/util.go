package testutil

import (
	"context"
	"time"

	"github.com/stunity/backend/config"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/logger"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockContext returns a context backed by an in-memory database with
// all tables migrated, ready to be passed to repositories and domains.
func MockContext() context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, Configs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	ctx = xcontext.WithDB(ctx, db)
	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

func Configs() config.Configs {
	return config.Configs{
		Env: "testing",
		ApiServer: config.ServerConfigs{
			Host:         "localhost",
			Port:         "8080",
			DefaultLimit: 50,
			MaxLimit:     100,
		},
		Leaderboard: config.LeaderboardConfigs{
			CacheTTL: time.Minute,
		},
	}
}
