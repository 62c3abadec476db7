package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/stunity/backend/config"
	"github.com/stunity/backend/internal/domain"
	"github.com/stunity/backend/internal/domain/criteria"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/logger"
	"github.com/stunity/backend/pkg/router"
	"github.com/stunity/backend/pkg/xcontext"
	"github.com/stunity/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	router *router.Router
	server *http.Server

	redisClient xredis.Client

	currencyRepo      repository.CurrencyRepository
	userStatsRepo     repository.UserStatsRepository
	achievementRepo   repository.AchievementRepository
	templateRepo      repository.ChallengeTemplateRepository
	challengeRepo     repository.ChallengeRepository
	teamChallengeRepo repository.TeamChallengeRepository
	unlockableRepo    repository.UnlockableRepository
	leaderboardRepo   repository.LeaderboardRepository

	ledger ledger.Ledger

	currencyDomain      domain.CurrencyDomain
	achievementDomain   domain.AchievementDomain
	challengeDomain     domain.ChallengeDomain
	teamChallengeDomain domain.TeamChallengeDomain
	leaderboardDomain   domain.LeaderboardDomain
	shopDomain          domain.ShopDomain
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func (s *srv) loadConfig() {
	s.ctx = xcontext.WithConfigs(context.Background(), config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "stunity"),
			User:     getEnv("MYSQL_USER", "stunity"),
			Password: getEnv("MYSQL_PASSWORD", "secret"),
		},
		ApiServer: config.ServerConfigs{
			Host:         getEnv("HOST", "localhost"),
			Port:         getEnv("PORT", "8080"),
			DefaultLimit: getIntEnv("API_DEFAULT_LIMIT", 50),
			MaxLimit:     getIntEnv("API_MAX_LIMIT", 100),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Leaderboard: config.LeaderboardConfigs{
			CacheTTL: time.Duration(getIntEnv("LEADERBOARD_CACHE_TTL", 60)) * time.Second,
		},
	})
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) newDatabase() *gorm.DB {
	db, err := gorm.Open(mysql.Open(xcontext.Configs(s.ctx).Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.currencyRepo = repository.NewCurrencyRepository()
	s.userStatsRepo = repository.NewUserStatsRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.templateRepo = repository.NewChallengeTemplateRepository()
	s.challengeRepo = repository.NewChallengeRepository()
	s.teamChallengeRepo = repository.NewTeamChallengeRepository()
	s.unlockableRepo = repository.NewUnlockableRepository()
	s.leaderboardRepo = repository.NewLeaderboardRepository()
}

func (s *srv) loadDomains() {
	s.ledger = ledger.New(s.currencyRepo)
	criteriaFactory := criteria.NewFactory(s.userStatsRepo, s.challengeRepo)

	s.currencyDomain = domain.NewCurrencyDomain(s.ledger)
	s.achievementDomain = domain.NewAchievementDomain(
		s.achievementRepo, s.userStatsRepo, criteriaFactory, s.ledger)
	s.challengeDomain = domain.NewChallengeDomain(
		s.challengeRepo, s.templateRepo, s.userStatsRepo, s.ledger)
	s.teamChallengeDomain = domain.NewTeamChallengeDomain(
		s.teamChallengeRepo, s.userStatsRepo, s.ledger)
	s.leaderboardDomain = domain.NewLeaderboardDomain(
		s.userStatsRepo, s.challengeRepo, s.leaderboardRepo, s.ledger, s.redisClient)
	s.shopDomain = domain.NewShopDomain(s.unlockableRepo, s.achievementRepo, s.ledger)
}
