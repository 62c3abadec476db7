package main

import (
	"github.com/stunity/backend/internal/domain/cron"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()

	manager := cron.NewCronJobManager()
	manager.Register(cron.NewGenerateChallengesCronJob(s.challengeDomain, s.userStatsRepo))
	manager.Register(cron.NewExpireChallengesCronJob(s.challengeDomain))
	manager.Register(cron.NewReconcileTeamChallengesCronJob(s.teamChallengeDomain))
	manager.Register(cron.NewResetLeaderboardCronJob(s.leaderboardDomain, entity.LeaderboardDaily))
	manager.Register(cron.NewResetLeaderboardCronJob(s.leaderboardDomain, entity.LeaderboardWeekly))
	manager.Register(cron.NewResetLeaderboardCronJob(s.leaderboardDomain, entity.LeaderboardMonthly))
	manager.Start(s.ctx)

	return nil
}
