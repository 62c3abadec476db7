package main

import (
	"net/http"

	"github.com/stunity/backend/internal/middleware"
	"github.com/stunity/backend/pkg/router"
	"github.com/stunity/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	address := xcontext.Configs(s.ctx).ApiServer.Address()
	s.server = &http.Server{
		Addr:    address,
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on %s", address)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Use(middleware.Logger())

	authRouter := s.router.Group("")
	authRouter.Use(middleware.AuthVerifier())
	{
		// Currency API
		router.GET(authRouter, "/getBalance", s.currencyDomain.GetBalance)
		router.GET(authRouter, "/getTransactions", s.currencyDomain.GetTransactions)

		// Achievement API
		router.GET(authRouter, "/getAchievements", s.achievementDomain.GetAchievements)
		router.POST(authRouter, "/updateAchievementProgress", s.achievementDomain.UpdateProgress)
		router.POST(authRouter, "/unlockAchievement", s.achievementDomain.Unlock)
		router.POST(authRouter, "/evaluateAchievements", s.achievementDomain.Evaluate)

		// Challenge API
		router.POST(authRouter, "/createChallengeTemplate", s.challengeDomain.CreateTemplate)
		router.POST(authRouter, "/deactivateChallengeTemplate", s.challengeDomain.DeactivateTemplate)
		router.POST(authRouter, "/generateDailyChallenges", s.challengeDomain.GenerateDaily)
		router.POST(authRouter, "/generateWeeklyChallenges", s.challengeDomain.GenerateWeekly)
		router.POST(authRouter, "/updateChallengeProgress", s.challengeDomain.UpdateProgress)
		router.GET(authRouter, "/getMyChallenges", s.challengeDomain.GetMyChallenges)

		// Team Challenge API
		router.POST(authRouter, "/createTeamChallenge", s.teamChallengeDomain.Create)
		router.POST(authRouter, "/contributeTeamChallenge", s.teamChallengeDomain.Contribute)
		router.GET(authRouter, "/getMyTeamChallenges", s.teamChallengeDomain.GetMyTeamChallenges)

		// Leaderboard API
		router.GET(authRouter, "/getMyRank", s.leaderboardDomain.GetMyRank)
		router.GET(authRouter, "/getMyAllCategoryRanks", s.leaderboardDomain.GetMyAllCategoryRanks)

		// Shop API
		router.GET(authRouter, "/getUnlockables", s.shopDomain.GetUnlockables)
		router.POST(authRouter, "/purchaseUnlockable", s.shopDomain.Purchase)
		router.POST(authRouter, "/equipUnlockable", s.shopDomain.Equip)
	}

	// Public API.
	router.GET(s.router, "/getLeaderboard", s.leaderboardDomain.GetLeaderboard)
	router.GET(s.router, "/getTeamChallenge", s.teamChallengeDomain.Get)
	router.GET(s.router, "/getChallengeTemplates", s.challengeDomain.GetTemplates)
}
