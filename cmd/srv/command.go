package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Stunity Rewards"
	app.Usage = "Gamification rewards and ranking engine"
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the api server",
			Category:    "Api",
			Description: `Serves the currency, achievement, challenge, team challenge, leaderboard and shop APIs.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the cron job runner",
			Category:    "Worker",
			Description: `Runs challenge generation, challenge expiry, team challenge reconciliation and leaderboard resets.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Tool",
			Description: `Applies the table definitions to the configured database and exits.`,
		},
	}

	s.app = app
}
