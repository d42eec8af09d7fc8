package main

import (
	"context"
	"fmt"

	"waterline/internal/db"
	"waterline/internal/seed"
	"waterline/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Create the bootstrap administrator account if it does not exist",
	Action: func(c *cli.Context) error {
		logger := logrus.New()

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		accountRepo := store.NewAccountRepository(pool)

		if err := seed.SeedAdmin(ctx, accountRepo, cfg, logger); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}

		return nil
	},
}
