package main

import (
	"context"

	"cupboard/internal/db"
	"cupboard/internal/seed"
	"cupboard/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:   "seed",
	Usage:  "Seed default accounts and sample needs",
	Action: runSeed,
}

func runSeed(cCtx *cli.Context) error {
	ctx := context.Background()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	users, err := seed.Users(ctx, store.NewUserRepository(pool))
	if err != nil {
		return err
	}

	needs, err := seed.Needs(ctx, store.NewNeedRepository(pool))
	if err != nil {
		return err
	}

	for _, user := range users {
		pp.Println(user.Username, user.Role)
	}
	for _, need := range needs {
		pp.Println(need.Name, need.Quantity)
	}

	logrus.WithFields(logrus.Fields{
		"users": len(users),
		"needs": len(needs),
	}).Info("seed complete")

	return nil
}
