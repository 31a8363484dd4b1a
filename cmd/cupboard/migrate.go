package main

import (
	"context"

	"cupboard/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:   "migrate",
	Usage:  "Apply the database schema",
	Action: migrate,
}

func migrate(cCtx *cli.Context) error {
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

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	logrus.Info("schema applied")
	return nil
}
