package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cupboard/internal/db"
	"cupboard/internal/funding"
	"cupboard/internal/server"
	"cupboard/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	needsRepo := store.NewNeedRepository(pool)
	basketRepo := store.NewBasketRepository(pool)
	transactionRepo := store.NewTransactionRepository(pool)
	userRepo := store.NewUserRepository(pool)

	checkoutSvc := funding.NewCheckoutService(logger, needsRepo, basketRepo, transactionRepo)
	progressCalc := funding.NewCalculator(transactionRepo)

	srv, err := server.New(
		config,
		logger,
		needsRepo,
		basketRepo,
		userRepo,
		checkoutSvc,
		progressCalc,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
