package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waterline/internal/db"
	"waterline/internal/mail"
	"waterline/internal/server"
	"waterline/internal/storage"
	"waterline/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
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

	accountRepo := store.NewAccountRepository(pool)
	incidentRepo := store.NewIncidentRepository(pool)

	mailer := mail.New(config, logger)

	var evidence server.EvidenceStorage
	if config.EvidenceBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		evidence = storage.NewEvidenceStore(s3.NewFromConfig(awsConfig), config.EvidenceBucket)
	} else {
		logger.Warn("EVIDENCE_BUCKET not set, evidence image uploads disabled")
	}

	srv, err := server.New(
		config,
		logger,
		accountRepo,
		incidentRepo,
		mailer,
		evidence,
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
