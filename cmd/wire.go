package main

import (
	"context"
	"fmt"

	"wake-up-challenge/config"
	"wake-up-challenge/internal/aggregation"
	"wake-up-challenge/internal/push"
	"wake-up-challenge/internal/repository"
	"wake-up-challenge/internal/usecase"
	"wake-up-challenge/internal/usecase/domain"
	"wake-up-challenge/pkg/logger"

	"go.uber.org/zap"
)

type app struct {
	cfg  *config.Config
	log  *zap.SugaredLogger
	repo repository.Repository
	uc   usecase.InterfaceUsecase
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	return logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

// bootstrap loads configuration, starts the store and builds the usecase layer.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	catalogue := aggregation.DefaultCatalogue()
	if cfg.Challenge.AchievementsFile != "" {
		catalogue, err = aggregation.LoadCatalogue(cfg.Challenge.AchievementsFile)
		if err != nil {
			return nil, fmt.Errorf("load achievements: %w", err)
		}
	}
	engine := aggregation.New(aggregation.Rules{
		SuccessLP: cfg.Challenge.SuccessLP,
		FailLP:    cfg.Challenge.FailLP,
	}, catalogue)

	repo, err := repository.New(ctx, cfg.Store.Backend, log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return nil, err
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return nil, err
	}

	var sender push.Sender
	if cfg.Notifications.GatewayURL != "" {
		sender = push.NewGateway(push.GatewayOptions{
			URL:           cfg.Notifications.GatewayURL,
			Key:           cfg.Notifications.GatewayKey,
			Timeout:       cfg.Notifications.GatewayTimeout,
			RatePerSecond: cfg.Notifications.RatePerSecond,
		}, log)
	} else {
		log.Warnw("push gateway not configured, notifications are logged only")
		sender = push.NewLogSender(log)
	}

	uc := usecase.New(log, ctx, repo, domain.Options{
		Timeout:     cfg.HTTP.RequestTimeout,
		Engine:      engine,
		Location:    cfg.Location(),
		Sender:      sender,
		MaxTeamSize: cfg.Challenge.MaxTeamSize,
		Notification: domain.NotificationOptions{
			Title:     cfg.Notifications.Title,
			Body:      cfg.Notifications.Body,
			BatchSize: cfg.Notifications.BatchSize,
		},
	})

	log.Infow("bootstrap complete",
		"store", cfg.Store.Backend,
		"time_zone", cfg.Challenge.TimeZone,
		"achievements", catalogue.Len(),
	)
	return &app{cfg: cfg, log: log, repo: repo, uc: uc}, nil
}

func (a *app) close() {
	_ = a.repo.OnStop(context.Background())
	_ = a.log.Sync()
}
