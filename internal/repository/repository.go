// Package repository provides factory for repositories.
package repository

import (
	"context"
	"fmt"

	"wake-up-challenge/config"
	"wake-up-challenge/internal/repository/memory"
	"wake-up-challenge/internal/repository/postgres"
	"wake-up-challenge/internal/repository/txn"

	"go.uber.org/zap"
)

// Repository aggregates all persistence interfaces.
type Repository interface {
	LifecycleInterface
	ChallengeInterface
	UserInterface
	NotificationInterface
	TeamInterface
	StatsInterface
	MissionInterface
}

// New constructs repository backend by name.
func New(ctx context.Context, name string, log *zap.SugaredLogger, cfg *config.Config) (Repository, error) {
	switch name {
	case "postgres":
		return postgres.New(ctx, log, cfg), nil
	case "memory":
		return memory.New(log, txn.Policy{
			MaxAttempts: cfg.Store.MaxAttempts,
			BaseDelay:   cfg.Store.RetryDelay,
		}), nil
	default:
		return nil, fmt.Errorf("unknown repo backend: %s", name)
	}
}
