package usecase

import (
	"context"

	"wake-up-challenge/internal/repository"
	"wake-up-challenge/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	ChallengeUsecaseInterface
	UserUsecaseInterface
	AccountUsecaseInterface
	TeamUsecaseInterface
	StatsUsecaseInterface
	JobUsecaseInterface
}

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, opts domain.Options) InterfaceUsecase {
	return domain.New(log, ctx, repo, opts)
}
