package usecase

import (
	"context"
	"time"

	"wake-up-challenge/internal/entities"
)

// ChallengeUsecaseInterface abstracts the daily challenge operations.
type ChallengeUsecaseInterface interface {
	ProcessResult(ctx context.Context, userID, rawResult string) (entities.ChallengeOutcome, error)
	TodayMission(ctx context.Context, userID string) (entities.Mission, error)
}

// UserUsecaseInterface abstracts user-related operations for delivery layer.
type UserUsecaseInterface interface {
	Profile(ctx context.Context, userID string) (*entities.User, error)
	SetWakeUpTime(ctx context.Context, userID, raw string) (string, error)
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

// AccountUsecaseInterface abstracts account lifecycle hooks.
type AccountUsecaseInterface interface {
	CreateAccount(ctx context.Context, uid, email, displayName string) (*entities.User, error)
	DeleteAccount(ctx context.Context, uid string) (entities.DeletionResult, error)
}

// TeamUsecaseInterface abstracts team-related operations.
type TeamUsecaseInterface interface {
	CreateTeam(ctx context.Context, ownerID, teamID, name string) (*entities.Team, error)
	JoinTeam(ctx context.Context, userID, teamID string) (*entities.Team, error)
	Team(ctx context.Context, teamID string) (*entities.Team, error)
}

// StatsUsecaseInterface abstracts statistics operations.
type StatsUsecaseInterface interface {
	Leaderboard(ctx context.Context, filter entities.LeaderboardFilter) ([]entities.TeamStat, error)
}

// JobUsecaseInterface abstracts the scheduled jobs.
type JobUsecaseInterface interface {
	NotifyWakeUps(ctx context.Context, at time.Time) (entities.NotifyReport, error)
	WeeklyRollover(ctx context.Context) (entities.RolloverResult, error)
}
