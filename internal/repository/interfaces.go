// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/repository/txn"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// ChallengeTx is the view of the entity store inside one atomic transaction.
type ChallengeTx = txn.ChallengeTx

// TxFunc is a transaction body; it may be re-executed on conflict.
type TxFunc = txn.Func

// ChallengeInterface runs transaction bodies with optimistic-conflict retry.
type ChallengeInterface interface {
	RunChallengeTx(ctx context.Context, fn TxFunc) error
}

// UserInterface exposes user profile operations.
type UserInterface interface {
	CreateUser(ctx context.Context, user entities.User) error
	DeleteUser(ctx context.Context, userID string) (entities.DeletionResult, error)
	GetUser(ctx context.Context, userID string) (*entities.User, error)
	SetWakeUpTime(ctx context.Context, userID, wakeUpTime string) error
	SetDeviceToken(ctx context.Context, userID, token string) error
}

// NotificationInterface exposes the queries of the wake-up job.
type NotificationInterface interface {
	UsersByWakeUpTime(ctx context.Context, wakeUpTime string) ([]entities.Recipient, error)
	ClearDeviceToken(ctx context.Context, token string) (int64, error)
	ResetWeekly(ctx context.Context) (entities.RolloverResult, error)
}

// TeamInterface exposes team-related operations.
type TeamInterface interface {
	CreateTeam(ctx context.Context, team entities.Team, ownerID string) (*entities.Team, error)
	JoinTeam(ctx context.Context, teamID, userID string, maxSize int) (*entities.Team, error)
	GetTeam(ctx context.Context, teamID string) (*entities.Team, error)
}

// StatsInterface exposes aggregated statistics operations.
type StatsInterface interface {
	TeamLeaderboard(ctx context.Context, filter entities.LeaderboardFilter) ([]entities.TeamStat, error)
}

// MissionInterface exposes the configured daily mission.
type MissionInterface interface {
	TodayMission(ctx context.Context) (entities.Mission, error)
	SetTodayMission(ctx context.Context, mission entities.Mission) error
}
