// Package domain contains application services orchestrating domain logic by statistics.
package domain

import (
	"context"

	"wake-up-challenge/internal/entities"
)

const maxLeaderboard = 100

// Leaderboard returns teams ordered by LP.
func (u *Usecase) Leaderboard(ctx context.Context, filter entities.LeaderboardFilter) ([]entities.TeamStat, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > maxLeaderboard {
		filter.Limit = maxLeaderboard
	}
	return u.repo.TeamLeaderboard(ctx, filter)
}
