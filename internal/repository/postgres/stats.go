package postgres

import (
	"context"
	"fmt"

	"wake-up-challenge/internal/entities"
)

const (
	defaultLeaderboardLimit = 10
	leaderboardQuery        = `
SELECT t.id, t.name, t.lp_balance, t.total_success_count,
    (SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id),
    (SELECT COUNT(*) FROM team_achievements a WHERE a.team_id = t.id)
FROM teams t
ORDER BY t.lp_balance DESC, t.total_success_count DESC, t.id
LIMIT $1`
)

// TeamLeaderboard orders teams by LP, then total successes.
func (p *Postgres) TeamLeaderboard(ctx context.Context, filter entities.LeaderboardFilter) ([]entities.TeamStat, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	rows, err := p.db.Query(ctx, leaderboardQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("team leaderboard: %w", err)
	}
	defer rows.Close()

	stats := make([]entities.TeamStat, 0)
	for rows.Next() {
		var s entities.TeamStat
		if err := rows.Scan(&s.TeamID, &s.Name, &s.LPBalance, &s.TotalSuccessCount, &s.MemberCount, &s.Achievements); err != nil {
			return nil, fmt.Errorf("scan team stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team stat: %w", err)
	}
	return stats, nil
}
