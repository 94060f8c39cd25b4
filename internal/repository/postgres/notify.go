package postgres

import (
	"context"
	"fmt"

	"wake-up-challenge/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	usersByWakeUpQuery  = `SELECT id, device_token FROM users WHERE wake_up_time=$1 ORDER BY id`
	clearTokenQuery     = `UPDATE users SET device_token='' WHERE device_token=$1 AND device_token <> ''`
	resetUsersQuery     = `UPDATE users SET weekly_success_count=0 WHERE weekly_success_count <> 0`
	resetMembersQuery   = `UPDATE team_members SET weekly_success_count=0 WHERE weekly_success_count <> 0`
	deleteFailDaysQuery = `DELETE FROM team_fail_days`
)

// UsersByWakeUpTime returns users whose alarm matches wakeUpTime.
func (p *Postgres) UsersByWakeUpTime(ctx context.Context, wakeUpTime string) ([]entities.Recipient, error) {
	rows, err := p.db.Query(ctx, usersByWakeUpQuery, wakeUpTime)
	if err != nil {
		return nil, fmt.Errorf("users by wake-up time: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Recipient, 0)
	for rows.Next() {
		var r entities.Recipient
		if err := rows.Scan(&r.UserID, &r.DeviceToken); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return out, nil
}

// ClearDeviceToken removes token from every user holding it.
func (p *Postgres) ClearDeviceToken(ctx context.Context, token string) (int64, error) {
	tag, err := p.db.Exec(ctx, clearTokenQuery, token)
	if err != nil {
		return 0, fmt.Errorf("clear device token: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ResetWeekly zeroes weekly counters and clears fail days in one transaction.
func (p *Postgres) ResetWeekly(ctx context.Context) (entities.RolloverResult, error) {
	var res entities.RolloverResult
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, resetUsersQuery)
		if err != nil {
			return fmt.Errorf("reset users: %w", err)
		}
		res.Users = tag.RowsAffected()

		tag, err = tx.Exec(ctx, resetMembersQuery)
		if err != nil {
			return fmt.Errorf("reset members: %w", err)
		}
		res.Members = tag.RowsAffected()

		tag, err = tx.Exec(ctx, deleteFailDaysQuery)
		if err != nil {
			return fmt.Errorf("clear fail days: %w", err)
		}
		res.FailDays = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return entities.RolloverResult{}, err
	}
	p.log.Infow("weekly counters reset", "users", res.Users, "members", res.Members, "fail_days", res.FailDays)
	return res, nil
}
