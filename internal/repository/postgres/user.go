package postgres

import (
	"context"
	"errors"
	"fmt"

	"wake-up-challenge/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	upsertUserQuery = `
INSERT INTO users(id, email, display_name, lp_balance, team_ids, last_challenge_status, weekly_success_count, wake_up_time, device_token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    email = EXCLUDED.email,
    display_name = EXCLUDED.display_name,
    lp_balance = EXCLUDED.lp_balance,
    team_ids = EXCLUDED.team_ids,
    last_challenge_status = EXCLUDED.last_challenge_status,
    weekly_success_count = EXCLUDED.weekly_success_count,
    wake_up_time = EXCLUDED.wake_up_time,
    device_token = EXCLUDED.device_token`
	lockUserTeamsQuery    = `SELECT team_ids FROM users WHERE id=$1 FOR UPDATE`
	deleteMembershipQuery = `DELETE FROM team_members WHERE user_id=$1 AND team_id = ANY($2::text[]) RETURNING team_id`
	deleteUserQuery       = `DELETE FROM users WHERE id=$1`
	setWakeUpTimeQuery    = `UPDATE users SET wake_up_time=$2 WHERE id=$1`
	setDeviceTokenQuery   = `UPDATE users SET device_token=$2 WHERE id=$1`
)

// CreateUser stores the profile, replacing any previous one.
func (p *Postgres) CreateUser(ctx context.Context, u entities.User) error {
	_, err := p.db.Exec(ctx, upsertUserQuery,
		u.ID, u.Email, u.DisplayName, u.LPBalance, teamIDs(u.TeamIDs), string(u.LastChallengeStatus),
		u.WeeklySuccessCount, u.WakeUpTime, u.DeviceToken)
	if err != nil {
		p.log.Errorw("failed to create user", "error", err, "user_id", u.ID)
		return fmt.Errorf("create user: %w", err)
	}
	p.log.Infow("user created", "user_id", u.ID)
	return nil
}

// DeleteUser removes the profile and the member entries of its listed teams.
// Team aggregate counters are left untouched.
func (p *Postgres) DeleteUser(ctx context.Context, userID string) (entities.DeletionResult, error) {
	res := entities.DeletionResult{UserID: userID, TeamsCleaned: []string{}}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		res.TeamsCleaned = res.TeamsCleaned[:0]
		var teams []string
		err := tx.QueryRow(ctx, lockUserTeamsQuery, userID).Scan(&teams)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		rows, err := tx.Query(ctx, deleteMembershipQuery, userID, teamIDs(teams))
		if err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		cleaned, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("collect memberships: %w", err)
		}
		res.TeamsCleaned = append(res.TeamsCleaned, cleaned...)

		if _, err := tx.Exec(ctx, deleteUserQuery, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		p.log.Errorw("failed to delete user", "error", err, "user_id", userID)
		return entities.DeletionResult{}, err
	}

	p.log.Infow("user deleted", "user_id", userID, "teams_cleaned", res.TeamsCleaned)
	return res, nil
}

// GetUser fetches a profile by id.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	u, err := scanUser(p.db.QueryRow(ctx, selectUserQuery, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// SetWakeUpTime updates the alarm time.
func (p *Postgres) SetWakeUpTime(ctx context.Context, userID, wakeUpTime string) error {
	return p.updateUserField(ctx, setWakeUpTimeQuery, userID, wakeUpTime)
}

// SetDeviceToken updates the push token.
func (p *Postgres) SetDeviceToken(ctx context.Context, userID, token string) error {
	return p.updateUserField(ctx, setDeviceTokenQuery, userID, token)
}

func (p *Postgres) updateUserField(ctx context.Context, query, userID, value string) error {
	tag, err := p.db.Exec(ctx, query, userID, value)
	if err != nil {
		p.log.Errorw("failed to update user", "error", err, "user_id", userID)
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
