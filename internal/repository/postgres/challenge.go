package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/repository/txn"

	"github.com/jackc/pgx/v5"
)

const (
	selectUserColumns = `id, email, display_name, lp_balance, team_ids, last_challenge_status, weekly_success_count, wake_up_time, device_token`
	selectUserQuery   = `SELECT ` + selectUserColumns + ` FROM users WHERE id=$1`
	lockUserQuery     = selectUserQuery + ` FOR UPDATE`
	updateUserQuery   = `
UPDATE users SET email=$2, display_name=$3, lp_balance=$4, team_ids=$5, last_challenge_status=$6,
    weekly_success_count=$7, wake_up_time=$8, device_token=$9
WHERE id=$1`
	creditUserQuery = `UPDATE users SET lp_balance = lp_balance + $2 WHERE id=$1 RETURNING id`

	selectTeamQuery        = `SELECT id, name, lp_balance, total_success_count, created_at FROM teams WHERE id=$1`
	lockTeamQuery          = selectTeamQuery + ` FOR UPDATE`
	selectMembersQuery     = `SELECT user_id, weekly_success_count FROM team_members WHERE team_id=$1`
	selectFailDaysQuery    = `SELECT day FROM team_fail_days WHERE team_id=$1`
	selectAchievementQuery = `SELECT achievement_id, granted_at FROM team_achievements WHERE team_id=$1`
	updateTeamQuery        = `
UPDATE teams SET name=$2, lp_balance = lp_balance + $3, total_success_count = total_success_count + $4
WHERE id=$1`
	insertMemberIfAbsentQuery = `
INSERT INTO team_members(team_id, user_id, weekly_success_count) VALUES ($1, $2, $3)
ON CONFLICT (team_id, user_id) DO NOTHING`
	incrementMemberQuery = `
UPDATE team_members SET weekly_success_count = weekly_success_count + $3
WHERE team_id=$1 AND user_id=$2`
	deleteMemberQuery   = `DELETE FROM team_members WHERE team_id=$1 AND user_id=$2`
	insertFailDayQuery  = `INSERT INTO team_fail_days(team_id, day) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	deleteFailDayQuery  = `DELETE FROM team_fail_days WHERE team_id=$1 AND day=$2`
	insertAchievedQuery = `INSERT INTO team_achievements(team_id, achievement_id, granted_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`

	lockChallengeQuery   = `SELECT id, user_id, day, status FROM challenges WHERE id=$1 FOR UPDATE`
	insertChallengeQuery = `INSERT INTO challenges(id, user_id, day, status) VALUES ($1, $2, $3, $4)`
)

// RunChallengeTx executes fn inside a serializable transaction and re-runs it
// when PostgreSQL reports a serialization failure or deadlock.
func (p *Postgres) RunChallengeTx(ctx context.Context, fn txn.Func) error {
	attempt := 0
	return txn.Do(ctx, p.policy, isRetryable, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.log.Debugw("challenge tx retry", "attempt", attempt)
		}

		tx, err := p.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return fmt.Errorf("begin challenge tx: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(ctx, &pgTx{q: tx, teams: map[string]entities.Team{}}); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit challenge tx: %w", err)
		}
		return nil
	})
}

// pgTx writes through to the open transaction, so reads observe earlier writes.
// teams holds the state each team was read or last saved in, the base of the
// next delta write.
type pgTx struct {
	q     querier
	teams map[string]entities.Team
}

func (t *pgTx) GetUser(ctx context.Context, userID string) (entities.User, error) {
	u, err := scanUser(t.q.QueryRow(ctx, lockUserQuery, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func (t *pgTx) GetTeam(ctx context.Context, teamID string) (entities.Team, error) {
	team, err := loadTeam(ctx, t.q, lockTeamQuery, teamID)
	if err != nil {
		return entities.Team{}, err
	}
	t.teams[teamID] = team.Clone()
	return team, nil
}

func (t *pgTx) GetChallenge(ctx context.Context, id string) (*entities.ChallengeRecord, error) {
	var rec entities.ChallengeRecord
	var status string
	err := t.q.QueryRow(ctx, lockChallengeQuery, id).Scan(&rec.ID, &rec.UserID, &rec.Date, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock challenge: %w", err)
	}
	rec.Status = entities.ChallengeStatus(status)
	return &rec, nil
}

func (t *pgTx) PutChallenge(ctx context.Context, rec entities.ChallengeRecord) error {
	_, err := t.q.Exec(ctx, insertChallengeQuery, rec.ID, rec.UserID, rec.Date, string(rec.Status))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: challenge %s", errRetry, rec.ID)
	}
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (t *pgTx) SaveUser(ctx context.Context, u entities.User) error {
	tag, err := t.q.Exec(ctx, updateUserQuery,
		u.ID, u.Email, u.DisplayName, u.LPBalance, teamIDs(u.TeamIDs), string(u.LastChallengeStatus),
		u.WeeklySuccessCount, u.WakeUpTime, u.DeviceToken)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}

func (t *pgTx) SaveTeam(ctx context.Context, team entities.Team) error {
	base, ok := t.teams[team.ID]
	if !ok {
		var err error
		if base, err = t.GetTeam(ctx, team.ID); err != nil {
			return err
		}
	}
	if err := saveTeamDelta(ctx, t.q, base, team); err != nil {
		return err
	}
	t.teams[team.ID] = team.Clone()
	return nil
}

func (t *pgTx) CreditMembers(ctx context.Context, credits map[string]int64) ([]string, error) {
	ids := make([]string, 0, len(credits))
	for id := range credits {
		ids = append(ids, id)
	}
	// Fixed lock order across transactions.
	sort.Strings(ids)

	var missing []string
	for _, id := range ids {
		var got string
		err := t.q.QueryRow(ctx, creditUserQuery, id, credits[id]).Scan(&got)
		if errors.Is(err, pgx.ErrNoRows) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("credit member %s: %w", id, err)
		}
	}
	return missing, nil
}

func scanUser(row pgx.Row) (entities.User, error) {
	var u entities.User
	var status string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.LPBalance, &u.TeamIDs, &status,
		&u.WeeklySuccessCount, &u.WakeUpTime, &u.DeviceToken)
	if err != nil {
		return entities.User{}, err
	}
	u.LastChallengeStatus = entities.ChallengeStatus(status)
	if u.TeamIDs == nil {
		u.TeamIDs = []string{}
	}
	return u, nil
}

func teamIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func loadTeam(ctx context.Context, q querier, query, teamID string) (entities.Team, error) {
	var t entities.Team
	err := q.QueryRow(ctx, query, teamID).Scan(&t.ID, &t.Name, &t.LPBalance, &t.TotalSuccessCount, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Team{}, entities.ErrTeamNotFound
	}
	if err != nil {
		return entities.Team{}, fmt.Errorf("get team: %w", err)
	}
	team := entities.NewTeam(t.ID, t.Name)
	team.LPBalance = t.LPBalance
	team.TotalSuccessCount = t.TotalSuccessCount
	team.CreatedAt = t.CreatedAt

	rows, err := q.Query(ctx, selectMembersQuery, teamID)
	if err != nil {
		return entities.Team{}, fmt.Errorf("get team members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entities.TeamMember
		if err := rows.Scan(&m.UserID, &m.WeeklySuccessCount); err != nil {
			return entities.Team{}, fmt.Errorf("scan team member: %w", err)
		}
		team.Members[m.UserID] = m
	}
	if err := rows.Err(); err != nil {
		return entities.Team{}, fmt.Errorf("iterate team members: %w", err)
	}

	days, err := q.Query(ctx, selectFailDaysQuery, teamID)
	if err != nil {
		return entities.Team{}, fmt.Errorf("get fail days: %w", err)
	}
	defer days.Close()
	for days.Next() {
		var day string
		if err := days.Scan(&day); err != nil {
			return entities.Team{}, fmt.Errorf("scan fail day: %w", err)
		}
		team.WeeklyFailDays[day] = true
	}
	if err := days.Err(); err != nil {
		return entities.Team{}, fmt.Errorf("iterate fail days: %w", err)
	}

	ach, err := q.Query(ctx, selectAchievementQuery, teamID)
	if err != nil {
		return entities.Team{}, fmt.Errorf("get achievements: %w", err)
	}
	defer ach.Close()
	for ach.Next() {
		var id string
		var at time.Time
		if err := ach.Scan(&id, &at); err != nil {
			return entities.Team{}, fmt.Errorf("scan achievement: %w", err)
		}
		team.Achievements[id] = at
	}
	if err := ach.Err(); err != nil {
		return entities.Team{}, fmt.Errorf("iterate achievements: %w", err)
	}

	return team, nil
}

// saveTeamDelta writes the difference between base, the state read in this
// transaction, and team. Counters are written as increments; only rows the
// body added or removed are inserted or deleted.
func saveTeamDelta(ctx context.Context, q querier, base, team entities.Team) error {
	tag, err := q.Exec(ctx, updateTeamQuery, team.ID, team.Name,
		team.LPBalance-base.LPBalance, team.TotalSuccessCount-base.TotalSuccessCount)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTeamNotFound
	}

	for _, id := range team.MemberIDs() {
		was, ok := base.Members[id]
		if !ok {
			if _, err := q.Exec(ctx, insertMemberIfAbsentQuery, team.ID, id, team.Members[id].WeeklySuccessCount); err != nil {
				return fmt.Errorf("insert team member: %w", err)
			}
			continue
		}
		if delta := team.Members[id].WeeklySuccessCount - was.WeeklySuccessCount; delta != 0 {
			if _, err := q.Exec(ctx, incrementMemberQuery, team.ID, id, delta); err != nil {
				return fmt.Errorf("update team member: %w", err)
			}
		}
	}
	for _, id := range base.MemberIDs() {
		if _, ok := team.Members[id]; ok {
			continue
		}
		if _, err := q.Exec(ctx, deleteMemberQuery, team.ID, id); err != nil {
			return fmt.Errorf("delete team member: %w", err)
		}
	}

	for day, failed := range team.WeeklyFailDays {
		if failed && !base.WeeklyFailDays[day] {
			if _, err := q.Exec(ctx, insertFailDayQuery, team.ID, day); err != nil {
				return fmt.Errorf("insert fail day: %w", err)
			}
		}
	}
	for day, failed := range base.WeeklyFailDays {
		if failed && !team.WeeklyFailDays[day] {
			if _, err := q.Exec(ctx, deleteFailDayQuery, team.ID, day); err != nil {
				return fmt.Errorf("delete fail day: %w", err)
			}
		}
	}

	for id, at := range team.Achievements {
		if base.HasAchievement(id) {
			continue
		}
		if _, err := q.Exec(ctx, insertAchievedQuery, team.ID, id, at); err != nil {
			return fmt.Errorf("insert achievement: %w", err)
		}
	}
	return nil
}
