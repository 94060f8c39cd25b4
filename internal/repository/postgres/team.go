package postgres

import (
	"context"
	"errors"
	"fmt"

	"wake-up-challenge/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	insertTeamQuery     = `INSERT INTO teams(id, name, created_at) VALUES ($1, $2, $3)`
	insertMemberQuery   = `INSERT INTO team_members(team_id, user_id) VALUES ($1, $2)`
	countMembersQuery   = `SELECT COUNT(*) FROM team_members WHERE team_id=$1`
	memberExistsQuery   = `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id=$1 AND user_id=$2)`
	appendTeamIDQuery   = `UPDATE users SET team_ids = array_append(team_ids, $2) WHERE id=$1 AND NOT ($2 = ANY(team_ids))`
	lockTeamExistsQuery = `SELECT id FROM teams WHERE id=$1 FOR UPDATE`
)

// CreateTeam inserts a team with the owner as its first member.
func (p *Postgres) CreateTeam(ctx context.Context, team entities.Team, ownerID string) (*entities.Team, error) {
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		var teams []string
		if err := tx.QueryRow(ctx, lockUserTeamsQuery, ownerID).Scan(&teams); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entities.ErrUserNotFound
			}
			return fmt.Errorf("lock owner: %w", err)
		}

		if _, err := tx.Exec(ctx, insertTeamQuery, team.ID, team.Name, team.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return entities.ErrTeamExists
			}
			return fmt.Errorf("insert team: %w", err)
		}
		if _, err := tx.Exec(ctx, insertMemberQuery, team.ID, ownerID); err != nil {
			return fmt.Errorf("insert owner: %w", err)
		}
		if _, err := tx.Exec(ctx, appendTeamIDQuery, ownerID, team.ID); err != nil {
			return fmt.Errorf("append membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Infow("team created", "team_id", team.ID, "owner", ownerID)
	return p.GetTeam(ctx, team.ID)
}

// JoinTeam adds userID to the team unless it is full.
func (p *Postgres) JoinTeam(ctx context.Context, teamID, userID string, maxSize int) (*entities.Team, error) {
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, lockTeamExistsQuery, teamID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entities.ErrTeamNotFound
			}
			return fmt.Errorf("lock team: %w", err)
		}
		var teams []string
		if err := tx.QueryRow(ctx, lockUserTeamsQuery, userID).Scan(&teams); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entities.ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}

		var member bool
		if err := tx.QueryRow(ctx, memberExistsQuery, teamID, userID).Scan(&member); err != nil {
			return fmt.Errorf("check member: %w", err)
		}
		if member {
			return entities.ErrAlreadyMember
		}
		var size int
		if err := tx.QueryRow(ctx, countMembersQuery, teamID).Scan(&size); err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		if size >= maxSize {
			return entities.ErrTeamFull
		}

		if _, err := tx.Exec(ctx, insertMemberQuery, teamID, userID); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
		if _, err := tx.Exec(ctx, appendTeamIDQuery, userID, teamID); err != nil {
			return fmt.Errorf("append membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Infow("team joined", "team_id", teamID, "user_id", userID)
	return p.GetTeam(ctx, teamID)
}

// GetTeam fetches a team with members, fail days and achievements.
func (p *Postgres) GetTeam(ctx context.Context, teamID string) (*entities.Team, error) {
	team, err := loadTeam(ctx, p.db, selectTeamQuery, teamID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}
