// Package domain contains application Usecases orchestrating domain logic by team.
package domain

import (
	"context"
	"fmt"
	"strings"

	"wake-up-challenge/internal/entities"

	"github.com/google/uuid"
)

// CreateTeam creates a team owned by ownerID. An empty teamID is generated.
func (u *Usecase) CreateTeam(ctx context.Context, ownerID, teamID, name string) (*entities.Team, error) {
	if ownerID == "" {
		return nil, entities.ErrUnauthenticated
	}
	name = u.sanitize(name)
	if name == "" {
		u.log.Errorw("failed to create team: missing name")
		return nil, fmt.Errorf("%w: name is required", entities.ErrInvalidArgument)
	}
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		teamID = uuid.NewString()
	}

	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team := entities.NewTeam(teamID, name)
	team.CreatedAt = u.now().UTC()
	return u.repo.CreateTeam(ctx, team, ownerID)
}

// JoinTeam adds the caller to teamID.
func (u *Usecase) JoinTeam(ctx context.Context, userID, teamID string) (*entities.Team, error) {
	if userID == "" {
		return nil, entities.ErrUnauthenticated
	}
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", entities.ErrInvalidArgument)
	}
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	return u.repo.JoinTeam(ctx, teamID, userID, u.maxTeamSize)
}

// Team returns team by id.
func (u *Usecase) Team(ctx context.Context, teamID string) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if teamID == "" {
		u.log.Errorw("failed to get team: missing team id")
		return nil, fmt.Errorf("%w: team id is required", entities.ErrInvalidArgument)
	}
	return u.repo.GetTeam(ctx, teamID)
}
