package memory

import (
	"context"

	"wake-up-challenge/internal/entities"
)

// CreateTeam stores a new team with the owner as its first member.
func (m *Memory) CreateTeam(_ context.Context, team entities.Team, ownerID string) (*entities.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.teams[team.ID]; exists {
		return nil, entities.ErrTeamExists
	}
	owner, ok := m.users[ownerID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	t := entities.NewTeam(team.ID, team.Name)
	t.CreatedAt = team.CreatedAt
	t.Members[ownerID] = entities.TeamMember{UserID: ownerID}
	m.teams[t.ID] = record[entities.Team]{val: t, version: m.next()}

	u := owner.val.Clone()
	if !u.HasTeam(t.ID) {
		u.TeamIDs = append(u.TeamIDs, t.ID)
	}
	m.users[ownerID] = record[entities.User]{val: u, version: m.next()}

	m.log.Infow("team created", "team_id", t.ID, "owner", ownerID)
	out := t.Clone()
	return &out, nil
}

// JoinTeam adds userID to the team and appends the team to the user's memberships.
func (m *Memory) JoinTeam(_ context.Context, teamID, userID string, maxSize int) (*entities.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.teams[teamID]
	if !ok {
		return nil, entities.ErrTeamNotFound
	}
	ur, ok := m.users[userID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	if _, member := tr.val.Members[userID]; member {
		return nil, entities.ErrAlreadyMember
	}
	if len(tr.val.Members) >= maxSize {
		return nil, entities.ErrTeamFull
	}

	team := tr.val.Clone()
	team.Members[userID] = entities.TeamMember{UserID: userID}
	m.teams[teamID] = record[entities.Team]{val: team, version: m.next()}

	u := ur.val.Clone()
	if !u.HasTeam(teamID) {
		u.TeamIDs = append(u.TeamIDs, teamID)
	}
	m.users[userID] = record[entities.User]{val: u, version: m.next()}

	m.log.Infow("team joined", "team_id", teamID, "user_id", userID, "members", len(team.Members))
	out := team.Clone()
	return &out, nil
}

// GetTeam returns a copy of the team.
func (m *Memory) GetTeam(_ context.Context, teamID string) (*entities.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.teams[teamID]
	if !ok {
		return nil, entities.ErrTeamNotFound
	}
	t := r.val.Clone()
	return &t, nil
}
