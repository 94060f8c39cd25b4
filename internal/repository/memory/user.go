package memory

import (
	"context"
	"sort"

	"wake-up-challenge/internal/entities"
)

// CreateUser stores the profile, replacing any previous one.
func (m *Memory) CreateUser(_ context.Context, user entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = record[entities.User]{val: user.Clone(), version: m.next()}
	m.log.Infow("user created", "user_id", user.ID)
	return nil
}

// DeleteUser removes the profile and its member entries; aggregate counters stay.
func (m *Memory) DeleteUser(_ context.Context, userID string) (entities.DeletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := entities.DeletionResult{UserID: userID, TeamsCleaned: []string{}}
	r, ok := m.users[userID]
	if !ok {
		return res, nil
	}
	for _, teamID := range r.val.TeamIDs {
		t, ok := m.teams[teamID]
		if !ok {
			continue
		}
		if _, member := t.val.Members[userID]; !member {
			continue
		}
		team := t.val.Clone()
		delete(team.Members, userID)
		m.teams[teamID] = record[entities.Team]{val: team, version: m.next()}
		res.TeamsCleaned = append(res.TeamsCleaned, teamID)
	}
	delete(m.users, userID)
	m.log.Infow("user deleted", "user_id", userID, "teams_cleaned", res.TeamsCleaned)
	return res, nil
}

// GetUser returns a copy of the profile.
func (m *Memory) GetUser(_ context.Context, userID string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.users[userID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	u := r.val.Clone()
	return &u, nil
}

func (m *Memory) updateUser(userID string, fn func(u *entities.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.users[userID]
	if !ok {
		return entities.ErrUserNotFound
	}
	u := r.val.Clone()
	fn(&u)
	m.users[userID] = record[entities.User]{val: u, version: m.next()}
	return nil
}

// SetWakeUpTime updates the alarm time.
func (m *Memory) SetWakeUpTime(_ context.Context, userID, wakeUpTime string) error {
	return m.updateUser(userID, func(u *entities.User) { u.WakeUpTime = wakeUpTime })
}

// SetDeviceToken updates the push token.
func (m *Memory) SetDeviceToken(_ context.Context, userID, token string) error {
	return m.updateUser(userID, func(u *entities.User) { u.DeviceToken = token })
}

// UsersByWakeUpTime returns users whose alarm matches wakeUpTime, ordered by id.
func (m *Memory) UsersByWakeUpTime(_ context.Context, wakeUpTime string) ([]entities.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.Recipient, 0)
	for _, r := range m.users {
		if r.val.WakeUpTime == wakeUpTime {
			out = append(out, entities.Recipient{UserID: r.val.ID, DeviceToken: r.val.DeviceToken})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ClearDeviceToken removes token from every user holding it.
func (m *Memory) ClearDeviceToken(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.users {
		if token == "" || r.val.DeviceToken != token {
			continue
		}
		u := r.val.Clone()
		u.DeviceToken = ""
		m.users[id] = record[entities.User]{val: u, version: m.next()}
		n++
	}
	return n, nil
}

// ResetWeekly zeroes weekly counters and clears fail days.
func (m *Memory) ResetWeekly(_ context.Context) (entities.RolloverResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res entities.RolloverResult
	for id, r := range m.users {
		if r.val.WeeklySuccessCount == 0 {
			continue
		}
		u := r.val.Clone()
		u.WeeklySuccessCount = 0
		m.users[id] = record[entities.User]{val: u, version: m.next()}
		res.Users++
	}
	for id, r := range m.teams {
		team := r.val.Clone()
		changed := false
		for mid, member := range team.Members {
			if member.WeeklySuccessCount != 0 {
				member.WeeklySuccessCount = 0
				team.Members[mid] = member
				res.Members++
				changed = true
			}
		}
		if len(team.WeeklyFailDays) > 0 {
			res.FailDays += int64(len(team.WeeklyFailDays))
			team.WeeklyFailDays = map[string]bool{}
			changed = true
		}
		if changed {
			m.teams[id] = record[entities.Team]{val: team, version: m.next()}
		}
	}
	return res, nil
}
