package memory

import (
	"context"
	"errors"
	"sort"

	"wake-up-challenge/internal/entities"
)

type kind uint8

const (
	kindUser kind = iota
	kindTeam
	kindChallenge
)

type readKey struct {
	kind kind
	id   string
}

type tx struct {
	m          *Memory
	reads      map[readKey]uint64
	users      map[string]entities.User
	teams      map[string]entities.Team
	challenges map[string]entities.ChallengeRecord
}

func newTx(m *Memory) *tx {
	return &tx{
		m:          m,
		reads:      map[readKey]uint64{},
		users:      map[string]entities.User{},
		teams:      map[string]entities.Team{},
		challenges: map[string]entities.ChallengeRecord{},
	}
}

// observe keeps the first version seen; absent records are version 0.
func (t *tx) observe(k readKey, version uint64) {
	if _, ok := t.reads[k]; !ok {
		t.reads[k] = version
	}
}

func (t *tx) GetUser(_ context.Context, userID string) (entities.User, error) {
	if u, ok := t.users[userID]; ok {
		return u.Clone(), nil
	}
	t.m.mu.Lock()
	r, ok := t.m.users[userID]
	t.m.mu.Unlock()

	t.observe(readKey{kindUser, userID}, r.version)
	if !ok {
		return entities.User{}, entities.ErrUserNotFound
	}
	return r.val.Clone(), nil
}

func (t *tx) GetTeam(_ context.Context, teamID string) (entities.Team, error) {
	if team, ok := t.teams[teamID]; ok {
		return team.Clone(), nil
	}
	t.m.mu.Lock()
	r, ok := t.m.teams[teamID]
	t.m.mu.Unlock()

	t.observe(readKey{kindTeam, teamID}, r.version)
	if !ok {
		return entities.Team{}, entities.ErrTeamNotFound
	}
	return r.val.Clone(), nil
}

func (t *tx) GetChallenge(_ context.Context, id string) (*entities.ChallengeRecord, error) {
	if rec, ok := t.challenges[id]; ok {
		return &rec, nil
	}
	t.m.mu.Lock()
	r, ok := t.m.challenges[id]
	t.m.mu.Unlock()

	t.observe(readKey{kindChallenge, id}, r.version)
	if !ok {
		return nil, nil
	}
	rec := r.val
	return &rec, nil
}

func (t *tx) PutChallenge(_ context.Context, rec entities.ChallengeRecord) error {
	t.challenges[rec.ID] = rec
	return nil
}

func (t *tx) SaveUser(_ context.Context, user entities.User) error {
	t.users[user.ID] = user.Clone()
	return nil
}

func (t *tx) SaveTeam(_ context.Context, team entities.Team) error {
	t.teams[team.ID] = team.Clone()
	return nil
}

func (t *tx) CreditMembers(ctx context.Context, credits map[string]int64) ([]string, error) {
	var missing []string
	for id, amount := range credits {
		u, err := t.GetUser(ctx, id)
		if errors.Is(err, entities.ErrUserNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		u.LPBalance += amount
		t.users[id] = u
	}
	sort.Strings(missing)
	return missing, nil
}

func (t *tx) current(k readKey) uint64 {
	switch k.kind {
	case kindUser:
		return t.m.users[k.id].version
	case kindTeam:
		return t.m.teams[k.id].version
	default:
		return t.m.challenges[k.id].version
	}
}

func (t *tx) commit() error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for k, seen := range t.reads {
		if t.current(k) != seen {
			return errConflict
		}
	}

	for id, u := range t.users {
		t.m.users[id] = record[entities.User]{val: u, version: t.m.next()}
	}
	for id, team := range t.teams {
		t.m.teams[id] = record[entities.Team]{val: team, version: t.m.next()}
	}
	for id, rec := range t.challenges {
		t.m.challenges[id] = record[entities.ChallengeRecord]{val: rec, version: t.m.next()}
	}
	return nil
}
