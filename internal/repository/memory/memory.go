// Package memory implements the repository in process memory with optimistic
// concurrency: every record carries a version, transactions remember the
// versions they read and commit only if none of them moved.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/repository/txn"

	"go.uber.org/zap"
)

var errConflict = errors.New("memory: read set changed before commit")

type record[T any] struct {
	val     T
	version uint64
}

// Memory is a versioned in-process entity store.
type Memory struct {
	log    *zap.SugaredLogger
	policy txn.Policy

	mu         sync.Mutex
	seq        uint64
	users      map[string]record[entities.User]
	teams      map[string]record[entities.Team]
	challenges map[string]record[entities.ChallengeRecord]
	mission    entities.Mission
}

// New creates an empty store.
func New(log *zap.SugaredLogger, policy txn.Policy) *Memory {
	return &Memory{
		log:        log.Named("repo.memory"),
		policy:     policy,
		users:      map[string]record[entities.User]{},
		teams:      map[string]record[entities.Team]{},
		challenges: map[string]record[entities.ChallengeRecord]{},
	}
}

// OnStart is a no-op.
func (m *Memory) OnStart(_ context.Context) error {
	m.log.Infow("memory store ready")
	return nil
}

// OnStop is a no-op.
func (m *Memory) OnStop(_ context.Context) error { return nil }

// RunChallengeTx executes fn against a fresh transaction until it commits.
func (m *Memory) RunChallengeTx(ctx context.Context, fn txn.Func) error {
	attempt := 0
	return txn.Do(ctx, m.policy, isConflict, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			m.log.Debugw("transaction retry", "attempt", attempt)
		}
		t := newTx(m)
		if err := fn(ctx, t); err != nil {
			return err
		}
		return t.commit()
	})
}

func isConflict(err error) bool { return errors.Is(err, errConflict) }

// next must be called with mu held.
func (m *Memory) next() uint64 {
	m.seq++
	return m.seq
}

// Challenge returns a stored record; used by tests and diagnostics.
func (m *Memory) Challenge(id string) (entities.ChallengeRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.challenges[id]
	return r.val, ok
}

// ChallengeCount returns how many daily records exist.
func (m *Memory) ChallengeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.challenges)
}

// TodayMission returns the configured mission.
func (m *Memory) TodayMission(_ context.Context) (entities.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mission == nil {
		return nil, entities.ErrMissionNotFound
	}
	out := make(entities.Mission, len(m.mission))
	for k, v := range m.mission {
		out[k] = v
	}
	return out, nil
}

// SetTodayMission replaces the configured mission.
func (m *Memory) SetTodayMission(_ context.Context, mission entities.Mission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mission = make(entities.Mission, len(mission))
	for k, v := range mission {
		m.mission[k] = v
	}
	return nil
}

// TeamLeaderboard orders teams by LP, then total successes.
func (m *Memory) TeamLeaderboard(_ context.Context, filter entities.LeaderboardFilter) ([]entities.TeamStat, error) {
	m.mu.Lock()
	stats := make([]entities.TeamStat, 0, len(m.teams))
	for _, r := range m.teams {
		stats = append(stats, entities.TeamStat{
			TeamID:            r.val.ID,
			Name:              r.val.Name,
			LPBalance:         r.val.LPBalance,
			TotalSuccessCount: r.val.TotalSuccessCount,
			MemberCount:       len(r.val.Members),
			Achievements:      len(r.val.Achievements),
		})
	}
	m.mu.Unlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].LPBalance != stats[j].LPBalance {
			return stats[i].LPBalance > stats[j].LPBalance
		}
		if stats[i].TotalSuccessCount != stats[j].TotalSuccessCount {
			return stats[i].TotalSuccessCount > stats[j].TotalSuccessCount
		}
		return stats[i].TeamID < stats[j].TeamID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
