package aggregation

import (
	"testing"
	"time"

	"wake-up-challenge/internal/entities"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 17, 6, 30, 0, 0, time.UTC)

func newEngine() *Engine {
	return New(DefaultRules(), DefaultCatalogue())
}

func teamWith(total int64, members ...string) *entities.Team {
	t := entities.NewTeam("t1", "early birds")
	t.TotalSuccessCount = total
	for _, m := range members {
		t.Members[m] = entities.TeamMember{UserID: m}
	}
	return &t
}

func TestEvaluate_NoTeam(t *testing.T) {
	tests := []struct {
		name       string
		result     entities.ChallengeResult
		wantLP     int64
		wantWeekly int64
	}{
		{name: "success", result: entities.StatusSuccess, wantLP: 100, wantWeekly: 1},
		{name: "fail", result: entities.StatusFail, wantLP: -10, wantWeekly: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			user := entities.NewUser("u1", "", "")
			plan := newEngine().Evaluate(Input{User: user, Result: tt.result, Date: "2026-10-17", Now: now})

			require.Nil(t, plan.Team)
			require.Empty(t, plan.Credits)
			require.Equal(t, tt.wantLP, plan.User.LPDelta)
			require.Equal(t, tt.wantWeekly, plan.User.WeeklySuccessDelta)

			applied := plan.ApplyUser(user)
			require.Equal(t, tt.wantLP, applied.LPBalance)
			require.Equal(t, tt.result, applied.LastChallengeStatus)
		})
	}
}

func TestEvaluate_LPMayGoNegative(t *testing.T) {
	user := entities.NewUser("u1", "", "")
	plan := newEngine().Evaluate(Input{User: user, Result: entities.StatusFail, Date: "2026-10-17", Now: now})
	require.Equal(t, int64(-10), plan.ApplyUser(user).LPBalance)
}

func TestEvaluate_TeamSuccess(t *testing.T) {
	user := entities.NewUser("u1", "", "")
	team := teamWith(10, "u1", "u2")

	plan := newEngine().Evaluate(Input{User: user, Team: team, Result: entities.StatusSuccess, Date: "2026-10-17", Now: now})
	require.NotNil(t, plan.Team)
	require.Equal(t, int64(100), plan.Team.LPDelta)
	require.Equal(t, int64(1), plan.Team.TotalSuccessDelta)
	require.Equal(t, int64(1), plan.Team.MemberSuccessDelta)
	require.Empty(t, plan.Team.Grants)

	applied := plan.ApplyTeam(*team)
	require.Equal(t, int64(11), applied.TotalSuccessCount)
	require.Equal(t, int64(1), applied.Members["u1"].WeeklySuccessCount)
	require.Equal(t, int64(0), applied.Members["u2"].WeeklySuccessCount)
	require.Equal(t, int64(100), applied.LPBalance)
	require.Equal(t, int64(10), team.TotalSuccessCount, "snapshot must not be mutated")
}

func TestEvaluate_TeamFailFlagsDayOnce(t *testing.T) {
	user := entities.NewUser("u1", "", "")
	team := teamWith(0, "u1", "u2")

	plan := newEngine().Evaluate(Input{User: user, Team: team, Result: entities.StatusFail, Date: "2026-10-17", Now: now})
	require.Equal(t, "2026-10-17", plan.Team.FailDay)
	require.Equal(t, int64(-10), plan.Team.LPDelta)
	require.Zero(t, plan.Team.TotalSuccessDelta)

	flagged := plan.ApplyTeam(*team)
	require.True(t, flagged.WeeklyFailDays["2026-10-17"])

	second := newEngine().Evaluate(Input{User: entities.NewUser("u2", "", ""), Team: &flagged, Result: entities.StatusFail, Date: "2026-10-17", Now: now})
	require.Empty(t, second.Team.FailDay)
	require.Len(t, second.ApplyTeam(flagged).WeeklyFailDays, 1)
}

func TestEvaluate_ProofOfSleepFansOut(t *testing.T) {
	user := entities.NewUser("u1", "", "")
	team := teamWith(99, "u1", "u2", "u3")

	plan := newEngine().Evaluate(Input{User: user, Team: team, Result: entities.StatusSuccess, Date: "2026-10-17", Now: now})
	require.Equal(t, []string{ProofOfSleep}, plan.Granted())
	require.Equal(t, int64(1100), plan.User.LPDelta)
	require.Equal(t, int64(1100), plan.Team.LPDelta)
	require.Equal(t, []Credit{
		{UserID: "u2", Amount: 1000, AchievementID: ProofOfSleep},
		{UserID: "u3", Amount: 1000, AchievementID: ProofOfSleep},
	}, plan.Credits)

	applied := plan.ApplyTeam(*team)
	require.Equal(t, int64(100), applied.TotalSuccessCount)
	require.Equal(t, now, applied.Achievements[ProofOfSleep])

	next := newEngine().Evaluate(Input{User: user, Team: &applied, Result: entities.StatusSuccess, Date: "2026-10-18", Now: now})
	require.Empty(t, next.Granted())
	require.Empty(t, next.Credits)
	require.Equal(t, int64(100), next.User.LPDelta)
}

func TestEvaluate_AlreadyGrantedNeverRefires(t *testing.T) {
	user := entities.NewUser("u1", "", "")
	team := teamWith(99, "u1")
	team.Achievements[ProofOfSleep] = now.Add(-time.Hour)

	plan := newEngine().Evaluate(Input{User: user, Team: team, Result: entities.StatusSuccess, Date: "2026-10-17", Now: now})
	require.Empty(t, plan.Granted())
}

func TestEvaluate_SubmitterOutsideMemberMap(t *testing.T) {
	user := entities.NewUser("ghost", "", "")
	team := teamWith(99, "u2")

	plan := newEngine().Evaluate(Input{User: user, Team: team, Result: entities.StatusSuccess, Date: "2026-10-17", Now: now})
	require.Zero(t, plan.Team.MemberSuccessDelta)
	require.Equal(t, int64(100), plan.User.LPDelta)
	require.Equal(t, []Credit{{UserID: "u2", Amount: 1000, AchievementID: ProofOfSleep}}, plan.Credits)
}

func TestEvaluate_CustomCatalogue(t *testing.T) {
	cat, err := NewCatalogue(
		Definition{ID: "first", Predicate: Crossed(1), Reward: 5},
		Definition{ID: "tenth", Predicate: Crossed(10), Reward: 50},
	)
	require.NoError(t, err)
	engine := New(Rules{SuccessLP: 10, FailLP: -1}, cat)

	plan := engine.Evaluate(Input{User: entities.NewUser("u1", "", ""), Team: teamWith(0, "u1"), Result: entities.StatusSuccess, Date: "2026-10-17", Now: now})
	require.Equal(t, []string{"first"}, plan.Granted())
	require.Equal(t, int64(15), plan.User.LPDelta)
}
