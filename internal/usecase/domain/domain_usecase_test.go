package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wake-up-challenge/internal/aggregation"
	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/push"
	"wake-up-challenge/internal/repository"
	"wake-up-challenge/internal/repository/memory"
	"wake-up-challenge/internal/repository/txn"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

// 2026-10-17 08:30 KST.
var fixedNow = time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)

type senderMock struct{ mock.Mock }

func (m *senderMock) SendMulticast(ctx context.Context, tokens []string, msg push.Message) (push.BatchResponse, error) {
	args := m.Called(ctx, tokens, msg)
	return args.Get(0).(push.BatchResponse), args.Error(1)
}

// txRepo overrides the transaction runner of an otherwise real store.
type txRepo struct {
	repository.Repository
	run func(ctx context.Context, fn repository.TxFunc) error
}

func (r txRepo) RunChallengeTx(ctx context.Context, fn repository.TxFunc) error {
	return r.run(ctx, fn)
}

func newMemory(t *testing.T) *memory.Memory {
	t.Helper()
	m := memory.New(zap.NewNop().Sugar(), txn.Policy{MaxAttempts: 50, BaseDelay: time.Millisecond})
	require.NoError(t, m.OnStart(context.Background()))
	return m
}

func newUsecase(repo repository.Repository, sender push.Sender) *Usecase {
	return New(zap.NewNop().Sugar(), context.Background(), repo, Options{
		Timeout:      5 * time.Second,
		Engine:       aggregation.New(aggregation.DefaultRules(), aggregation.DefaultCatalogue()),
		Location:     seoul,
		Clock:        func() time.Time { return fixedNow },
		Sender:       sender,
		MaxTeamSize:  50,
		Notification: NotificationOptions{Title: "wake", Body: "up", BatchSize: 500},
	})
}

// seedTeam creates users and a team "t1" whose first member is the owner.
func seedTeam(t *testing.T, m *memory.Memory, total int64, members ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range members {
		require.NoError(t, m.CreateUser(ctx, entities.NewUser(id, "", "")))
	}
	_, err := m.CreateTeam(ctx, entities.NewTeam("t1", "team"), members[0])
	require.NoError(t, err)
	for _, id := range members[1:] {
		_, err := m.JoinTeam(ctx, "t1", id, 50)
		require.NoError(t, err)
	}
	require.NoError(t, m.RunChallengeTx(ctx, func(ctx context.Context, tx txn.ChallengeTx) error {
		team, err := tx.GetTeam(ctx, "t1")
		if err != nil {
			return err
		}
		team.TotalSuccessCount = total
		return tx.SaveTeam(ctx, team)
	}))
}

func mustUser(t *testing.T, m *memory.Memory, id string) *entities.User {
	t.Helper()
	u, err := m.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func mustTeam(t *testing.T, m *memory.Memory, id string) *entities.Team {
	t.Helper()
	team, err := m.GetTeam(context.Background(), id)
	require.NoError(t, err)
	return team
}

func TestProcessResult_TeamlessUser(t *testing.T) {
	cases := []struct {
		result string
		lp     int64
		weekly int64
	}{
		{"success", 100, 1},
		{"fail", -10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.result, func(t *testing.T) {
			m := newMemory(t)
			require.NoError(t, m.CreateUser(context.Background(), entities.NewUser("u1", "", "")))
			uc := newUsecase(m, nil)

			out, err := uc.ProcessResult(context.Background(), "u1", tc.result)
			require.NoError(t, err)
			require.True(t, out.Accepted)
			require.Equal(t, "2026-10-17", out.Date)
			require.False(t, out.Replayed)

			u := mustUser(t, m, "u1")
			require.Equal(t, tc.lp, u.LPBalance)
			require.Equal(t, entities.ChallengeStatus(tc.result), u.LastChallengeStatus)
			require.Equal(t, tc.weekly, u.WeeklySuccessCount)

			require.Equal(t, 1, m.ChallengeCount())
			rec, ok := m.Challenge("2026-10-17_u1")
			require.True(t, ok)
			require.Equal(t, entities.ChallengeStatus(tc.result), rec.Status)
		})
	}
}

func TestProcessResult_TeamSuccess(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 5, "u1", "u2")
	uc := newUsecase(m, nil)

	_, err := uc.ProcessResult(context.Background(), "u2", "success")
	require.NoError(t, err)

	team := mustTeam(t, m, "t1")
	require.Equal(t, int64(100), team.LPBalance)
	require.Equal(t, int64(6), team.TotalSuccessCount)
	require.Equal(t, int64(1), team.Members["u2"].WeeklySuccessCount)
	require.Zero(t, team.Members["u1"].WeeklySuccessCount)
	require.Empty(t, team.WeeklyFailDays)
	require.Equal(t, int64(100), mustUser(t, m, "u2").LPBalance)
}

func TestProcessResult_FailDayFlaggedOnce(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 0, "u1", "u2")
	uc := newUsecase(m, nil)

	_, err := uc.ProcessResult(context.Background(), "u1", "fail")
	require.NoError(t, err)
	_, err = uc.ProcessResult(context.Background(), "u2", "fail")
	require.NoError(t, err)

	team := mustTeam(t, m, "t1")
	require.Equal(t, map[string]bool{"2026-10-17": true}, team.WeeklyFailDays)
	require.Equal(t, int64(-20), team.LPBalance)
	require.Zero(t, team.TotalSuccessCount)
}

func TestProcessResult_ProofOfSleepFanOut(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 99, "u1", "u2", "u3")
	uc := newUsecase(m, nil)

	out, err := uc.ProcessResult(context.Background(), "u1", "success")
	require.NoError(t, err)
	require.Equal(t, []string{aggregation.ProofOfSleep}, out.Granted)

	team := mustTeam(t, m, "t1")
	require.Equal(t, int64(100), team.TotalSuccessCount)
	require.Equal(t, int64(1100), team.LPBalance)
	require.Equal(t, fixedNow, team.Achievements[aggregation.ProofOfSleep])

	require.Equal(t, int64(1100), mustUser(t, m, "u1").LPBalance)
	require.Equal(t, int64(1000), mustUser(t, m, "u2").LPBalance)
	require.Equal(t, int64(1000), mustUser(t, m, "u3").LPBalance)

	// Crossing again is impossible once granted.
	out, err = uc.ProcessResult(context.Background(), "u2", "success")
	require.NoError(t, err)
	require.Empty(t, out.Granted)
	require.Equal(t, int64(1100), mustUser(t, m, "u2").LPBalance)
}

func TestProcessResult_FanOutSkipsDeletedMember(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 99, "u1", "u2")
	ctx := context.Background()

	// Member entry left behind without a user record.
	require.NoError(t, m.RunChallengeTx(ctx, func(ctx context.Context, tx txn.ChallengeTx) error {
		team, err := tx.GetTeam(ctx, "t1")
		if err != nil {
			return err
		}
		team.Members["ghost"] = entities.TeamMember{UserID: "ghost"}
		return tx.SaveTeam(ctx, team)
	}))

	uc := newUsecase(m, nil)
	_, err := uc.ProcessResult(ctx, "u1", "success")
	require.NoError(t, err)
	require.Equal(t, int64(1000), mustUser(t, m, "u2").LPBalance)
	_, err = m.GetUser(ctx, "ghost")
	require.ErrorIs(t, err, entities.ErrUserNotFound)
}

func TestProcessResult_ConcurrentMembersNoLostUpdate(t *testing.T) {
	m := newMemory(t)
	members := make([]string, 12)
	for i := range members {
		members[i] = fmt.Sprintf("u%02d", i)
	}
	seedTeam(t, m, 0, members...)
	uc := newUsecase(m, nil)

	var wg sync.WaitGroup
	errs := make(chan error, len(members))
	for i, id := range members {
		result := "success"
		if i%3 == 0 {
			result = "fail"
		}
		wg.Add(1)
		go func(id, result string) {
			defer wg.Done()
			_, err := uc.ProcessResult(context.Background(), id, result)
			errs <- err
		}(id, result)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	team := mustTeam(t, m, "t1")
	require.Equal(t, int64(8), team.TotalSuccessCount)
	require.Equal(t, int64(8*100-4*10), team.LPBalance)
	require.True(t, team.WeeklyFailDays["2026-10-17"])
	require.Equal(t, len(members), m.ChallengeCount())
}

func TestProcessResult_InvalidResultWritesNothing(t *testing.T) {
	m := newMemory(t)
	require.NoError(t, m.CreateUser(context.Background(), entities.NewUser("u1", "", "")))
	uc := newUsecase(m, nil)

	_, err := uc.ProcessResult(context.Background(), "u1", "maybe")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	require.Contains(t, err.Error(), "maybe")
	require.Zero(t, m.ChallengeCount())
	require.Zero(t, mustUser(t, m, "u1").LPBalance)
}

func TestProcessResult_UnauthenticatedWritesNothing(t *testing.T) {
	called := false
	m := newMemory(t)
	uc := newUsecase(txRepo{Repository: m, run: func(context.Context, repository.TxFunc) error {
		called = true
		return nil
	}}, nil)

	_, err := uc.ProcessResult(context.Background(), "", "success")
	require.ErrorIs(t, err, entities.ErrUnauthenticated)
	require.False(t, called)
	require.Zero(t, m.ChallengeCount())
}

func TestProcessResult_Resubmission(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 0, "u1")
	uc := newUsecase(m, nil)
	ctx := context.Background()

	_, err := uc.ProcessResult(ctx, "u1", "success")
	require.NoError(t, err)

	out, err := uc.ProcessResult(ctx, "u1", "success")
	require.NoError(t, err)
	require.True(t, out.Replayed)
	require.Equal(t, int64(100), mustUser(t, m, "u1").LPBalance)
	require.Equal(t, int64(1), mustTeam(t, m, "t1").TotalSuccessCount)

	_, err = uc.ProcessResult(ctx, "u1", "fail")
	require.ErrorIs(t, err, entities.ErrAlreadyReported)
	require.Equal(t, int64(100), mustUser(t, m, "u1").LPBalance)
	rec, _ := m.Challenge("2026-10-17_u1")
	require.Equal(t, entities.StatusSuccess, rec.Status)
}

func TestProcessResult_MissingPrimaryTeamTreatedAsTeamless(t *testing.T) {
	m := newMemory(t)
	u := entities.NewUser("u1", "", "")
	u.TeamIDs = []string{"gone"}
	require.NoError(t, m.CreateUser(context.Background(), u))
	uc := newUsecase(m, nil)

	_, err := uc.ProcessResult(context.Background(), "u1", "success")
	require.NoError(t, err)
	require.Equal(t, int64(100), mustUser(t, m, "u1").LPBalance)
}

func TestProcessResult_StoreFailuresAreInternal(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		uc := newUsecase(newMemory(t), nil)
		_, err := uc.ProcessResult(context.Background(), "nobody", "success")
		require.ErrorIs(t, err, entities.ErrInternal)
	})
	t.Run("retry exhausted", func(t *testing.T) {
		m := newMemory(t)
		uc := newUsecase(txRepo{Repository: m, run: func(context.Context, repository.TxFunc) error {
			return entities.ErrTxConflict
		}}, nil)
		_, err := uc.ProcessResult(context.Background(), "u1", "success")
		require.ErrorIs(t, err, entities.ErrInternal)
		require.NotErrorIs(t, err, entities.ErrTxConflict)
	})
}

func TestTodayMission(t *testing.T) {
	m := newMemory(t)
	uc := newUsecase(m, nil)
	ctx := context.Background()

	_, err := uc.TodayMission(ctx, "")
	require.ErrorIs(t, err, entities.ErrUnauthenticated)
	_, err = uc.TodayMission(ctx, "u1")
	require.ErrorIs(t, err, entities.ErrMissionNotFound)

	require.NoError(t, m.SetTodayMission(ctx, entities.Mission{"poseName": "tree"}))
	mission, err := uc.TodayMission(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "tree", mission["poseName"])
}

func TestUserSettings(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	require.NoError(t, m.CreateUser(ctx, entities.NewUser("u1", "", "")))
	uc := newUsecase(m, nil)

	_, err := uc.SetWakeUpTime(ctx, "u1", "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	_, err = uc.SetWakeUpTime(ctx, "u1", "7:00")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	_, err = uc.SetWakeUpTime(ctx, "ghost", "07:00")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	got, err := uc.SetWakeUpTime(ctx, "u1", "06:45")
	require.NoError(t, err)
	require.Equal(t, "06:45", got)

	require.ErrorIs(t, uc.RegisterDeviceToken(ctx, "u1", " "), entities.ErrInvalidArgument)
	require.ErrorIs(t, uc.RegisterDeviceToken(ctx, "", "tok"), entities.ErrUnauthenticated)
	require.NoError(t, uc.RegisterDeviceToken(ctx, "u1", "tok"))

	u, err := uc.Profile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "06:45", u.WakeUpTime)
	require.Equal(t, "tok", u.DeviceToken)
}

func TestAccountLifecycle(t *testing.T) {
	m := newMemory(t)
	uc := newUsecase(m, nil)
	ctx := context.Background()

	_, err := uc.CreateAccount(ctx, "", "a@b.c", "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	u, err := uc.CreateAccount(ctx, "u1", "a@b.c", "")
	require.NoError(t, err)
	require.Equal(t, entities.DefaultDisplayName, u.DisplayName)
	require.Equal(t, entities.StatusPending, u.LastChallengeStatus)
	require.Zero(t, u.LPBalance)
	require.Empty(t, u.TeamIDs)

	u2, err := uc.CreateAccount(ctx, "u2", "", "<b>Kim</b> & Lee<script>x</script>")
	require.NoError(t, err)
	require.Equal(t, "Kim & Lee", u2.DisplayName)

	_, err = uc.CreateTeam(ctx, "u1", "t1", "morning")
	require.NoError(t, err)
	_, err = uc.JoinTeam(ctx, "u2", "t1")
	require.NoError(t, err)
	_, err = uc.ProcessResult(ctx, "u2", "success")
	require.NoError(t, err)

	res, err := uc.DeleteAccount(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, res.TeamsCleaned)

	team := mustTeam(t, m, "t1")
	require.Equal(t, []string{"u1"}, team.MemberIDs())
	require.Equal(t, int64(1), team.TotalSuccessCount)
	require.Equal(t, int64(100), team.LPBalance)
}

func TestTeams(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, m.CreateUser(ctx, entities.NewUser(id, "", "")))
	}
	uc := New(zap.NewNop().Sugar(), ctx, m, Options{Location: seoul, Clock: func() time.Time { return fixedNow }, MaxTeamSize: 2})

	_, err := uc.CreateTeam(ctx, "u1", "", " ")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	team, err := uc.CreateTeam(ctx, "u1", "", "birds")
	require.NoError(t, err)
	require.NotEmpty(t, team.ID)
	require.Equal(t, fixedNow, team.CreatedAt)

	_, err = uc.JoinTeam(ctx, "u2", team.ID)
	require.NoError(t, err)
	_, err = uc.JoinTeam(ctx, "u3", team.ID)
	require.ErrorIs(t, err, entities.ErrTeamFull)
	_, err = uc.JoinTeam(ctx, "u3", "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	got, err := uc.Team(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, got.MemberIDs())

	board, err := uc.Leaderboard(ctx, entities.LeaderboardFilter{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, board, 1)
}

func TestNotifyWakeUps(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		require.NoError(t, m.CreateUser(ctx, entities.NewUser(id, "", "")))
		require.NoError(t, m.SetWakeUpTime(ctx, id, "08:30"))
	}
	require.NoError(t, m.SetDeviceToken(ctx, "u1", "good"))
	require.NoError(t, m.SetDeviceToken(ctx, "u2", "stale"))
	require.NoError(t, m.SetDeviceToken(ctx, "u3", "good"))

	sender := &senderMock{}
	sender.On("SendMulticast", mock.Anything, []string{"good", "stale"}, mock.MatchedBy(func(msg push.Message) bool {
		return msg.Title == "wake" && msg.Data["type"] == "WAKE_UP_CHALLENGE"
	})).Return(push.BatchResponse{
		SuccessCount: 1,
		FailureCount: 1,
		Responses: []push.Result{
			{Token: "good"},
			{Token: "stale", Err: &push.TokenError{Code: "messaging/registration-token-not-registered"}},
		},
	}, nil).Once()

	uc := newUsecase(m, sender)
	report, err := uc.NotifyWakeUps(ctx, fixedNow)
	require.NoError(t, err)
	require.Equal(t, entities.NotifyReport{Time: "08:30", Matched: 4, Tokens: 2, Sent: 1, Failed: 1, Cleared: 1}, report)
	sender.AssertExpectations(t)

	require.Empty(t, mustUser(t, m, "u2").DeviceToken)
	require.Equal(t, "good", mustUser(t, m, "u1").DeviceToken)
}

func TestNotifyWakeUps_BatchesAndSwallowsTransportErrors(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	for i := 0; i < 501; i++ {
		id := fmt.Sprintf("u%03d", i)
		require.NoError(t, m.CreateUser(ctx, entities.NewUser(id, "", "")))
		require.NoError(t, m.SetWakeUpTime(ctx, id, "08:30"))
		require.NoError(t, m.SetDeviceToken(ctx, id, "tok-"+id))
	}

	sender := &senderMock{}
	sender.On("SendMulticast", mock.Anything, mock.MatchedBy(func(tokens []string) bool { return len(tokens) == 500 }), mock.Anything).
		Return(push.BatchResponse{}, fmt.Errorf("%w: dial", push.ErrUnavailable)).Once()
	sender.On("SendMulticast", mock.Anything, mock.MatchedBy(func(tokens []string) bool { return len(tokens) == 1 }), mock.Anything).
		Return(push.BatchResponse{SuccessCount: 1, Responses: []push.Result{{Token: "tok-u500"}}}, nil).Once()

	uc := newUsecase(m, sender)
	report, err := uc.NotifyWakeUps(ctx, fixedNow)
	require.NoError(t, err)
	require.Equal(t, 501, report.Tokens)
	require.Equal(t, 1, report.Sent)
	require.Equal(t, 500, report.Failed)
	require.Zero(t, report.Cleared)
	sender.AssertExpectations(t)
}

func TestNotifyWakeUps_NoRecipients(t *testing.T) {
	sender := &senderMock{}
	uc := newUsecase(newMemory(t), sender)

	report, err := uc.NotifyWakeUps(context.Background(), fixedNow)
	require.NoError(t, err)
	require.Zero(t, report.Matched)
	sender.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything)
}

func TestWeeklyRollover(t *testing.T) {
	m := newMemory(t)
	seedTeam(t, m, 0, "u1", "u2")
	uc := newUsecase(m, nil)
	ctx := context.Background()

	_, err := uc.ProcessResult(ctx, "u1", "success")
	require.NoError(t, err)
	_, err = uc.ProcessResult(ctx, "u2", "fail")
	require.NoError(t, err)

	res, err := uc.WeeklyRollover(ctx)
	require.NoError(t, err)
	require.Equal(t, entities.RolloverResult{Users: 1, Members: 1, FailDays: 1}, res)

	team := mustTeam(t, m, "t1")
	require.Equal(t, int64(1), team.TotalSuccessCount)
	require.Empty(t, team.WeeklyFailDays)
	require.Zero(t, mustUser(t, m, "u1").WeeklySuccessCount)
	require.Equal(t, int64(100), mustUser(t, m, "u1").LPBalance)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	require.False(t, ok)

	ctx2, cancel2 := withTimeout(context.Background(), time.Millisecond)
	defer cancel2()
	<-ctx2.Done()
	require.True(t, errors.Is(ctx2.Err(), context.DeadlineExceeded))
}
