// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"sort"
	"time"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/entities"
)

// ToAPIUser maps entities.User to transport model. The device token itself is never exposed.
func ToAPIUser(u entities.User) api.User {
	teamIDs := u.TeamIDs
	if teamIDs == nil {
		teamIDs = []string{}
	}
	return api.User{
		UserId:              u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		LpBalance:           u.LPBalance,
		TeamIds:             teamIDs,
		LastChallengeStatus: string(u.LastChallengeStatus),
		WeeklySuccessCount:  u.WeeklySuccessCount,
		WakeUpTime:          u.WakeUpTime,
		HasDeviceToken:      u.DeviceToken != "",
	}
}

// ToAPITeam maps entities.Team to transport model.
func ToAPITeam(team entities.Team) api.Team {
	members := make([]api.TeamMember, 0, len(team.Members))
	for _, id := range team.MemberIDs() {
		members = append(members, api.TeamMember{
			UserId:             id,
			WeeklySuccessCount: team.Members[id].WeeklySuccessCount,
		})
	}

	days := make([]string, 0, len(team.WeeklyFailDays))
	for day, failed := range team.WeeklyFailDays {
		if failed {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	achievements := make(map[string]time.Time, len(team.Achievements))
	for id, at := range team.Achievements {
		achievements[id] = at
	}

	return api.Team{
		TeamId:            team.ID,
		Name:              team.Name,
		LpBalance:         team.LPBalance,
		TotalSuccessCount: team.TotalSuccessCount,
		WeeklyFailDays:    days,
		Achievements:      achievements,
		Members:           members,
	}
}

// ToAPIChallengeResult maps a committed outcome to the response body.
func ToAPIChallengeResult(out entities.ChallengeOutcome) api.ChallengeResult {
	granted := out.Granted
	if granted == nil {
		granted = []string{}
	}
	return api.ChallengeResult{
		Success:  out.Accepted,
		Result:   string(out.Result),
		Date:     out.Date,
		Replayed: out.Replayed,
		Granted:  granted,
	}
}
