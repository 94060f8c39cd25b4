// Package aggregation computes the write set of a daily challenge result.
//
// Everything here is pure: the caller supplies the snapshot read inside its
// transaction and the request clock, and persists the returned Plan.
package aggregation

import (
	"time"

	"wake-up-challenge/internal/entities"
)

// Rules holds the LP deltas of each outcome.
type Rules struct {
	SuccessLP int64
	FailLP    int64
}

// DefaultRules are +100 for a success and -10 for a failure.
func DefaultRules() Rules {
	return Rules{SuccessLP: 100, FailLP: -10}
}

// Input is the snapshot a plan is computed from.
type Input struct {
	User   entities.User
	Team   *entities.Team
	Result entities.ChallengeResult
	Date   string
	Now    time.Time
}

// UserUpdate is the change applied to the submitting user.
type UserUpdate struct {
	UserID             string
	LPDelta            int64
	Status             entities.ChallengeStatus
	WeeklySuccessDelta int64
}

// Grant is an achievement fired by this result.
type Grant struct {
	AchievementID string
	Reward        int64
	GrantedAt     time.Time
	Scope         Scope
}

// TeamUpdate is the change applied to the primary team.
type TeamUpdate struct {
	TeamID             string
	LPDelta            int64
	MemberSuccessDelta int64
	TotalSuccessDelta  int64
	FailDay            string
	Grants             []Grant
}

// Credit is a reward paid to a teammate other than the submitter.
type Credit struct {
	UserID        string
	Amount        int64
	AchievementID string
}

// Plan is the ordered write set: user, then team, then teammate credits.
type Plan struct {
	User    UserUpdate
	Team    *TeamUpdate
	Credits []Credit
}

// Granted returns the ids of the achievements fired by the plan.
func (p Plan) Granted() []string {
	if p.Team == nil {
		return nil
	}
	ids := make([]string, 0, len(p.Team.Grants))
	for _, g := range p.Team.Grants {
		ids = append(ids, g.AchievementID)
	}
	return ids
}

// Engine evaluates results against rules and an achievement catalogue.
type Engine struct {
	rules     Rules
	catalogue Catalogue
}

// New builds an engine.
func New(rules Rules, catalogue Catalogue) *Engine {
	return &Engine{rules: rules, catalogue: catalogue}
}

// Evaluate computes the plan for one result.
func (e *Engine) Evaluate(in Input) Plan {
	success := in.Result == entities.StatusSuccess

	lpDelta := e.rules.FailLP
	if success {
		lpDelta = e.rules.SuccessLP
	}

	plan := Plan{User: UserUpdate{
		UserID:  in.User.ID,
		LPDelta: lpDelta,
		Status:  in.Result,
	}}
	if success {
		plan.User.WeeklySuccessDelta = 1
	}

	if in.Team == nil {
		return plan
	}
	team := in.Team

	tu := &TeamUpdate{TeamID: team.ID, LPDelta: lpDelta}
	plan.Team = tu

	if !success {
		if !team.WeeklyFailDays[in.Date] {
			tu.FailDay = in.Date
		}
		return plan
	}

	if _, ok := team.Members[in.User.ID]; ok {
		tu.MemberSuccessDelta = 1
	}
	tu.TotalSuccessDelta = 1

	counters := Counters{
		TotalSuccessBefore: team.TotalSuccessCount,
		TotalSuccessAfter:  team.TotalSuccessCount + tu.TotalSuccessDelta,
	}
	for _, def := range e.catalogue.defs {
		if team.HasAchievement(def.ID) || !def.Predicate(counters) {
			continue
		}
		tu.Grants = append(tu.Grants, Grant{
			AchievementID: def.ID,
			Reward:        def.Reward,
			GrantedAt:     in.Now,
			Scope:         def.Scope,
		})
		tu.LPDelta += def.Reward
		for _, memberID := range team.MemberIDs() {
			if memberID == in.User.ID {
				plan.User.LPDelta += def.Reward
				continue
			}
			plan.Credits = append(plan.Credits, Credit{
				UserID:        memberID,
				Amount:        def.Reward,
				AchievementID: def.ID,
			})
		}
	}

	return plan
}

// ApplyUser returns u with the user update applied.
func (p Plan) ApplyUser(u entities.User) entities.User {
	out := u.Clone()
	out.LPBalance += p.User.LPDelta
	out.LastChallengeStatus = p.User.Status
	out.WeeklySuccessCount += p.User.WeeklySuccessDelta
	return out
}

// ApplyTeam returns t with the team update applied.
func (p Plan) ApplyTeam(t entities.Team) entities.Team {
	out := t.Clone()
	if p.Team == nil {
		return out
	}
	out.LPBalance += p.Team.LPDelta
	out.TotalSuccessCount += p.Team.TotalSuccessDelta
	if p.Team.MemberSuccessDelta != 0 {
		if m, ok := out.Members[p.User.UserID]; ok {
			m.WeeklySuccessCount += p.Team.MemberSuccessDelta
			out.Members[p.User.UserID] = m
		}
	}
	if p.Team.FailDay != "" {
		out.WeeklyFailDays[p.Team.FailDay] = true
	}
	for _, g := range p.Team.Grants {
		out.Achievements[g.AchievementID] = g.GrantedAt
	}
	return out
}
