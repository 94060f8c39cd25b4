// Package entities contains core business entities.
package entities

import (
	"sort"
	"time"
)

// TeamMember is the per-member slice of team state.
type TeamMember struct {
	UserID             string
	WeeklySuccessCount int64
}

// Team aggregates members' daily outcomes.
type Team struct {
	ID                string
	Name              string
	LPBalance         int64
	Members           map[string]TeamMember
	TotalSuccessCount int64
	WeeklyFailDays    map[string]bool
	Achievements      map[string]time.Time
	CreatedAt         time.Time
}

// NewTeam returns an empty team with initialised maps.
func NewTeam(id, name string) Team {
	return Team{
		ID:             id,
		Name:           name,
		Members:        map[string]TeamMember{},
		WeeklyFailDays: map[string]bool{},
		Achievements:   map[string]time.Time{},
	}
}

// MemberIDs returns member ids in a stable order.
func (t Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for id := range t.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasAchievement reports whether id was already granted.
func (t Team) HasAchievement(id string) bool {
	_, ok := t.Achievements[id]
	return ok
}

// Clone returns a deep copy so snapshots can be mutated without aliasing.
func (t Team) Clone() Team {
	c := t
	c.Members = make(map[string]TeamMember, len(t.Members))
	for k, v := range t.Members {
		c.Members[k] = v
	}
	c.WeeklyFailDays = make(map[string]bool, len(t.WeeklyFailDays))
	for k, v := range t.WeeklyFailDays {
		c.WeeklyFailDays[k] = v
	}
	c.Achievements = make(map[string]time.Time, len(t.Achievements))
	for k, v := range t.Achievements {
		c.Achievements[k] = v
	}
	return c
}
