// Package entities contains core business entities.
package entities

import (
	"fmt"
	"time"
)

// DefaultDisplayName is assigned when the identity provider has no display name.
const DefaultDisplayName = "신규 유저"

// User is a challenge participant.
type User struct {
	ID                  string
	Email               string
	DisplayName         string
	LPBalance           int64
	TeamIDs             []string
	LastChallengeStatus ChallengeStatus
	WeeklySuccessCount  int64
	WakeUpTime          string
	DeviceToken         string
}

// PrimaryTeamID returns the first membership, the only team a result is aggregated into.
func (u User) PrimaryTeamID() (string, bool) {
	if len(u.TeamIDs) == 0 || u.TeamIDs[0] == "" {
		return "", false
	}
	return u.TeamIDs[0], true
}

// HasTeam reports whether teamID is among the user's memberships.
func (u User) HasTeam(teamID string) bool {
	for _, id := range u.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the membership slice.
func (u User) Clone() User {
	c := u
	c.TeamIDs = append([]string{}, u.TeamIDs...)
	return c
}

// NewUser returns the profile created on account creation with all counters zeroed.
func NewUser(id, email, displayName string) User {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return User{
		ID:                  id,
		Email:               email,
		DisplayName:         displayName,
		TeamIDs:             []string{},
		LastChallengeStatus: StatusPending,
	}
}

// Recipient is a user matched by the wake-up notification job.
type Recipient struct {
	UserID      string
	DeviceToken string
}

// ParseWakeUpTime validates an "HH:MM" alarm time.
func ParseWakeUpTime(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: wakeUpTime is required", ErrInvalidArgument)
	}
	t, err := time.Parse("15:04", raw)
	if err != nil || len(raw) != 5 {
		return "", fmt.Errorf("%w: wakeUpTime %q must be HH:MM", ErrInvalidArgument, raw)
	}
	return t.Format("15:04"), nil
}
