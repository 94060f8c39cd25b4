// Package entities contains core business entities.
package entities

import (
	"fmt"
	"time"
)

// ChallengeStatus enumerates a user's last reported outcome.
type ChallengeStatus string

const (
	// StatusPending marks a user with no result since creation or rollover.
	StatusPending ChallengeStatus = "pending"
	// StatusSuccess marks a successful wake-up.
	StatusSuccess ChallengeStatus = "success"
	// StatusFail marks a failed wake-up.
	StatusFail ChallengeStatus = "fail"
)

// ChallengeResult is a reported outcome; only success and fail are valid.
type ChallengeResult = ChallengeStatus

// ParseChallengeResult accepts exactly "success" or "fail".
func ParseChallengeResult(raw string) (ChallengeResult, error) {
	switch ChallengeStatus(raw) {
	case StatusSuccess, StatusFail:
		return ChallengeStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: result %q must be 'success' or 'fail'", ErrInvalidArgument, raw)
	}
}

const dateLayout = "2006-01-02"

// ChallengeKey identifies the single record a user may have per reporting day.
type ChallengeKey struct {
	ID     string
	Date   string
	UserID string
}

// NewChallengeKey normalises at to loc, truncates to the calendar date and joins it with the user id.
func NewChallengeKey(at time.Time, loc *time.Location, userID string) ChallengeKey {
	date := at.In(loc).Format(dateLayout)
	return ChallengeKey{
		ID:     date + "_" + userID,
		Date:   date,
		UserID: userID,
	}
}

// ChallengeRecord is the persisted daily outcome.
type ChallengeRecord struct {
	ID     string
	UserID string
	Date   string
	Status ChallengeStatus
}

// ChallengeOutcome is returned to the caller after a committed result.
type ChallengeOutcome struct {
	Accepted bool
	Result   ChallengeResult
	Date     string
	Replayed bool
	Granted  []string
}

// Mission is the configured pose challenge for the day.
type Mission map[string]any
