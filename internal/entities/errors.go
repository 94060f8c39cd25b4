// Package entities contains core business entities and errors.
package entities

import "errors"

var (
	// ErrUnauthenticated is returned when no verified caller identity is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInternal hides store, transaction and transport failures from callers.
	ErrInternal = errors.New("internal error")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTeamNotFound signals missing team.
	ErrTeamNotFound = errors.New("team not found")
	// ErrMissionNotFound signals that no mission is configured for today.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrTeamExists signals team id conflict.
	ErrTeamExists = errors.New("team exists")
	// ErrTeamFull signals that joining would exceed the team size cap.
	ErrTeamFull = errors.New("team full")
	// ErrAlreadyMember signals a repeated join.
	ErrAlreadyMember = errors.New("already a team member")
	// ErrAlreadyReported signals a changed resubmission for a day that already has a result.
	ErrAlreadyReported = errors.New("result already reported for today")
	// ErrTxConflict is returned when optimistic-conflict retries are exhausted.
	ErrTxConflict = errors.New("transaction conflict")
)
