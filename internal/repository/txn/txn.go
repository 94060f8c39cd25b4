// Package txn defines the transactional view of the entity store and the
// loop that re-executes bodies which lost an optimistic-concurrency race.
package txn

import (
	"context"

	"wake-up-challenge/internal/entities"
)

// ChallengeTx is the view of the entity store inside one atomic transaction.
// Reads observe staged writes of the same transaction; nothing is visible to
// other transactions until commit.
type ChallengeTx interface {
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetTeam(ctx context.Context, teamID string) (entities.Team, error)
	// GetChallenge returns nil when no record exists for id.
	GetChallenge(ctx context.Context, id string) (*entities.ChallengeRecord, error)
	PutChallenge(ctx context.Context, rec entities.ChallengeRecord) error
	SaveUser(ctx context.Context, user entities.User) error
	SaveTeam(ctx context.Context, team entities.Team) error
	// CreditMembers adds each amount to the member's LP and returns ids that no longer exist.
	CreditMembers(ctx context.Context, credits map[string]int64) ([]string, error)
}

// Func is a transaction body. It may run several times and must not have
// side effects outside tx.
type Func func(ctx context.Context, tx ChallengeTx) error
