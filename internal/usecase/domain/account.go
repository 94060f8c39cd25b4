// Package domain contains application Usecases orchestrating domain logic by account.
package domain

import (
	"context"
	"fmt"
	"html"
	"strings"

	"wake-up-challenge/internal/entities"
)

// CreateAccount creates the zeroed profile of a newly registered account.
func (u *Usecase) CreateAccount(ctx context.Context, uid, email, displayName string) (*entities.User, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", entities.ErrInvalidArgument)
	}
	user := entities.NewUser(uid, strings.TrimSpace(email), u.sanitize(displayName))

	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the profile and its team member entries.
func (u *Usecase) DeleteAccount(ctx context.Context, uid string) (entities.DeletionResult, error) {
	if uid == "" {
		return entities.DeletionResult{}, fmt.Errorf("%w: uid is required", entities.ErrInvalidArgument)
	}
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	return u.repo.DeleteUser(ctx, uid)
}

// sanitize strips markup from user-supplied names.
func (u *Usecase) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(u.policy.Sanitize(s)))
}
