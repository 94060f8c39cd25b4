// Package domain contains application Usecases orchestrating domain logic by user.
package domain

import (
	"context"
	"fmt"
	"strings"

	"wake-up-challenge/internal/entities"
)

// Profile returns the caller's user record.
func (u *Usecase) Profile(ctx context.Context, userID string) (*entities.User, error) {
	if userID == "" {
		return nil, entities.ErrUnauthenticated
	}
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	return u.repo.GetUser(ctx, userID)
}

// SetWakeUpTime validates and stores the caller's alarm time.
func (u *Usecase) SetWakeUpTime(ctx context.Context, userID, raw string) (string, error) {
	if userID == "" {
		return "", entities.ErrUnauthenticated
	}
	wakeUpTime, err := entities.ParseWakeUpTime(raw)
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.repo.SetWakeUpTime(ctx, userID, wakeUpTime); err != nil {
		return "", err
	}
	u.log.Infow("wake-up time set", "user_id", userID, "wake_up_time", wakeUpTime)
	return wakeUpTime, nil
}

// RegisterDeviceToken stores the caller's push token.
func (u *Usecase) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return entities.ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: fcmToken is required", entities.ErrInvalidArgument)
	}

	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	return u.repo.SetDeviceToken(ctx, userID, token)
}
