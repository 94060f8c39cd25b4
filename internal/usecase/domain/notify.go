// Package domain contains application services orchestrating scheduled jobs.
package domain

import (
	"context"
	"errors"
	"time"

	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/push"
)

const wakeUpDataType = "WAKE_UP_CHALLENGE"

// NotifyWakeUps pushes the wake-up message to every user whose alarm equals
// the minute of at. Transport failures are logged and not returned.
func (u *Usecase) NotifyWakeUps(ctx context.Context, at time.Time) (entities.NotifyReport, error) {
	report := entities.NotifyReport{Time: at.In(u.loc).Format("15:04")}

	recipients, err := u.repo.UsersByWakeUpTime(ctx, report.Time)
	if err != nil {
		u.log.Errorw("failed to query wake-up recipients", "error", err, "time", report.Time)
		return report, err
	}
	report.Matched = len(recipients)

	seen := make(map[string]struct{}, len(recipients))
	tokens := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.DeviceToken == "" {
			continue
		}
		if _, dup := seen[r.DeviceToken]; dup {
			continue
		}
		seen[r.DeviceToken] = struct{}{}
		tokens = append(tokens, r.DeviceToken)
	}
	report.Tokens = len(tokens)
	if len(tokens) == 0 {
		u.log.Debugw("no wake-up tokens", "time", report.Time, "matched", report.Matched)
		return report, nil
	}

	msg := push.Message{
		Title: u.notify.Title,
		Body:  u.notify.Body,
		Data:  map[string]string{"type": wakeUpDataType},
	}
	for _, batch := range push.Batches(tokens, u.notify.BatchSize) {
		resp, err := u.sender.SendMulticast(ctx, batch, msg)
		if err != nil {
			report.Failed += len(batch)
			if errors.Is(err, push.ErrUnavailable) {
				u.log.Warnw("push transport unavailable", "error", err, "tokens", len(batch))
			} else {
				u.log.Errorw("push batch failed", "error", err, "tokens", len(batch))
			}
			continue
		}
		report.Sent += resp.SuccessCount
		report.Failed += resp.FailureCount

		for _, r := range resp.Responses {
			if !push.IsTokenInvalid(r.Err) {
				continue
			}
			n, err := u.repo.ClearDeviceToken(ctx, r.Token)
			if err != nil {
				u.log.Warnw("failed to clear invalid token", "error", err)
				continue
			}
			report.Cleared += n
		}
	}

	u.log.Infow("wake-up notifications sent",
		"time", report.Time, "matched", report.Matched, "tokens", report.Tokens,
		"sent", report.Sent, "failed", report.Failed, "cleared", report.Cleared)
	return report, nil
}

// WeeklyRollover zeroes weekly counters and clears fail days.
func (u *Usecase) WeeklyRollover(ctx context.Context) (entities.RolloverResult, error) {
	res, err := u.repo.ResetWeekly(ctx)
	if err != nil {
		u.log.Errorw("weekly rollover failed", "error", err)
		return entities.RolloverResult{}, err
	}
	return res, nil
}
