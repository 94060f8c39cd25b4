// Package domain contains application Usecases orchestrating domain logic by challenge.
package domain

import (
	"context"
	"errors"
	"fmt"

	"wake-up-challenge/internal/aggregation"
	"wake-up-challenge/internal/entities"
	"wake-up-challenge/internal/repository"
)

// ProcessResult records today's outcome for userID and applies every
// dependent update in one transaction.
func (u *Usecase) ProcessResult(ctx context.Context, userID, rawResult string) (entities.ChallengeOutcome, error) {
	if userID == "" {
		return entities.ChallengeOutcome{}, entities.ErrUnauthenticated
	}
	result, err := entities.ParseChallengeResult(rawResult)
	if err != nil {
		return entities.ChallengeOutcome{}, err
	}

	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	now := u.now()
	key := entities.NewChallengeKey(now, u.loc, userID)

	var out entities.ChallengeOutcome
	err = u.repo.RunChallengeTx(ctx, func(ctx context.Context, tx repository.ChallengeTx) error {
		out = entities.ChallengeOutcome{Accepted: true, Result: result, Date: key.Date}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		var team *entities.Team
		if teamID, ok := user.PrimaryTeamID(); ok {
			t, err := tx.GetTeam(ctx, teamID)
			switch {
			case errors.Is(err, entities.ErrTeamNotFound):
				u.log.Warnw("primary team missing, aggregating as teamless", "user_id", userID, "team_id", teamID)
			case err != nil:
				return err
			default:
				team = &t
			}
		}

		existing, err := tx.GetChallenge(ctx, key.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == result {
				out.Replayed = true
				return nil
			}
			return fmt.Errorf("%w: %s was reported as %s", entities.ErrAlreadyReported, key.Date, existing.Status)
		}

		if err := tx.PutChallenge(ctx, entities.ChallengeRecord{
			ID:     key.ID,
			UserID: userID,
			Date:   key.Date,
			Status: result,
		}); err != nil {
			return err
		}

		plan := u.engine.Evaluate(aggregation.Input{
			User:   user,
			Team:   team,
			Result: result,
			Date:   key.Date,
			Now:    now,
		})

		if err := tx.SaveUser(ctx, plan.ApplyUser(user)); err != nil {
			return err
		}
		if team != nil && plan.Team != nil {
			if err := tx.SaveTeam(ctx, plan.ApplyTeam(*team)); err != nil {
				return err
			}
		}
		if len(plan.Credits) > 0 {
			credits := make(map[string]int64, len(plan.Credits))
			for _, c := range plan.Credits {
				credits[c.UserID] += c.Amount
			}
			missing, err := tx.CreditMembers(ctx, credits)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				u.log.Warnw("achievement credit skipped for deleted members", "team_id", plan.Team.TeamID, "missing", missing)
			}
		}

		out.Granted = plan.Granted()
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrAlreadyReported):
		return entities.ChallengeOutcome{}, err
	default:
		u.log.Errorw("challenge result not recorded", "error", err, "user_id", userID, "date", key.Date)
		return entities.ChallengeOutcome{}, fmt.Errorf("%w: result not recorded", entities.ErrInternal)
	}

	u.log.Infow("challenge result recorded",
		"user_id", userID, "date", key.Date, "result", result, "replayed", out.Replayed, "granted", out.Granted)
	return out, nil
}

// TodayMission returns the configured mission document.
func (u *Usecase) TodayMission(ctx context.Context, userID string) (entities.Mission, error) {
	if userID == "" {
		return nil, entities.ErrUnauthenticated
	}
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	mission, err := u.repo.TodayMission(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrMissionNotFound) {
			return nil, err
		}
		u.log.Errorw("failed to read mission", "error", err)
		return nil, fmt.Errorf("%w: mission unavailable", entities.ErrInternal)
	}
	return mission, nil
}
