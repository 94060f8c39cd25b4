package postgres

import (
	"context"
	"errors"
	"fmt"

	"wake-up-challenge/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	todayMissionKey   = "todayMission"
	selectConfigQuery = `SELECT value FROM config WHERE key=$1`
	upsertConfigQuery = `
INSERT INTO config(key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// TodayMission returns the mission document stored in the config table.
func (p *Postgres) TodayMission(ctx context.Context) (entities.Mission, error) {
	var mission map[string]any
	err := p.db.QueryRow(ctx, selectConfigQuery, todayMissionKey).Scan(&mission)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrMissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	if mission == nil {
		return nil, entities.ErrMissionNotFound
	}
	return entities.Mission(mission), nil
}

// SetTodayMission replaces the mission document.
func (p *Postgres) SetTodayMission(ctx context.Context, mission entities.Mission) error {
	if _, err := p.db.Exec(ctx, upsertConfigQuery, todayMissionKey, map[string]any(mission)); err != nil {
		return fmt.Errorf("set mission: %w", err)
	}
	return nil
}
