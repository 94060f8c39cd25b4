package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"wake-up-challenge/config"
	"wake-up-challenge/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func notifyCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send wake-up notifications for one minute and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			when := time.Now().In(a.cfg.Location())
			if at != "" {
				clock, err := time.ParseInLocation("15:04", at, a.cfg.Location())
				if err != nil {
					return fmt.Errorf("--at must be HH:MM: %w", err)
				}
				when = time.Date(when.Year(), when.Month(), when.Day(), clock.Hour(), clock.Minute(), 0, 0, a.cfg.Location())
			}

			report, err := a.uc.NotifyWakeUps(cmd.Context(), when)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(report)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "local wake-up time HH:MM (default: now)")
	return cmd
}

func rolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Reset weekly counters and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.uc.WeeklyRollover(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(res)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return postgres.New(cmd.Context(), log, cfg).Migrate(cmd.Context())
		},
	}
}
