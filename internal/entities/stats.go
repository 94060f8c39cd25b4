// Package entities contains core business entities.
package entities

// TeamStat is one leaderboard row.
type TeamStat struct {
	TeamID            string `json:"team_id"`
	Name              string `json:"name"`
	LPBalance         int64  `json:"lp_balance"`
	TotalSuccessCount int64  `json:"total_success_count"`
	MemberCount       int    `json:"member_count"`
	Achievements      int    `json:"achievements"`
}

// LeaderboardFilter limits leaderboard size.
type LeaderboardFilter struct {
	Limit int
}

// RolloverResult reports what the weekly reset touched.
type RolloverResult struct {
	Users    int64 `json:"users"`
	Members  int64 `json:"members"`
	FailDays int64 `json:"fail_days"`
}

// DeletionResult reports the compensating cleanup after account deletion.
type DeletionResult struct {
	UserID       string   `json:"user_id"`
	TeamsCleaned []string `json:"teams_cleaned"`
}

// NotifyReport summarises one wake-up notification tick.
type NotifyReport struct {
	Time    string `json:"time"`
	Matched int    `json:"matched"`
	Tokens  int    `json:"tokens"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Cleared int64  `json:"cleared"`
}
