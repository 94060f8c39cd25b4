// Package api holds the HTTP contract: request/response DTOs, error codes and route registration.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorResponseErrorCode is the machine-readable error code of a failed request.
type ErrorResponseErrorCode string

// Defines values for ErrorResponseErrorCode.
const (
	UNAUTHENTICATED    ErrorResponseErrorCode = "unauthenticated"
	INVALIDARGUMENT    ErrorResponseErrorCode = "invalid-argument"
	NOTFOUND           ErrorResponseErrorCode = "not-found"
	ALREADYEXISTS      ErrorResponseErrorCode = "already-exists"
	FAILEDPRECONDITION ErrorResponseErrorCode = "failed-precondition"
	INTERNAL           ErrorResponseErrorCode = "internal"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error struct {
		Code    ErrorResponseErrorCode `json:"code"`
		Message string                 `json:"message"`
	} `json:"error"`
}

// NewErrorResponse builds an ErrorResponse.
func NewErrorResponse(code ErrorResponseErrorCode, msg string) ErrorResponse {
	var r ErrorResponse
	r.Error.Code = code
	r.Error.Message = msg
	return r
}

// PostChallengeResultJSONRequestBody defines body for PostChallengeResult.
type PostChallengeResultJSONRequestBody struct {
	Result string `json:"result"`
}

// ChallengeResult defines model for ChallengeResult.
type ChallengeResult struct {
	Success  bool     `json:"success"`
	Result   string   `json:"result"`
	Date     string   `json:"date"`
	Replayed bool     `json:"replayed"`
	Granted  []string `json:"granted"`
}

// PutUsersMeAlarmJSONRequestBody defines body for PutUsersMeAlarm.
type PutUsersMeAlarmJSONRequestBody struct {
	WakeUpTime string `json:"wakeUpTime"`
}

// PutUsersMeDeviceTokenJSONRequestBody defines body for PutUsersMeDeviceToken.
type PutUsersMeDeviceTokenJSONRequestBody struct {
	FcmToken string `json:"fcmToken"`
}

// User defines model for User.
type User struct {
	UserId              string   `json:"userId"`
	Email               string   `json:"email,omitempty"`
	DisplayName         string   `json:"displayName"`
	LpBalance           int64    `json:"lpBalance"`
	TeamIds             []string `json:"teamIds"`
	LastChallengeStatus string   `json:"lastChallengeStatus"`
	WeeklySuccessCount  int64    `json:"weeklySuccessCount"`
	WakeUpTime          string   `json:"wakeUpTime,omitempty"`
	HasDeviceToken      bool     `json:"hasDeviceToken"`
}

// PostTeamsJSONRequestBody defines body for PostTeams.
type PostTeamsJSONRequestBody struct {
	TeamId string `json:"teamId"`
	Name   string `json:"name"`
}

// TeamMember defines model for TeamMember.
type TeamMember struct {
	UserId             string `json:"userId"`
	WeeklySuccessCount int64  `json:"weeklySuccessCount"`
}

// Team defines model for Team.
type Team struct {
	TeamId            string               `json:"teamId"`
	Name              string               `json:"name"`
	LpBalance         int64                `json:"lpBalance"`
	TotalSuccessCount int64                `json:"totalSuccessCount"`
	WeeklyFailDays    []string             `json:"weeklyFailDays"`
	Achievements      map[string]time.Time `json:"achievements"`
	Members           []TeamMember         `json:"members"`
}

// GetStatsTeamsParams defines parameters for GetStatsTeams.
type GetStatsTeamsParams struct {
	Limit int `query:"limit"`
}

// PostInternalAccountsJSONRequestBody defines body for PostInternalAccounts.
type PostInternalAccountsJSONRequestBody struct {
	Uid         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	PostChallengeResult(c *fiber.Ctx) error
	GetMissionToday(c *fiber.Ctx) error
	GetUsersMe(c *fiber.Ctx) error
	PutUsersMeAlarm(c *fiber.Ctx) error
	PutUsersMeDeviceToken(c *fiber.Ctx) error
	PostTeams(c *fiber.Ctx) error
	PostTeamsJoin(c *fiber.Ctx, teamID string) error
	GetTeam(c *fiber.Ctx, teamID string) error
	GetStatsTeams(c *fiber.Ctx, params GetStatsTeamsParams) error
	PostInternalAccounts(c *fiber.Ctx) error
	DeleteInternalAccount(c *fiber.Ctx, uid string) error
}

// Middlewares guard route groups.
type Middlewares struct {
	Auth     fiber.Handler
	Internal fiber.Handler
}

// RegisterHandlers creates http.Handler with routing matching the contract.
// Path params are copied out of the request buffer before reaching si.
func RegisterHandlers(router fiber.Router, si ServerInterface, mw Middlewares) {
	pass := func(c *fiber.Ctx) error { return c.Next() }
	if mw.Auth == nil {
		mw.Auth = pass
	}
	if mw.Internal == nil {
		mw.Internal = pass
	}

	router.Post("/challenge/result", mw.Auth, si.PostChallengeResult)
	router.Get("/mission/today", mw.Auth, si.GetMissionToday)
	router.Get("/users/me", mw.Auth, si.GetUsersMe)
	router.Put("/users/me/alarm", mw.Auth, si.PutUsersMeAlarm)
	router.Put("/users/me/device-token", mw.Auth, si.PutUsersMeDeviceToken)
	router.Post("/teams", mw.Auth, si.PostTeams)
	router.Post("/teams/:id/join", mw.Auth, func(c *fiber.Ctx) error {
		return si.PostTeamsJoin(c, utils.CopyString(c.Params("id")))
	})
	router.Get("/teams/:id", mw.Auth, func(c *fiber.Ctx) error {
		return si.GetTeam(c, utils.CopyString(c.Params("id")))
	})
	router.Get("/stats/teams", mw.Auth, func(c *fiber.Ctx) error {
		var params GetStatsTeamsParams
		if err := c.QueryParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(INVALIDARGUMENT, "invalid query: limit must be an integer"))
		}
		return si.GetStatsTeams(c, params)
	})
	router.Post("/internal/accounts", mw.Internal, si.PostInternalAccounts)
	router.Delete("/internal/accounts/:uid", mw.Internal, func(c *fiber.Ctx) error {
		return si.DeleteInternalAccount(c, utils.CopyString(c.Params("uid")))
	})
}
