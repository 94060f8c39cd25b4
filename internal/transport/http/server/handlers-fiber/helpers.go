package handlers_fiber

import (
	"errors"
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/entities"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := api.INTERNAL
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrUnauthenticated):
		status = http.StatusUnauthorized
		code = api.UNAUTHENTICATED
		msg = "authentication required"
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = api.INVALIDARGUMENT
		msg = err.Error()
	case errors.Is(err, entities.ErrUserNotFound), errors.Is(err, entities.ErrTeamNotFound):
		status = http.StatusNotFound
		code = api.NOTFOUND
		msg = "resource not found"
	case errors.Is(err, entities.ErrMissionNotFound):
		status = http.StatusNotFound
		code = api.NOTFOUND
		msg = "no mission configured for today"
	case errors.Is(err, entities.ErrTeamExists):
		status = http.StatusConflict
		code = api.ALREADYEXISTS
		msg = "team id already exists"
	case errors.Is(err, entities.ErrAlreadyMember):
		status = http.StatusConflict
		code = api.ALREADYEXISTS
		msg = "already a member of this team"
	case errors.Is(err, entities.ErrTeamFull):
		status = http.StatusConflict
		code = api.FAILEDPRECONDITION
		msg = "team is full"
	case errors.Is(err, entities.ErrAlreadyReported):
		status = http.StatusConflict
		code = api.FAILEDPRECONDITION
		msg = err.Error()
	}

	return c.Status(status).JSON(api.NewErrorResponse(code, msg))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(api.NewErrorResponse(api.INVALIDARGUMENT, "invalid body"))
}
