package handlers_fiber

import (
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/mapper"
	"wake-up-challenge/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostChallengeResult records the caller's outcome for today.
func (h *Handler) PostChallengeResult(c *fiber.Ctx) error {
	var body api.PostChallengeResultJSONRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	out, err := h.uc.ProcessResult(c.Context(), middleware.UserID(c), body.Result)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIChallengeResult(out))
}

// GetMissionToday returns the configured mission document.
func (h *Handler) GetMissionToday(c *fiber.Ctx) error {
	mission, err := h.uc.TodayMission(c.Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mission)
}
