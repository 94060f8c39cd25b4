package handlers_fiber

import (
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/mapper"
	"wake-up-challenge/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetUsersMe returns the caller's profile.
func (h *Handler) GetUsersMe(c *fiber.Ctx) error {
	usr, err := h.uc.Profile(c.Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUser(*usr))
}

// PutUsersMeAlarm sets the caller's wake-up time.
func (h *Handler) PutUsersMeAlarm(c *fiber.Ctx) error {
	var body api.PutUsersMeAlarmJSONRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	wakeUpTime, err := h.uc.SetWakeUpTime(c.Context(), middleware.UserID(c), body.WakeUpTime)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "wakeUpTime": wakeUpTime})
}

// PutUsersMeDeviceToken registers the caller's push token.
func (h *Handler) PutUsersMeDeviceToken(c *fiber.Ctx) error {
	var body api.PutUsersMeDeviceTokenJSONRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	if err := h.uc.RegisterDeviceToken(c.Context(), middleware.UserID(c), body.FcmToken); err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
