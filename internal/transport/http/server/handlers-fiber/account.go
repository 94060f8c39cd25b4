package handlers_fiber

import (
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/mapper"

	"github.com/gofiber/fiber/v2"
)

// PostInternalAccounts creates the profile of a newly registered account.
func (h *Handler) PostInternalAccounts(c *fiber.Ctx) error {
	var body api.PostInternalAccountsJSONRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	usr, err := h.uc.CreateAccount(c.Context(), body.Uid, body.Email, body.DisplayName)
	if err != nil {
		h.log.Errorw("failed to create account", "error", err, "uid", body.Uid)
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPIUser(*usr))
}

// DeleteInternalAccount removes an account and its team member entries.
func (h *Handler) DeleteInternalAccount(c *fiber.Ctx, uid string) error {
	res, err := h.uc.DeleteAccount(c.Context(), uid)
	if err != nil {
		h.log.Errorw("failed to delete account", "error", err, "uid", uid)
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(res)
}
