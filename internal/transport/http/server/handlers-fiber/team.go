package handlers_fiber

import (
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/mapper"
	"wake-up-challenge/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostTeams creates a team owned by the caller.
func (h *Handler) PostTeams(c *fiber.Ctx) error {
	var body api.PostTeamsJSONRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	team, err := h.uc.CreateTeam(c.Context(), middleware.UserID(c), body.TeamId, body.Name)
	if err != nil {
		h.log.Infow("team not created", "error", err)
		return writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(struct {
		Team api.Team `json:"team"`
	}{Team: mapper.ToAPITeam(*team)})
}

// PostTeamsJoin adds the caller to a team.
func (h *Handler) PostTeamsJoin(c *fiber.Ctx, teamID string) error {
	team, err := h.uc.JoinTeam(c.Context(), middleware.UserID(c), teamID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(struct {
		Team api.Team `json:"team"`
	}{Team: mapper.ToAPITeam(*team)})
}

// GetTeam returns team state by id.
func (h *Handler) GetTeam(c *fiber.Ctx, teamID string) error {
	team, err := h.uc.Team(c.Context(), teamID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITeam(*team))
}
