package handlers_fiber

import (
	"net/http"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/entities"

	"github.com/gofiber/fiber/v2"
)

// GetStatsTeams returns the team leaderboard.
func (h *Handler) GetStatsTeams(c *fiber.Ctx, params api.GetStatsTeamsParams) error {
	stats, err := h.uc.Leaderboard(c.Context(), entities.LeaderboardFilter{Limit: params.Limit})
	if err != nil {
		h.log.Errorw("failed to build leaderboard", "error", err)
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"teams": stats})
}
