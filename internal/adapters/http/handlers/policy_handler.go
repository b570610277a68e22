package handlers

import (
	"mentorhub/internal/adapters/persistence/repositories"
	"mentorhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PolicyHandler exposes the tunable platform policy values
type PolicyHandler struct {
	configRepo repositories.PlatformConfigRepository
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(configRepo repositories.PlatformConfigRepository) *PolicyHandler {
	return &PolicyHandler{configRepo: configRepo}
}

// List returns all platform policy values
// @Summary List platform policies
// @Description List tunable platform policy values, such as session limits and reschedule lead time
// @Tags Policies
// @Produce json
// @Success 200 {object} response.Response
// @Router /policies [get]
func (h *PolicyHandler) List(c *fiber.Ctx) error {
	rows, err := h.configRepo.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list policies")
	}

	policies := make(fiber.Map, len(rows))
	for _, row := range rows {
		policies[row.ConfigKey] = row.ConfigValue
	}

	return response.Success(c, "Policies retrieved", policies)
}
