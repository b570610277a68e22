package handlers

import (
	"mentorhub/internal/core/services"
	"mentorhub/internal/pkg/pagination"
	"mentorhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MentorHandler handles mentor profile and directory endpoints
type MentorHandler struct {
	mentorService  *services.MentorService
	bookingService *services.BookingService
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(mentorService *services.MentorService, bookingService *services.BookingService) *MentorHandler {
	return &MentorHandler{
		mentorService:  mentorService,
		bookingService: bookingService,
	}
}

// UpsertProfile creates or updates the mentor's own profile
// @Summary Upsert mentor profile
// @Description Create or update the authenticated mentor's public profile
// @Tags Mentors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProfileInput true "Profile data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /mentors/me/profile [put]
func (h *MentorHandler) UpsertProfile(c *fiber.Ctx) error {
	mentorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.mentorService.UpsertProfile(c.Context(), mentorID, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Profile saved", profile)
}

// GetMentor returns a mentor's public profile
// @Summary Get mentor profile
// @Description Get a mentor's public profile by user id
// @Tags Mentors
// @Produce json
// @Param id path int true "Mentor user ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /mentors/{id} [get]
func (h *MentorHandler) GetMentor(c *fiber.Ctx) error {
	mentorID, err := c.ParamsInt("id")
	if err != nil || mentorID < 1 {
		return response.BadRequest(c, "Invalid mentor id")
	}

	profile, err := h.mentorService.GetProfile(c.Context(), uint(mentorID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Mentor retrieved", profile)
}

// ListMentors returns the public mentor directory
// @Summary List mentors
// @Description List mentor profiles, paginated
// @Tags Mentors
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /mentors [get]
func (h *MentorHandler) ListMentors(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	profiles, total, err := h.mentorService.ListProfiles(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list mentors")
	}

	return response.Success(c, "Mentors retrieved", pagination.NewResponse(profiles, params, total))
}

// GetSlots returns a mentor's free one-hour slots on a date
// @Summary Get mentor slots
// @Description List the mentor's bookable slots for a date, availability minus existing bookings
// @Tags Mentors
// @Produce json
// @Param id path int true "Mentor user ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /mentors/{id}/slots [get]
func (h *MentorHandler) GetSlots(c *fiber.Ctx) error {
	mentorID, err := c.ParamsInt("id")
	if err != nil || mentorID < 1 {
		return response.BadRequest(c, "Invalid mentor id")
	}

	date := c.Query("date")
	if date == "" {
		return response.BadRequest(c, "date query parameter is required")
	}

	slots, err := h.bookingService.AvailableSlots(c.Context(), uint(mentorID), date)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Slots retrieved", fiber.Map{
		"date":  date,
		"slots": slots,
	})
}
