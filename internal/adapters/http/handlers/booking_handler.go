package handlers

import (
	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/core/services"
	"mentorhub/internal/pkg/pagination"
	"mentorhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles session booking endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RescheduleResponseRequest represents a reschedule decision body
type RescheduleResponseRequest struct {
	Accept bool `json:"accept"`
}

// Create handles a session booking request
// @Summary Book a session
// @Description Book a one-hour session slot with a mentor
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookingInput true "Booking data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateBookingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.bookingService.Create(c.Context(), userID, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Booking requested", b.ToResponse())
}

// Approve handles mentor approval of a booking
// @Summary Approve booking
// @Description Approve a pending booking and issue a meeting link
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings/{id}/approve [post]
func (h *BookingHandler) Approve(c *fiber.Ctx) error {
	mentorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	b, err := h.bookingService.Approve(c.Context(), mentorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Booking confirmed", b.ToResponse())
}

// Complete handles mentor completion of a held session
// @Summary Complete booking
// @Description Mark a confirmed booking as held, after its slot has passed
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	mentorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	b, err := h.bookingService.Complete(c.Context(), mentorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Booking completed", b.ToResponse())
}

// Cancel cancels a booking and frees its slot
// @Summary Cancel booking
// @Description Cancel a non-terminal booking, either party may cancel
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	b, err := h.bookingService.Cancel(c.Context(), actorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Booking cancelled", b.ToResponse())
}

// RequestReschedule proposes a new date and slot for a booking
// @Summary Request reschedule
// @Description Propose moving a confirmed booking to a new date and slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param body body services.RescheduleInput true "Proposed date and slot"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) RequestReschedule(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var input services.RescheduleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.bookingService.RequestReschedule(c.Context(), actorID, id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Reschedule requested", b.ToResponse())
}

// RespondReschedule accepts or declines a pending reschedule proposal
// @Summary Respond to reschedule
// @Description Accept or decline the counterparty's reschedule proposal
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Param body body RescheduleResponseRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings/{id}/reschedule/respond [post]
func (h *BookingHandler) RespondReschedule(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var req RescheduleResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.bookingService.RespondReschedule(c.Context(), actorID, id, req.Accept)
	if err != nil {
		return response.DomainError(c, err)
	}

	if req.Accept {
		return response.Success(c, "Reschedule accepted", b.ToResponse())
	}
	return response.Success(c, "Reschedule declined", b.ToResponse())
}

// Get returns one booking
// @Summary Get booking
// @Description Get a booking by id, visible to its two parties
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	b, err := h.bookingService.GetByID(c.Context(), actorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Booking retrieved", b.ToResponse())
}

// List returns the caller's bookings
// @Summary List my bookings
// @Description List bookings for the caller, as mentee or mentor depending on role
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)
	params := pagination.GetParams(c)

	var status *models.BookingStatus
	if s := c.Query("status"); s != "" {
		st := models.BookingStatus(s)
		status = &st
	}

	var (
		items []*models.Booking
		total int64
		err   error
	)
	if role == models.RoleMentor {
		items, total, err = h.bookingService.ListForMentor(c.Context(), actorID, params.Offset, params.Limit, status)
	} else {
		items, total, err = h.bookingService.ListForUser(c.Context(), actorID, params.Offset, params.Limit, status)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list bookings")
	}

	responses := make([]*models.BookingResponse, 0, len(items))
	for _, b := range items {
		responses = append(responses, b.ToResponse())
	}

	return response.Success(c, "Bookings retrieved", pagination.NewResponse(responses, params, total))
}
