package handlers

import (
	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/core/services"
	"mentorhub/internal/pkg/pagination"
	"mentorhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MentorshipHandler handles mentorship lifecycle endpoints
type MentorshipHandler struct {
	mentorshipService *services.MentorshipService
}

// NewMentorshipHandler creates a new mentorship handler
func NewMentorshipHandler(mentorshipService *services.MentorshipService) *MentorshipHandler {
	return &MentorshipHandler{mentorshipService: mentorshipService}
}

// RejectRequest represents a mentor rejection body
type RejectRequest struct {
	Reason string `json:"reason"`
}

// VerifyPaymentRequest represents a payment confirmation body
type VerifyPaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

// Request handles a mentorship request
// @Summary Request mentorship
// @Description Open a mentorship request against a mentor
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /mentorships [post]
func (h *MentorshipHandler) Request(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.RequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	m, err := h.mentorshipService.Request(c.Context(), userID, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Mentorship requested", m.ToResponse())
}

// Accept handles mentor acceptance
// @Summary Accept mentorship
// @Description Accept a pending mentorship, optionally suggesting a start date
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Param body body services.AcceptInput false "Acceptance data"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/accept [post]
func (h *MentorshipHandler) Accept(c *fiber.Ctx) error {
	mentorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var input services.AcceptInput
	_ = c.BodyParser(&input)

	m, err := h.mentorshipService.Accept(c.Context(), mentorID, id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Mentorship accepted", m.ToResponse())
}

// Reject handles mentor rejection
// @Summary Reject mentorship
// @Description Reject a pending mentorship with a reason
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /mentorships/{id}/reject [post]
func (h *MentorshipHandler) Reject(c *fiber.Ctx) error {
	mentorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	m, err := h.mentorshipService.Reject(c.Context(), mentorID, id, req.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Mentorship rejected", m.ToResponse())
}

// ConfirmDate handles the user accepting the mentor's suggested start date
// @Summary Confirm suggested date
// @Description Adopt the mentor's suggested start date
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/confirm-date [post]
func (h *MentorshipHandler) ConfirmDate(c *fiber.Ctx) error {
	userID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, err := h.mentorshipService.ConfirmDate(c.Context(), userID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Start date confirmed", m.ToResponse())
}

// DeclineDate handles the user declining the mentor's suggested start date
// @Summary Decline suggested date
// @Description Reject the mentor's suggested start date, keeping the original proposal
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/decline-date [post]
func (h *MentorshipHandler) DeclineDate(c *fiber.Ctx) error {
	userID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, err := h.mentorshipService.DeclineDate(c.Context(), userID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Suggested date declined", m.ToResponse())
}

// Pay opens a payment checkout session
// @Summary Proceed to payment
// @Description Move the mentorship to payment and open a checkout session
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mentorships/{id}/pay [post]
func (h *MentorshipHandler) Pay(c *fiber.Ctx) error {
	userID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, session, err := h.mentorshipService.ProceedToPayment(c.Context(), userID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Checkout session created", fiber.Map{
		"mentorship": m.ToResponse(),
		"checkout":   session,
	})
}

// VerifyPayment consumes the provider's payment confirmation
// @Summary Verify payment
// @Description Verify the payment and activate the mentorship
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Param body body VerifyPaymentRequest true "Payment confirmation"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/verify-payment [post]
func (h *MentorshipHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	m, err := h.mentorshipService.VerifyPayment(c.Context(), userID, id, req.PaymentID)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Payment verified", m.ToResponse())
}

// ConfirmCompletion records the caller's completion confirmation
// @Summary Confirm completion
// @Description Record one party's completion confirmation; both complete the mentorship
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/confirm-completion [post]
func (h *MentorshipHandler) ConfirmCompletion(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, err := h.mentorshipService.ConfirmCompletion(c.Context(), actorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Completion recorded", m.ToResponse())
}

// Cancel cancels a mentorship
// @Summary Cancel mentorship
// @Description Cancel a non-terminal mentorship and release its bookings
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/cancel [post]
func (h *MentorshipHandler) Cancel(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, err := h.mentorshipService.Cancel(c.Context(), actorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Mentorship cancelled", m.ToResponse())
}

// Feedback submits post-completion feedback
// @Summary Submit feedback
// @Description Submit a rating and comment after completion
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Param body body services.FeedbackInput true "Feedback data"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /mentorships/{id}/feedback [post]
func (h *MentorshipHandler) Feedback(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	var input services.FeedbackInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	m, err := h.mentorshipService.SubmitFeedback(c.Context(), actorID, id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Feedback recorded", m.ToResponse())
}

// Get returns one mentorship
// @Summary Get mentorship
// @Description Get a mentorship by id, visible to its two parties
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mentorship ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /mentorships/{id} [get]
func (h *MentorshipHandler) Get(c *fiber.Ctx) error {
	actorID, id, ok := actorAndID(c)
	if !ok {
		return nil
	}

	m, err := h.mentorshipService.GetByID(c.Context(), actorID, id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Mentorship retrieved", m.ToResponse())
}

// List returns the caller's mentorships
// @Summary List my mentorships
// @Description List mentorships for the caller, as mentee or mentor depending on role
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /mentorships [get]
func (h *MentorshipHandler) List(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)
	params := pagination.GetParams(c)

	var status *models.MentorshipStatus
	if s := c.Query("status"); s != "" {
		st := models.MentorshipStatus(s)
		status = &st
	}

	var (
		items []*models.Mentorship
		total int64
		err   error
	)
	if role == models.RoleMentor {
		items, total, err = h.mentorshipService.ListForMentor(c.Context(), actorID, params.Offset, params.Limit, status)
	} else {
		items, total, err = h.mentorshipService.ListForUser(c.Context(), actorID, params.Offset, params.Limit, status)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list mentorships")
	}

	responses := make([]*models.MentorshipResponse, 0, len(items))
	for _, m := range items {
		responses = append(responses, m.ToResponse())
	}

	return response.Success(c, "Mentorships retrieved", pagination.NewResponse(responses, params, total))
}

// actorAndID pulls the authenticated user and the path id off the request.
// When it reports false the error response has already been written.
func actorAndID(c *fiber.Ctx) (uint, uint, bool) {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		_ = response.Unauthorized(c, "Unauthorized")
		return 0, 0, false
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		_ = response.BadRequest(c, "Invalid id")
		return 0, 0, false
	}

	return actorID, uint(id), true
}
