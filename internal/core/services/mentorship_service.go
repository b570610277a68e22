package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/adapters/persistence/repositories"
	"mentorhub/internal/core/domain"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// MentorshipService drives the engagement lifecycle from request to
// completion, including payment activation and the per-engagement session
// ledger.
type MentorshipService struct {
	mentorshipRepo repositories.MentorshipRepository
	bookingRepo    repositories.BookingRepository
	profileRepo    repositories.MentorProfileRepository
	userRepo       repositories.UserRepository
	gateway        PaymentGateway
	wallet         WalletLedger
	notifier       Notifier
}

// NewMentorshipService creates a new mentorship service
func NewMentorshipService(
	mentorshipRepo repositories.MentorshipRepository,
	bookingRepo repositories.BookingRepository,
	profileRepo repositories.MentorProfileRepository,
	userRepo repositories.UserRepository,
	gateway PaymentGateway,
	wallet WalletLedger,
	notifier Notifier,
) *MentorshipService {
	return &MentorshipService{
		mentorshipRepo: mentorshipRepo,
		bookingRepo:    bookingRepo,
		profileRepo:    profileRepo,
		userRepo:       userRepo,
		gateway:        gateway,
		wallet:         wallet,
		notifier:       notifier,
	}
}

// ============================================================
// USER — Request & Date Negotiation
// ============================================================

// RequestInput represents a mentorship request
type RequestInput struct {
	MentorID          uint   `json:"mentor_id" validate:"required"`
	TotalSessions     int    `json:"total_sessions" validate:"required"`
	ProposedStartDate string `json:"proposed_start_date,omitempty"`
}

// Request opens a PENDING engagement against a mentor. The session budget is
// fixed here and never changes; the amount snapshots the mentor's current
// monthly charge.
func (s *MentorshipService) Request(ctx context.Context, userID uint, input *RequestInput) (*models.Mentorship, error) {
	// 1. Validate session budget
	if input.TotalSessions < models.MinTotalSessions || input.TotalSessions > models.MaxTotalSessions {
		return nil, domain.Validationf("total sessions must be between %d and %d, got %d",
			models.MinTotalSessions, models.MaxTotalSessions, input.TotalSessions)
	}

	// 2. Validate mentor
	mentor, err := s.userRepo.GetByID(ctx, input.MentorID)
	if err != nil {
		return nil, domain.NotFoundf("mentor %d not found", input.MentorID)
	}
	if mentor.Role != models.RoleMentor {
		return nil, domain.Validationf("user %d is not a mentor", input.MentorID)
	}
	if input.MentorID == userID {
		return nil, domain.Validationf("cannot request mentorship with yourself")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, input.MentorID)
	if err != nil {
		return nil, domain.NotFoundf("mentor %d has no profile", input.MentorID)
	}

	// 3. One open engagement per pair
	if existing, err := s.mentorshipRepo.FindOpenByPair(ctx, userID, input.MentorID); err == nil {
		return nil, domain.Conflictf("an open mentorship with this mentor already exists (id %d, status %s)",
			existing.ID, existing.Status)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 4. Optional proposed start date
	var proposed *time.Time
	if input.ProposedStartDate != "" {
		d, err := time.Parse(dateLayout, input.ProposedStartDate)
		if err != nil {
			return nil, domain.Validationf("invalid proposed start date %q, want YYYY-MM-DD", input.ProposedStartDate)
		}
		if d.Before(todayDate()) {
			return nil, domain.Validationf("proposed start date %s is in the past", input.ProposedStartDate)
		}
		proposed = &d
	}

	m := &models.Mentorship{
		UserID:            userID,
		MentorID:          input.MentorID,
		Status:            models.MentorshipPending,
		TotalSessions:     input.TotalSessions,
		Amount:            profile.MonthlyCharge,
		PaymentStatus:     models.PaymentPending,
		ProposedStartDate: proposed,
	}
	if err := s.mentorshipRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	log.Printf("✅ Mentorship requested: id=%d user=%d mentor=%d sessions=%d", m.ID, userID, input.MentorID, input.TotalSessions)
	s.notifier.Notify(input.MentorID, NotifyMentorshipRequested, map[string]interface{}{
		"mentorship_id":  m.ID,
		"user_id":        userID,
		"total_sessions": input.TotalSessions,
	})

	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// ConfirmDate adopts the mentor's suggested start date and moves the
// engagement to USER_CONFIRMED.
func (s *MentorshipService) ConfirmDate(ctx context.Context, userID, mentorshipID uint) (*models.Mentorship, error) {
	m, err := s.getForUser(ctx, mentorshipID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipMentorAccepted {
		return nil, domain.Preconditionf("cannot confirm date while mentorship is %s", m.Status)
	}
	if m.MentorSuggestedStartDate == nil {
		return nil, domain.Preconditionf("mentor has not suggested an alternative date")
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status":                      models.MentorshipUserConfirmed,
		"proposed_start_date":         *m.MentorSuggestedStartDate,
		"mentor_suggested_start_date": nil,
	})
	if err != nil {
		return nil, translateStale(err)
	}

	s.notifier.Notify(m.MentorID, NotifyDateSuggested, map[string]interface{}{
		"mentorship_id": m.ID,
		"accepted":      true,
	})
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// DeclineDate rejects the mentor's suggested start date, keeping the
// engagement in MENTOR_ACCEPTED with the user's original proposal.
func (s *MentorshipService) DeclineDate(ctx context.Context, userID, mentorshipID uint) (*models.Mentorship, error) {
	m, err := s.getForUser(ctx, mentorshipID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipMentorAccepted {
		return nil, domain.Preconditionf("cannot decline date while mentorship is %s", m.Status)
	}
	if m.MentorSuggestedStartDate == nil {
		return nil, domain.Preconditionf("mentor has not suggested an alternative date")
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"mentor_suggested_start_date": nil,
	})
	if err != nil {
		return nil, translateStale(err)
	}

	s.notifier.Notify(m.MentorID, NotifyDateDeclined, map[string]interface{}{
		"mentorship_id": m.ID,
	})
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// ============================================================
// MENTOR — Accept & Reject
// ============================================================

// AcceptInput represents a mentor's acceptance, optionally counter-proposing
// a start date
type AcceptInput struct {
	SuggestedStartDate string `json:"suggested_start_date,omitempty"`
}

// Accept moves a PENDING engagement to MENTOR_ACCEPTED. A suggested date
// starts the negotiation round the user answers with ConfirmDate/DeclineDate.
func (s *MentorshipService) Accept(ctx context.Context, mentorID, mentorshipID uint, input *AcceptInput) (*models.Mentorship, error) {
	m, err := s.getForMentor(ctx, mentorshipID, mentorID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipPending {
		return nil, domain.Preconditionf("cannot accept mentorship in status %s", m.Status)
	}

	updates := map[string]interface{}{
		"status": models.MentorshipMentorAccepted,
	}
	if input != nil && input.SuggestedStartDate != "" {
		d, err := time.Parse(dateLayout, input.SuggestedStartDate)
		if err != nil {
			return nil, domain.Validationf("invalid suggested start date %q, want YYYY-MM-DD", input.SuggestedStartDate)
		}
		if d.Before(todayDate()) {
			return nil, domain.Validationf("suggested start date %s is in the past", input.SuggestedStartDate)
		}
		updates["mentor_suggested_start_date"] = d
	}

	if err := s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, updates); err != nil {
		return nil, translateStale(err)
	}

	log.Printf("✅ Mentorship accepted: id=%d mentor=%d", m.ID, mentorID)
	s.notifier.Notify(m.UserID, NotifyMentorshipAccepted, map[string]interface{}{
		"mentorship_id": m.ID,
	})
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// Reject moves a PENDING engagement to the terminal REJECTED state. A reason
// is mandatory and preserved on the row.
func (s *MentorshipService) Reject(ctx context.Context, mentorID, mentorshipID uint, reason string) (*models.Mentorship, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}

	m, err := s.getForMentor(ctx, mentorshipID, mentorID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipPending {
		return nil, domain.Preconditionf("cannot reject mentorship in status %s", m.Status)
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status":           models.MentorshipRejected,
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, translateStale(err)
	}

	s.notifier.Notify(m.UserID, NotifyMentorshipRejected, map[string]interface{}{
		"mentorship_id": m.ID,
		"reason":        reason,
	})
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// ============================================================
// USER — Payment
// ============================================================

// ProceedToPayment moves an accepted engagement to PAYMENT_PENDING and opens
// a provider checkout session. The transition is only recorded after the
// gateway call succeeds, so a gateway outage leaves the engagement untouched.
func (s *MentorshipService) ProceedToPayment(ctx context.Context, userID, mentorshipID uint) (*models.Mentorship, *CheckoutSession, error) {
	m, err := s.getForUser(ctx, mentorshipID, userID)
	if err != nil {
		return nil, nil, err
	}
	if m.Status != models.MentorshipMentorAccepted && m.Status != models.MentorshipUserConfirmed {
		return nil, nil, domain.Preconditionf("cannot proceed to payment while mentorship is %s", m.Status)
	}
	if m.MentorSuggestedStartDate != nil {
		return nil, nil, domain.Preconditionf("mentor's suggested date is awaiting your answer")
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, m.Amount, fmt.Sprintf("mentorship-%d", m.ID))
	if err != nil {
		return nil, nil, domain.Dependencyf("payment gateway unavailable: %v", err)
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status":     models.MentorshipPaymentPending,
		"payment_id": session.SessionID,
	})
	if err != nil {
		return nil, nil, translateStale(err)
	}

	log.Printf("✅ Checkout session opened: mentorship=%d session=%s amount=%.2f", m.ID, session.SessionID, m.Amount)
	s.notifier.Notify(userID, NotifyPaymentPending, map[string]interface{}{
		"mentorship_id": m.ID,
		"checkout_url":  session.URL,
	})

	m, err = s.mentorshipRepo.GetByID(ctx, m.ID)
	return m, session, err
}

// VerifyPayment consumes the provider's confirmation and activates the
// engagement: the one-month window opens and the session counter resets.
// Replaying the same payment id against an already-active engagement is a
// no-op, so duplicate provider callbacks cannot double-activate; a different
// payment id against an active engagement is refused as a conflict.
func (s *MentorshipService) VerifyPayment(ctx context.Context, userID, mentorshipID uint, paymentID string) (*models.Mentorship, error) {
	if paymentID == "" {
		return nil, domain.Validationf("payment id is required")
	}

	m, err := s.getForUser(ctx, mentorshipID, userID)
	if err != nil {
		return nil, err
	}

	if m.Status == models.MentorshipActive {
		if m.PaymentID == paymentID {
			return m, nil
		}
		return nil, domain.Conflictf("mentorship %d is already active under payment %s", m.ID, m.PaymentID)
	}
	if m.Status != models.MentorshipPaymentPending {
		return nil, domain.Preconditionf("cannot verify payment while mentorship is %s", m.Status)
	}

	start := todayDate()
	if m.ProposedStartDate != nil && m.ProposedStartDate.After(start) {
		start = *m.ProposedStartDate
	}
	end := start.AddDate(0, models.EngagementWindowMonths, 0)

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status":         models.MentorshipActive,
		"payment_status": models.PaymentVerified,
		"payment_id":     paymentID,
		"start_date":     start,
		"end_date":       end,
		"used_sessions":  0,
	})
	if err != nil {
		return nil, translateStale(err)
	}

	log.Printf("✅ Mentorship activated: id=%d payment=%s window=%s..%s",
		m.ID, paymentID, start.Format(dateLayout), end.Format(dateLayout))
	s.notifier.Notify(m.MentorID, NotifyMentorshipActivated, map[string]interface{}{
		"mentorship_id": m.ID,
	})
	s.notifier.Notify(m.UserID, NotifyMentorshipActivated, map[string]interface{}{
		"mentorship_id": m.ID,
	})
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// ============================================================
// Completion, Cancellation & Feedback
// ============================================================

// ConfirmCompletion records one party's completion flag on an ACTIVE
// engagement. When both flags are up the engagement converges to COMPLETED
// and the mentor's wallet is credited. The credit rides an atomic claim flag,
// so two racing confirmers credit the wallet exactly once; if the wallet call
// fails the claim is released and the engagement stays ACTIVE for a retry.
func (s *MentorshipService) ConfirmCompletion(ctx context.Context, actorID, mentorshipID uint) (*models.Mentorship, error) {
	m, err := s.getForParty(ctx, mentorshipID, actorID)
	if err != nil {
		return nil, err
	}

	var flag string
	var already bool
	switch actorID {
	case m.UserID:
		flag, already = "user_confirmed_completion", m.UserConfirmedCompletion
	case m.MentorID:
		flag, already = "mentor_confirmed_completion", m.MentorConfirmedCompletion
	}

	if m.Status == models.MentorshipCompleted && already {
		return m, nil
	}
	if m.Status != models.MentorshipActive {
		return nil, domain.Preconditionf("cannot confirm completion while mentorship is %s", m.Status)
	}

	if !already {
		err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{flag: true})
		if err != nil {
			return nil, translateStale(err)
		}
	}

	m, err = s.mentorshipRepo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if !m.UserConfirmedCompletion || !m.MentorConfirmedCompletion {
		return m, nil
	}

	// Both parties agree. Credit first under the claim flag, then converge
	// the status; a failed wallet call releases the claim and reports a
	// dependency failure without completing the engagement.
	won, err := s.mentorshipRepo.ClaimWalletCredit(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if won {
		if err := s.wallet.AddEarnings(ctx, m.MentorID, m.Amount, m.ID); err != nil {
			if relErr := s.mentorshipRepo.ReleaseWalletCredit(ctx, m.ID); relErr != nil {
				log.Printf("⚠️ Failed to release wallet claim for mentorship %d: %v", m.ID, relErr)
			}
			return nil, domain.Dependencyf("wallet credit failed: %v", err)
		}
		log.Printf("✅ Wallet credited: mentor=%d amount=%.2f mentorship=%d", m.MentorID, m.Amount, m.ID)
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status": models.MentorshipCompleted,
	})
	if err != nil && !errors.Is(err, repositories.ErrStaleAggregate) {
		return nil, err
	}
	// A stale update here means the other confirmer already converged it.

	m, err = s.mentorshipRepo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(m.UserID, NotifyMentorshipCompleted, map[string]interface{}{"mentorship_id": m.ID})
	s.notifier.Notify(m.MentorID, NotifyMentorshipCompleted, map[string]interface{}{"mentorship_id": m.ID})
	return m, nil
}

// Cancel moves a non-terminal engagement to CANCELLED and releases every live
// booking the pair holds, freeing the mentor's calendar.
func (s *MentorshipService) Cancel(ctx context.Context, actorID, mentorshipID uint) (*models.Mentorship, error) {
	m, err := s.getForParty(ctx, mentorshipID, actorID)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, domain.Preconditionf("mentorship is already %s", m.Status)
	}

	err = s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, map[string]interface{}{
		"status": models.MentorshipCancelled,
	})
	if err != nil {
		return nil, translateStale(err)
	}

	if err := s.bookingRepo.CancelActiveByPair(ctx, m.UserID, m.MentorID); err != nil {
		log.Printf("⚠️ Failed to release bookings for mentorship %d: %v", m.ID, err)
	}

	other := m.MentorID
	if actorID == m.MentorID {
		other = m.UserID
	}
	s.notifier.Notify(other, NotifyMentorshipCancelled, map[string]interface{}{"mentorship_id": m.ID})

	log.Printf("✅ Mentorship cancelled: id=%d by=%d", m.ID, actorID)
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// FeedbackInput represents post-completion feedback
type FeedbackInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// SubmitFeedback records a rating and comment from either party, allowed only
// once the engagement is COMPLETED.
func (s *MentorshipService) SubmitFeedback(ctx context.Context, actorID, mentorshipID uint, input *FeedbackInput) (*models.Mentorship, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.Validationf("rating must be between 1 and 5, got %d", input.Rating)
	}

	m, err := s.getForParty(ctx, mentorshipID, actorID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipCompleted {
		return nil, domain.Preconditionf("feedback requires a completed mentorship, status is %s", m.Status)
	}

	updates := map[string]interface{}{}
	if actorID == m.UserID {
		updates["user_rating"] = input.Rating
		updates["user_comment"] = input.Comment
	} else {
		updates["mentor_rating"] = input.Rating
		updates["mentor_comment"] = input.Comment
	}

	if err := s.mentorshipRepo.UpdateFields(ctx, m.ID, m.Version, updates); err != nil {
		return nil, translateStale(err)
	}
	return s.mentorshipRepo.GetByID(ctx, m.ID)
}

// ============================================================
// Session Ledger (driven by booking transitions)
// ============================================================

// RecordBookedSession appends a BOOKED entry to the pair's active engagement
// ledger when a booking is approved. Pairs without an active engagement book
// plain calendar slots and get no ledger entry. Refuses once booked plus
// completed entries would exceed the engagement's budget; cancelled entries
// have returned their unit and do not count.
func (s *MentorshipService) RecordBookedSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot, meetingLink string) error {
	m, err := s.activeByPair(ctx, userID, mentorID)
	if err != nil || m == nil {
		return err
	}

	count, err := s.mentorshipRepo.CountBudgetedSessions(ctx, m.ID)
	if err != nil {
		return err
	}
	if count >= int64(m.TotalSessions) {
		return domain.Preconditionf("all %d sessions of this mentorship are already scheduled", m.TotalSessions)
	}

	return s.mentorshipRepo.AppendSession(ctx, &models.MentorshipSession{
		MentorshipID: m.ID,
		BookingID:    bookingID,
		Position:     int(count) + 1,
		Status:       models.SessionBooked,
		Date:         &date,
		Slot:         slot,
		MeetingLink:  meetingLink,
	})
}

// RecordCompletedSession marks the booking's ledger entry COMPLETED and spends
// one unit of the engagement's session budget. A booking with no live entry
// (approved before the engagement activated, or already settled) is a no-op,
// which makes a retried completion spend the unit exactly once.
func (s *MentorshipService) RecordCompletedSession(ctx context.Context, userID, mentorID, bookingID uint) error {
	m, err := s.activeByPair(ctx, userID, mentorID)
	if err != nil || m == nil {
		return err
	}

	session, err := s.mentorshipRepo.GetBookedSessionByBooking(ctx, m.ID, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.mentorshipRepo.UpdateSessionFields(ctx, session.ID, map[string]interface{}{
		"status": models.SessionCompleted,
	}); err != nil {
		return err
	}

	err = s.mentorshipRepo.IncrementUsedSessions(ctx, m.ID)
	if errors.Is(err, repositories.ErrBudgetExhausted) {
		return domain.Preconditionf("session budget of mentorship %d is already spent", m.ID)
	}
	return err
}

// RecordCancelledSession returns a cancelled booking's budget unit: the
// ledger entry goes CANCELLED and stops counting against the budget, so the
// pair can schedule a replacement. No-op when the booking holds no live entry.
func (s *MentorshipService) RecordCancelledSession(ctx context.Context, userID, mentorID, bookingID uint) error {
	m, err := s.activeByPair(ctx, userID, mentorID)
	if err != nil || m == nil {
		return err
	}

	session, err := s.mentorshipRepo.GetBookedSessionByBooking(ctx, m.ID, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("✅ Ledger session cancelled: mentorship=%d booking=%d", m.ID, bookingID)
	return s.mentorshipRepo.UpdateSessionFields(ctx, session.ID, map[string]interface{}{
		"status": models.SessionCancelled,
	})
}

// RecordRescheduledSession moves the booking's ledger entry to its new date
// and slot. The entry stays BOOKED and keeps its budget unit through the move.
func (s *MentorshipService) RecordRescheduledSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot string) error {
	m, err := s.activeByPair(ctx, userID, mentorID)
	if err != nil || m == nil {
		return err
	}

	session, err := s.mentorshipRepo.GetBookedSessionByBooking(ctx, m.ID, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.mentorshipRepo.UpdateSessionFields(ctx, session.ID, map[string]interface{}{
		"date": date,
		"slot": slot,
	})
}

// HasActiveOrCompletedMentorship reports whether the pair ever reached an
// engaged state, the gate other features (chat, materials) key off.
func (s *MentorshipService) HasActiveOrCompletedMentorship(ctx context.Context, userID, mentorID uint) (bool, error) {
	return s.mentorshipRepo.HasWithStatus(ctx, userID, mentorID,
		[]models.MentorshipStatus{models.MentorshipActive, models.MentorshipCompleted})
}

// ============================================================
// Queries
// ============================================================

// GetByID returns the engagement, visible only to its two parties.
func (s *MentorshipService) GetByID(ctx context.Context, actorID, mentorshipID uint) (*models.Mentorship, error) {
	return s.getForParty(ctx, mentorshipID, actorID)
}

// ListForUser returns the user's engagements, newest first.
func (s *MentorshipService) ListForUser(ctx context.Context, userID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return s.mentorshipRepo.ListByUser(ctx, userID, offset, limit, status)
}

// ListForMentor returns the mentor's engagements, newest first.
func (s *MentorshipService) ListForMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return s.mentorshipRepo.ListByMentor(ctx, mentorID, offset, limit, status)
}

// ============================================================
// Helpers
// ============================================================

func (s *MentorshipService) getForUser(ctx context.Context, id, userID uint) (*models.Mentorship, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, domain.Preconditionf("mentorship %d does not belong to this user", id)
	}
	return m, nil
}

func (s *MentorshipService) getForMentor(ctx context.Context, id, mentorID uint) (*models.Mentorship, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.MentorID != mentorID {
		return nil, domain.Preconditionf("mentorship %d is not assigned to this mentor", id)
	}
	return m, nil
}

func (s *MentorshipService) getForParty(ctx context.Context, id, actorID uint) (*models.Mentorship, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != actorID && m.MentorID != actorID {
		return nil, domain.Preconditionf("mentorship %d does not involve this user", id)
	}
	return m, nil
}

func (s *MentorshipService) get(ctx context.Context, id uint) (*models.Mentorship, error) {
	m, err := s.mentorshipRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundf("mentorship %d not found", id)
	}
	return m, err
}

// activeByPair returns the pair's ACTIVE engagement, or nil when the pair has
// none (not an error for ledger purposes).
func (s *MentorshipService) activeByPair(ctx context.Context, userID, mentorID uint) (*models.Mentorship, error) {
	m, err := s.mentorshipRepo.FindOpenByPair(ctx, userID, mentorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if m.Status != models.MentorshipActive {
		return nil, nil
	}
	return m, nil
}

func translateStale(err error) error {
	if errors.Is(err, repositories.ErrStaleAggregate) {
		return domain.Conflictf("mentorship was modified concurrently, please retry")
	}
	return err
}

func todayDate() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
