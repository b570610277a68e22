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
	"mentorhub/internal/pkg/timeslot"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reschedule lead-time policy, in hours before the session start. The
// platform guideline is six hours; the older booking page still tells users
// three. The published guideline wins until product reconciles the copy.
const (
	RescheduleLeadHoursPolicy   = 6
	RescheduleLeadHoursLegacyUI = 3
)

// SessionLedger is how booking transitions are reflected on the pair's
// engagement budget: approval charges a unit, completion spends it,
// cancellation returns it and a reschedule moves the entry with the booking.
// MentorshipService implements it.
type SessionLedger interface {
	RecordBookedSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot, meetingLink string) error
	RecordCompletedSession(ctx context.Context, userID, mentorID, bookingID uint) error
	RecordCancelledSession(ctx context.Context, userID, mentorID, bookingID uint) error
	RecordRescheduledSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot string) error
}

// BookingService drives calendar reservations: request, mentor approval,
// completion, cancellation and the reschedule negotiation.
type BookingService struct {
	bookingRepo    repositories.BookingRepository
	profileRepo    repositories.MentorProfileRepository
	ledger         SessionLedger
	notifier       Notifier
	rescheduleLead time.Duration
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repositories.BookingRepository,
	profileRepo repositories.MentorProfileRepository,
	ledger SessionLedger,
	notifier Notifier,
	rescheduleLead time.Duration,
) *BookingService {
	if rescheduleLead <= 0 {
		rescheduleLead = RescheduleLeadHoursPolicy * time.Hour
	}
	return &BookingService{
		bookingRepo:    bookingRepo,
		profileRepo:    profileRepo,
		ledger:         ledger,
		notifier:       notifier,
		rescheduleLead: rescheduleLead,
	}
}

// ============================================================
// USER — Create
// ============================================================

// CreateBookingInput represents a booking request
type CreateBookingInput struct {
	MentorID uint   `json:"mentor_id" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Slot     string `json:"slot" validate:"required"`
	Topic    string `json:"topic,omitempty"`
}

// Create reserves a mentor slot as PENDING. The (mentor, date, slot)
// uniqueness is enforced by the storage layer, so two users racing for the
// same slot get exactly one winner regardless of interleaving.
func (s *BookingService) Create(ctx context.Context, userID uint, input *CreateBookingInput) (*models.Booking, error) {
	if input.Slot == "" {
		return nil, domain.Validationf("slot is required")
	}
	if input.MentorID == userID {
		return nil, domain.Validationf("cannot book a session with yourself")
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, domain.Validationf("invalid booking date %q, want YYYY-MM-DD", input.Date)
	}
	if date.Before(todayDate()) {
		return nil, domain.Validationf("booking date %s is in the past", input.Date)
	}

	if _, err := s.profileRepo.GetByUserID(ctx, input.MentorID); err != nil {
		return nil, domain.NotFoundf("mentor %d not found", input.MentorID)
	}

	// One session per user per day
	count, err := s.bookingRepo.CountActiveByUserOnDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.Conflictf("you already have a booking on %s", input.Date)
	}

	slotKey := models.SlotKeyFor(input.MentorID, date, input.Slot)
	booking := &models.Booking{
		UserID:      userID,
		MentorID:    input.MentorID,
		BookingDate: date,
		Slot:        input.Slot,
		SlotKey:     &slotKey,
		Duration:    models.DefaultSlotMinutes,
		Status:      models.BookingPending,
		Topic:       input.Topic,
	}

	err = s.bookingRepo.Create(ctx, booking)
	if errors.Is(err, repositories.ErrDuplicateSlot) {
		return nil, domain.Conflictf("slot %s on %s is already booked", input.Slot, input.Date)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Booking created: id=%d user=%d mentor=%d %s %s", booking.ID, userID, input.MentorID, input.Date, input.Slot)
	s.notifier.Notify(input.MentorID, NotifyBookingRequested, map[string]interface{}{
		"booking_id": booking.ID,
		"date":       input.Date,
		"slot":       input.Slot,
	})

	return s.bookingRepo.GetByID(ctx, booking.ID)
}

// ============================================================
// MENTOR — Approve & Complete
// ============================================================

// Approve confirms a PENDING booking, issues the meeting link and appends the
// session to the pair's engagement ledger. A ledger refusal (budget already
// fully scheduled) aborts the approval.
func (s *BookingService) Approve(ctx context.Context, mentorID, bookingID uint) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.MentorID != mentorID {
		return nil, domain.Preconditionf("booking %d is not assigned to this mentor", bookingID)
	}
	if b.Status != models.BookingPending {
		return nil, domain.Preconditionf("cannot approve booking in status %s", b.Status)
	}

	meetingLink := fmt.Sprintf("https://meet.mentorhub.io/%s", uuid.New().String())

	if err := s.ledger.RecordBookedSession(ctx, b.UserID, b.MentorID, b.ID, b.BookingDate, b.Slot, meetingLink); err != nil {
		return nil, err
	}

	err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
		"status":       models.BookingConfirmed,
		"meeting_link": meetingLink,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Booking confirmed: id=%d mentor=%d", b.ID, mentorID)
	s.notifier.Notify(b.UserID, NotifyBookingConfirmed, map[string]interface{}{
		"booking_id":   b.ID,
		"meeting_link": meetingLink,
	})
	return s.bookingRepo.GetByID(ctx, b.ID)
}

// Complete marks a CONFIRMED booking done after its start time has passed and
// spends a session from the pair's engagement budget. Completing twice is a
// no-op.
func (s *BookingService) Complete(ctx context.Context, mentorID, bookingID uint) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.MentorID != mentorID {
		return nil, domain.Preconditionf("booking %d is not assigned to this mentor", bookingID)
	}
	if b.Status == models.BookingCompleted {
		return b, nil
	}
	if b.Status != models.BookingConfirmed {
		return nil, domain.Preconditionf("cannot complete booking in status %s", b.Status)
	}

	if start, ok := timeslot.SlotStart(b.BookingDate, b.Slot); ok && time.Now().Before(start) {
		return nil, domain.Preconditionf("session starts at %s and has not happened yet", start.Format("2006-01-02 15:04"))
	}

	// Ledger first: a failed budget spend leaves the booking CONFIRMED for a
	// retry, and a retry after a half-applied completion finds the entry
	// already settled and spends nothing twice.
	if err := s.ledger.RecordCompletedSession(ctx, b.UserID, b.MentorID, b.ID); err != nil {
		return nil, err
	}

	err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
		"status": models.BookingCompleted,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Booking completed: id=%d", b.ID)
	s.notifier.Notify(b.UserID, NotifyBookingCompleted, map[string]interface{}{"booking_id": b.ID})
	return s.bookingRepo.GetByID(ctx, b.ID)
}

// ============================================================
// Cancellation
// ============================================================

// Cancel releases a live booking. Either party may cancel; the slot key is
// cleared so the calendar tuple frees up immediately, and the booking's
// ledger entry returns its budget unit to the engagement.
func (s *BookingService) Cancel(ctx context.Context, actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID && b.MentorID != actorID {
		return nil, domain.Preconditionf("booking %d does not involve this user", bookingID)
	}
	if b.Status.Terminal() {
		return nil, domain.Preconditionf("booking is already %s", b.Status)
	}

	if err := s.ledger.RecordCancelledSession(ctx, b.UserID, b.MentorID, b.ID); err != nil {
		return nil, err
	}

	err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
		"status":   models.BookingCancelled,
		"slot_key": nil,
	})
	if err != nil {
		return nil, err
	}

	other := b.MentorID
	if actorID == b.MentorID {
		other = b.UserID
	}
	s.notifier.Notify(other, NotifyBookingCancelled, map[string]interface{}{"booking_id": b.ID})

	log.Printf("✅ Booking cancelled: id=%d by=%d", b.ID, actorID)
	return s.bookingRepo.GetByID(ctx, b.ID)
}

// ============================================================
// Reschedule Negotiation
// ============================================================

// RescheduleInput represents a reschedule proposal
type RescheduleInput struct {
	ProposedDate string `json:"proposed_date" validate:"required"`
	ProposedSlot string `json:"proposed_slot" validate:"required"`
}

// RequestReschedule opens a reschedule negotiation on a CONFIRMED booking.
// Requests inside the lead-time window are refused with the remaining time in
// the message, so clients can surface it.
func (s *BookingService) RequestReschedule(ctx context.Context, actorID, bookingID uint, input *RescheduleInput) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var by string
	switch actorID {
	case b.UserID:
		by = models.RescheduleByUser
	case b.MentorID:
		by = models.RescheduleByMentor
	default:
		return nil, domain.Preconditionf("booking %d does not involve this user", bookingID)
	}

	if b.Status != models.BookingConfirmed {
		return nil, domain.Preconditionf("cannot reschedule booking in status %s", b.Status)
	}

	if start, ok := timeslot.SlotStart(b.BookingDate, b.Slot); ok {
		remaining := time.Until(start)
		if remaining < s.rescheduleLead {
			return nil, domain.Policyf("reschedule requires at least %v notice, only %v remain before the session",
				s.rescheduleLead, remaining.Round(time.Minute))
		}
	}

	proposed, err := time.Parse(dateLayout, input.ProposedDate)
	if err != nil {
		return nil, domain.Validationf("invalid proposed date %q, want YYYY-MM-DD", input.ProposedDate)
	}
	if proposed.Before(todayDate()) {
		return nil, domain.Validationf("proposed date %s is in the past", input.ProposedDate)
	}
	if input.ProposedSlot == "" {
		return nil, domain.Validationf("proposed slot is required")
	}

	err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
		"status":        models.BookingRescheduled,
		"reschedule_by": by,
		"proposed_date": proposed,
		"proposed_slot": input.ProposedSlot,
	})
	if err != nil {
		return nil, err
	}

	other := b.MentorID
	if by == models.RescheduleByMentor {
		other = b.UserID
	}
	s.notifier.Notify(other, NotifyRescheduleRequested, map[string]interface{}{
		"booking_id":    b.ID,
		"proposed_date": input.ProposedDate,
		"proposed_slot": input.ProposedSlot,
	})

	log.Printf("✅ Reschedule requested: booking=%d by=%s -> %s %s", b.ID, by, input.ProposedDate, input.ProposedSlot)
	return s.bookingRepo.GetByID(ctx, b.ID)
}

// RespondReschedule answers an open reschedule proposal. Only the
// counterparty may answer. Accepting moves the booking to the proposed date
// and slot, which must still be free; declining cancels the booking outright.
func (s *BookingService) RespondReschedule(ctx context.Context, actorID, bookingID uint, accept bool) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID && b.MentorID != actorID {
		return nil, domain.Preconditionf("booking %d does not involve this user", bookingID)
	}
	if b.Status != models.BookingRescheduled {
		return nil, domain.Preconditionf("booking %d has no open reschedule request", bookingID)
	}

	requester := b.UserID
	if b.RescheduleBy == models.RescheduleByMentor {
		requester = b.MentorID
	}
	if actorID == requester {
		return nil, domain.Preconditionf("the requesting party cannot answer its own reschedule")
	}

	if !accept {
		if err := s.ledger.RecordCancelledSession(ctx, b.UserID, b.MentorID, b.ID); err != nil {
			return nil, err
		}
		err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
			"status":        models.BookingCancelled,
			"slot_key":      nil,
			"reschedule_by": "",
			"proposed_date": nil,
			"proposed_slot": "",
		})
		if err != nil {
			return nil, err
		}
		s.notifier.Notify(requester, NotifyRescheduleDeclined, map[string]interface{}{"booking_id": b.ID})
		log.Printf("✅ Reschedule declined: booking=%d cancelled", b.ID)
		return s.bookingRepo.GetByID(ctx, b.ID)
	}

	if b.ProposedDate == nil || b.ProposedSlot == "" {
		return nil, domain.Preconditionf("booking %d has no proposed date to accept", bookingID)
	}

	newKey := models.SlotKeyFor(b.MentorID, *b.ProposedDate, b.ProposedSlot)
	err = s.bookingRepo.UpdateFields(ctx, b.ID, map[string]interface{}{
		"status":        models.BookingConfirmed,
		"booking_date":  *b.ProposedDate,
		"slot":          b.ProposedSlot,
		"slot_key":      newKey,
		"reschedule_by": "",
		"proposed_date": nil,
		"proposed_slot": "",
	})
	if errors.Is(err, repositories.ErrDuplicateSlot) {
		return nil, domain.Conflictf("proposed slot %s on %s is no longer free",
			b.ProposedSlot, b.ProposedDate.Format(dateLayout))
	}
	if err != nil {
		return nil, err
	}

	// Keep the ledger entry on the booking's new coordinates
	if err := s.ledger.RecordRescheduledSession(ctx, b.UserID, b.MentorID, b.ID, *b.ProposedDate, b.ProposedSlot); err != nil {
		return nil, err
	}

	s.notifier.Notify(requester, NotifyRescheduleAccepted, map[string]interface{}{"booking_id": b.ID})
	log.Printf("✅ Reschedule accepted: booking=%d -> %s %s", b.ID, b.ProposedDate.Format(dateLayout), b.ProposedSlot)
	return s.bookingRepo.GetByID(ctx, b.ID)
}

// ============================================================
// Queries
// ============================================================

// AvailableSlots slices the mentor's availability text into one-hour slots
// and subtracts the slots already held on the date.
func (s *BookingService) AvailableSlots(ctx context.Context, mentorID uint, dateStr string) ([]string, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, domain.Validationf("invalid date %q, want YYYY-MM-DD", dateStr)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, mentorID)
	if err != nil {
		return nil, domain.NotFoundf("mentor %d not found", mentorID)
	}

	taken, err := s.bookingRepo.ListActiveSlots(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}
	takenSet := make(map[string]bool, len(taken))
	for _, slot := range taken {
		takenSet[slot] = true
	}

	all := timeslot.SplitRanges(profile.AvailabilityRanges())
	free := make([]string, 0, len(all))
	for _, slot := range all {
		if !takenSet[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// GetByID returns the booking, visible only to its two parties.
func (s *BookingService) GetByID(ctx context.Context, actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID && b.MentorID != actorID {
		return nil, domain.Preconditionf("booking %d does not involve this user", bookingID)
	}
	return b, nil
}

// ListForUser returns the user's bookings newest-first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return s.bookingRepo.ListByUser(ctx, userID, offset, limit, status)
}

// ListForMentor returns the mentor's bookings soonest-first.
func (s *BookingService) ListForMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return s.bookingRepo.ListByMentor(ctx, mentorID, offset, limit, status)
}

func (s *BookingService) get(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundf("booking %d not found", id)
	}
	return b, err
}
