package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	svc      *BookingService
	repo     *fakeBookingRepo
	profiles *fakeProfileRepo
	ledger   *fakeLedger
	notifier *fakeNotifier
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	profiles := newFakeProfileRepo()
	require.NoError(t, profiles.Upsert(context.Background(), &models.MentorProfile{
		UserID:        testMentorID,
		Expertise:     "Backend engineering",
		MonthlyCharge: 2000,
		Availability:  "9am-12pm",
	}))

	f := &bookingFixture{
		repo:     newFakeBookingRepo(),
		profiles: profiles,
		ledger:   &fakeLedger{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewBookingService(f.repo, profiles, f.ledger, f.notifier, RescheduleLeadHoursPolicy*time.Hour)
	return f
}

func (f *bookingFixture) create(t *testing.T, daysAhead int, slot string) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, daysAhead).Format(dateLayout),
		Slot:     slot,
	})
	require.NoError(t, err)
	return b
}

// seed inserts a booking directly, bypassing the service validations.
func (f *bookingFixture) seed(t *testing.T, date time.Time, slot string, status models.BookingStatus) *models.Booking {
	t.Helper()
	key := models.SlotKeyFor(testMentorID, date, slot)
	b := &models.Booking{
		UserID:      testUserID,
		MentorID:    testMentorID,
		BookingDate: date,
		Slot:        slot,
		SlotKey:     &key,
		Status:      status,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, -1).Format(dateLayout),
		Slot:     "9:00 AM - 10:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "past date")

	_, err = f.svc.Create(ctx, testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     "not-a-date",
		Slot:     "9:00 AM - 10:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "unparsable date")

	_, err = f.svc.Create(ctx, testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 1).Format(dateLayout),
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "missing slot")
}

func TestCreateBooking_OnePerUserPerDay(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, 1, "9:00 AM - 10:00 AM")

	_, err := f.svc.Create(context.Background(), testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 1).Format(dateLayout),
		Slot:     "10:00 AM - 11:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateBooking_DuplicateSlot(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, 1, "9:00 AM - 10:00 AM")

	// A different user going for the same mentor slot
	_, err := f.svc.Create(context.Background(), 3, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 1).Format(dateLayout),
		Slot:     "9:00 AM - 10:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateBooking_RacingUsersGetOneWinner(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 1).Format(dateLayout)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, uint(100+i), &CreateBookingInput{
				MentorID: testMentorID,
				Date:     date,
				Slot:     "9:00 AM - 10:00 AM",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestApprove_ConfirmsAndAppendsLedgerSession(t *testing.T) {
	f := newBookingFixture(t)
	b := f.create(t, 1, "9:00 AM - 10:00 AM")

	got, err := f.svc.Approve(context.Background(), testMentorID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.True(t, strings.HasPrefix(got.MeetingLink, "https://meet.mentorhub.io/"))
	assert.Equal(t, 1, f.ledger.booked)
	assert.True(t, f.notifier.has(NotifyBookingConfirmed))
}

func TestApprove_LedgerRefusalAbortsApproval(t *testing.T) {
	f := newBookingFixture(t)
	b := f.create(t, 1, "9:00 AM - 10:00 AM")

	f.ledger.bookErr = domain.Preconditionf("all sessions are already scheduled")
	_, err := f.svc.Approve(context.Background(), testMentorID, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	got, err := f.svc.GetByID(context.Background(), testUserID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)
}

func TestApprove_WrongActorOrState(t *testing.T) {
	f := newBookingFixture(t)
	b := f.create(t, 1, "9:00 AM - 10:00 AM")
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, 99, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	_, err = f.svc.Approve(ctx, testMentorID, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, testMentorID, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestComplete_RequiresElapsedSession(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	future := f.seed(t, time.Now().AddDate(0, 0, 2), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	_, err := f.svc.Complete(ctx, testMentorID, future.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	past := f.seed(t, time.Now().AddDate(0, 0, -1), "10:00 AM - 11:00 AM", models.BookingConfirmed)
	got, err := f.svc.Complete(ctx, testMentorID, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.Equal(t, 1, f.ledger.completed)
}

func TestComplete_IsIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	b := f.seed(t, time.Now().AddDate(0, 0, -1), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	_, err := f.svc.Complete(ctx, testMentorID, b.ID)
	require.NoError(t, err)

	got, err := f.svc.Complete(ctx, testMentorID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.Equal(t, 1, f.ledger.completed)
}

func TestCancel_FreesTheSlot(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.create(t, 1, "9:00 AM - 10:00 AM")

	got, err := f.svc.Cancel(ctx, testUserID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	// The tuple is free again for another user
	_, err = f.svc.Create(ctx, 3, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 1).Format(dateLayout),
		Slot:     "9:00 AM - 10:00 AM",
	})
	assert.NoError(t, err)
}

func TestCancelBooking_TerminalIsFinal(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.create(t, 1, "9:00 AM - 10:00 AM")

	_, err := f.svc.Cancel(ctx, testUserID, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, testMentorID, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestCancelBooking_ReleasesLedgerSession(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.create(t, 1, "9:00 AM - 10:00 AM")

	_, err := f.svc.Approve(ctx, testMentorID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, testUserID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.ledger.cancelled)
}

func TestComplete_LedgerFailureLeavesBookingConfirmed(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	b := f.seed(t, time.Now().AddDate(0, 0, -1), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	f.ledger.completeErr = domain.Preconditionf("session budget is already spent")

	_, err := f.svc.Complete(ctx, testMentorID, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	got, err := f.svc.GetByID(ctx, testMentorID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status, "failed budget spend must leave the booking retryable")
}

func TestRequestReschedule_OnlyConfirmed(t *testing.T) {
	f := newBookingFixture(t)
	b := f.create(t, 7, "9:00 AM - 10:00 AM")

	_, err := f.svc.RequestReschedule(context.Background(), testUserID, b.ID, &RescheduleInput{
		ProposedDate: time.Now().AddDate(0, 0, 10).Format(dateLayout),
		ProposedSlot: "10:00 AM - 11:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestRequestReschedule_LeadTimePolicy(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	// A session about two hours out is inside the six-hour window
	start := time.Now().Add(2 * time.Hour)
	slot := fmt.Sprintf("%s - %s", start.Format("3:04 PM"), start.Add(time.Hour).Format("3:04 PM"))
	b := f.seed(t, time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()), slot, models.BookingConfirmed)

	_, err := f.svc.RequestReschedule(ctx, testUserID, b.ID, &RescheduleInput{
		ProposedDate: time.Now().AddDate(0, 0, 10).Format(dateLayout),
		ProposedSlot: "10:00 AM - 11:00 AM",
	})
	assert.ErrorIs(t, err, domain.ErrPolicy)

	got, err := f.svc.GetByID(ctx, testUserID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status, "refused request leaves the booking untouched")
}

func TestRescheduleNegotiation_AcceptMovesBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	b := f.seed(t, time.Now().AddDate(0, 0, 7), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	proposedDate := time.Now().AddDate(0, 0, 10).Format(dateLayout)

	req, err := f.svc.RequestReschedule(ctx, testUserID, b.ID, &RescheduleInput{
		ProposedDate: proposedDate,
		ProposedSlot: "11:00 AM - 12:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingRescheduled, req.Status)
	assert.Equal(t, models.RescheduleByUser, req.RescheduleBy)

	// The requester cannot answer its own proposal
	_, err = f.svc.RespondReschedule(ctx, testUserID, b.ID, true)
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	got, err := f.svc.RespondReschedule(ctx, testMentorID, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Equal(t, proposedDate, got.BookingDate.Format(dateLayout))
	assert.Equal(t, "11:00 AM - 12:00 PM", got.Slot)
	assert.Empty(t, got.RescheduleBy)
	assert.Nil(t, got.ProposedDate)

	// The engagement ledger follows the booking to its new coordinates
	assert.Equal(t, 1, f.ledger.rescheduled)
	assert.Equal(t, proposedDate, f.ledger.lastDate.Format(dateLayout))
	assert.Equal(t, "11:00 AM - 12:00 PM", f.ledger.lastSlot)
}

func TestRescheduleNegotiation_DeclineCancels(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	b := f.seed(t, time.Now().AddDate(0, 0, 7), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	_, err := f.svc.RequestReschedule(ctx, testMentorID, b.ID, &RescheduleInput{
		ProposedDate: time.Now().AddDate(0, 0, 10).Format(dateLayout),
		ProposedSlot: "10:00 AM - 11:00 AM",
	})
	require.NoError(t, err)

	got, err := f.svc.RespondReschedule(ctx, testUserID, b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, 1, f.ledger.cancelled)
}

func TestRescheduleNegotiation_AcceptIntoTakenSlot(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	target := time.Now().AddDate(0, 0, 10)
	other := f.seed(t, target, "10:00 AM - 11:00 AM", models.BookingConfirmed)
	_ = other

	b := f.seed(t, time.Now().AddDate(0, 0, 7), "9:00 AM - 10:00 AM", models.BookingConfirmed)
	_, err := f.svc.RequestReschedule(ctx, testUserID, b.ID, &RescheduleInput{
		ProposedDate: target.Format(dateLayout),
		ProposedSlot: "10:00 AM - 11:00 AM",
	})
	require.NoError(t, err)

	_, err = f.svc.RespondReschedule(ctx, testMentorID, b.ID, true)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAvailableSlots_SubtractsBookedSlots(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 1)

	// 9am-12pm slices into three hourly slots
	free, err := f.svc.AvailableSlots(ctx, testMentorID, date.Format(dateLayout))
	require.NoError(t, err)
	assert.Equal(t, []string{"9:00 AM - 10:00 AM", "10:00 AM - 11:00 AM", "11:00 AM - 12:00 PM"}, free)

	f.seed(t, date, "10:00 AM - 11:00 AM", models.BookingPending)
	free, err = f.svc.AvailableSlots(ctx, testMentorID, date.Format(dateLayout))
	require.NoError(t, err)
	assert.Equal(t, []string{"9:00 AM - 10:00 AM", "11:00 AM - 12:00 PM"}, free)
}

func TestAvailableSlots_UnknownMentor(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.AvailableSlots(context.Background(), 99, time.Now().AddDate(0, 0, 1).Format(dateLayout))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Wires the real mentorship service in as the ledger to check that a spent
// session budget blocks further approvals end to end.
func TestApprove_BudgetExhaustedBlocksApproval(t *testing.T) {
	users := newFakeUserRepo()
	users.put(&models.User{ID: testUserID, Username: "alice", Role: models.RoleUser, IsActive: true})
	users.put(&models.User{ID: testMentorID, Username: "bob", Role: models.RoleMentor, IsActive: true})

	profiles := newFakeProfileRepo()
	require.NoError(t, profiles.Upsert(context.Background(), &models.MentorProfile{
		UserID: testMentorID, Expertise: "Go", MonthlyCharge: 1000, Availability: "9am-5pm",
	}))

	mentorshipRepo := newFakeMentorshipRepo()
	bookingRepo := newFakeBookingRepo()
	notifier := &fakeNotifier{}
	mentorships := NewMentorshipService(mentorshipRepo, bookingRepo, profiles, users, &fakeGateway{}, &fakeWallet{}, notifier)
	bookings := NewBookingService(bookingRepo, profiles, mentorships, notifier, RescheduleLeadHoursPolicy*time.Hour)
	ctx := context.Background()

	m, err := mentorships.Request(ctx, testUserID, &RequestInput{MentorID: testMentorID, TotalSessions: 7})
	require.NoError(t, err)
	_, err = mentorships.Accept(ctx, testMentorID, m.ID, &AcceptInput{})
	require.NoError(t, err)
	_, _, err = mentorships.ProceedToPayment(ctx, testUserID, m.ID)
	require.NoError(t, err)
	_, err = mentorships.VerifyPayment(ctx, testUserID, m.ID, "pay_1")
	require.NoError(t, err)

	// Schedule the whole budget
	for i := 0; i < 7; i++ {
		b, err := bookings.Create(ctx, testUserID, &CreateBookingInput{
			MentorID: testMentorID,
			Date:     time.Now().AddDate(0, 0, i+1).Format(dateLayout),
			Slot:     "9:00 AM - 10:00 AM",
		})
		require.NoError(t, err)
		_, err = bookings.Approve(ctx, testMentorID, b.ID)
		require.NoError(t, err)
	}

	// The eighth approval must be refused
	b, err := bookings.Create(ctx, testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 8).Format(dateLayout),
		Slot:     "9:00 AM - 10:00 AM",
	})
	require.NoError(t, err)
	_, err = bookings.Approve(ctx, testMentorID, b.ID)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

// A cancelled booking must hand its budget unit back: after cancelling one of
// the scheduled sessions, the full budget is schedulable again end to end.
func TestCancelBooking_ReturnsUnitToSessionBudget(t *testing.T) {
	users := newFakeUserRepo()
	users.put(&models.User{ID: testUserID, Username: "alice", Role: models.RoleUser, IsActive: true})
	users.put(&models.User{ID: testMentorID, Username: "bob", Role: models.RoleMentor, IsActive: true})

	profiles := newFakeProfileRepo()
	require.NoError(t, profiles.Upsert(context.Background(), &models.MentorProfile{
		UserID: testMentorID, Expertise: "Go", MonthlyCharge: 1000, Availability: "9am-5pm",
	}))

	mentorshipRepo := newFakeMentorshipRepo()
	bookingRepo := newFakeBookingRepo()
	notifier := &fakeNotifier{}
	mentorships := NewMentorshipService(mentorshipRepo, bookingRepo, profiles, users, &fakeGateway{}, &fakeWallet{}, notifier)
	bookings := NewBookingService(bookingRepo, profiles, mentorships, notifier, RescheduleLeadHoursPolicy*time.Hour)
	ctx := context.Background()

	m, err := mentorships.Request(ctx, testUserID, &RequestInput{MentorID: testMentorID, TotalSessions: 7})
	require.NoError(t, err)
	_, err = mentorships.Accept(ctx, testMentorID, m.ID, &AcceptInput{})
	require.NoError(t, err)
	_, _, err = mentorships.ProceedToPayment(ctx, testUserID, m.ID)
	require.NoError(t, err)
	_, err = mentorships.VerifyPayment(ctx, testUserID, m.ID, "pay_1")
	require.NoError(t, err)

	first, err := bookings.Create(ctx, testUserID, &CreateBookingInput{
		MentorID: testMentorID,
		Date:     time.Now().AddDate(0, 0, 1).Format(dateLayout),
		Slot:     "9:00 AM - 10:00 AM",
	})
	require.NoError(t, err)
	_, err = bookings.Approve(ctx, testMentorID, first.ID)
	require.NoError(t, err)
	_, err = bookings.Cancel(ctx, testUserID, first.ID)
	require.NoError(t, err)

	// All seven budget units are still schedulable
	for i := 0; i < 7; i++ {
		b, err := bookings.Create(ctx, testUserID, &CreateBookingInput{
			MentorID: testMentorID,
			Date:     time.Now().AddDate(0, 0, i+2).Format(dateLayout),
			Slot:     "9:00 AM - 10:00 AM",
		})
		require.NoError(t, err)
		_, err = bookings.Approve(ctx, testMentorID, b.ID)
		require.NoError(t, err, "approval %d must fit the budget after the cancellation", i+1)
	}

	got, err := mentorships.GetByID(ctx, testUserID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UsedSessions)
}
