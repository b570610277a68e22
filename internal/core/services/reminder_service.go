package services

import (
	"context"
	"log"

	"mentorhub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService sends next-day session reminders on a daily schedule
type ReminderService struct {
	bookingRepo repositories.BookingRepository
	notifier    Notifier
	cron        *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(bookingRepo repositories.BookingRepository, notifier Notifier) *ReminderService {
	return &ReminderService{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		cron:        cron.New(),
	}
}

// Start schedules the daily reminder run at 08:00 server time.
func (s *ReminderService) Start() error {
	_, err := s.cron.AddFunc("0 8 * * *", func() {
		if err := s.SendUpcomingReminders(context.Background()); err != nil {
			log.Printf("⚠️ Reminder run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Reminder scheduler started (daily 08:00)")
	return nil
}

// Stop halts the scheduler, letting a running job finish.
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SendUpcomingReminders notifies both parties of every session confirmed for
// tomorrow.
func (s *ReminderService) SendUpcomingReminders(ctx context.Context) error {
	tomorrow := todayDate().AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListConfirmedOnDate(ctx, tomorrow)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		payload := map[string]interface{}{
			"booking_id":   b.ID,
			"date":         b.BookingDate.Format(dateLayout),
			"slot":         b.Slot,
			"meeting_link": b.MeetingLink,
		}
		s.notifier.Notify(b.UserID, NotifyBookingReminder, payload)
		s.notifier.Notify(b.MentorID, NotifyBookingReminder, payload)
	}

	log.Printf("✅ Sent reminders for %d sessions on %s", len(bookings), tomorrow.Format(dateLayout))
	return nil
}
