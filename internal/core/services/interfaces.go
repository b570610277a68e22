package services

import "context"

// Notification event types sent to the webhook relay
const (
	NotifyMentorshipRequested = "mentorship_requested"
	NotifyMentorshipAccepted  = "mentorship_accepted"
	NotifyMentorshipRejected  = "mentorship_rejected"
	NotifyDateSuggested       = "mentorship_date_suggested"
	NotifyDateDeclined        = "mentorship_date_declined"
	NotifyPaymentPending      = "mentorship_payment_pending"
	NotifyMentorshipActivated = "mentorship_activated"
	NotifyMentorshipCompleted = "mentorship_completed"
	NotifyMentorshipCancelled = "mentorship_cancelled"
	NotifyBookingRequested    = "booking_requested"
	NotifyBookingConfirmed    = "booking_confirmed"
	NotifyBookingCancelled    = "booking_cancelled"
	NotifyBookingCompleted    = "booking_completed"
	NotifyRescheduleRequested = "booking_reschedule_requested"
	NotifyRescheduleAccepted  = "booking_reschedule_accepted"
	NotifyRescheduleDeclined  = "booking_reschedule_declined"
	NotifyBookingReminder     = "booking_reminder"
)

// Notifier delivers best-effort notifications. Implementations must not block
// business flows and must swallow delivery failures (log only).
type Notifier interface {
	Notify(recipientID uint, event string, payload map[string]interface{})
}

// CheckoutSession is the provider-side payment session a user is redirected to.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PaymentGateway creates provider checkout sessions. The provider confirms
// payment asynchronously; its callback carries the payment id that
// VerifyPayment consumes.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, amount float64, reference string) (*CheckoutSession, error)
}

// WalletLedger credits mentor earnings on the payout side.
type WalletLedger interface {
	AddEarnings(ctx context.Context, mentorID uint, amount float64, mentorshipID uint) error
}
