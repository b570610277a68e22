package repositories

import (
	"context"
	"errors"
	"time"

	"mentorhub/internal/adapters/persistence/models"
)

// Storage-level sentinels. Services translate these into the domain taxonomy.
var (
	// ErrStaleAggregate means a versioned update matched no row: another
	// writer got there first and the caller must re-read.
	ErrStaleAggregate = errors.New("stale aggregate version")

	// ErrDuplicateSlot means the unique slot-key index rejected an insert:
	// the mentor already has a live booking for that date and slot.
	ErrDuplicateSlot = errors.New("slot already booked")

	// ErrBudgetExhausted means a guarded used-session increment matched no
	// row because used_sessions already reached total_sessions.
	ErrBudgetExhausted = errors.New("session budget exhausted")
)

// UserRepository defines user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
}

// MentorProfileRepository defines mentor profile data access
type MentorProfileRepository interface {
	Upsert(ctx context.Context, profile *models.MentorProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.MentorProfile, error)
	List(ctx context.Context, offset, limit int) ([]*models.MentorProfile, int64, error)
}

// MentorshipRepository owns the engagement aggregate and its embedded session
// ledger. Mutations to contended fields go through versioned or atomic
// updates, never whole-row saves.
type MentorshipRepository interface {
	Create(ctx context.Context, m *models.Mentorship) error
	GetByID(ctx context.Context, id uint) (*models.Mentorship, error)

	// UpdateFields applies a partial update guarded by the aggregate version;
	// returns ErrStaleAggregate when the version no longer matches.
	UpdateFields(ctx context.Context, id uint, version int, updates map[string]interface{}) error

	// IncrementUsedSessions bumps used_sessions atomically, refusing with
	// ErrBudgetExhausted once the budget is spent.
	IncrementUsedSessions(ctx context.Context, id uint) error

	// ClaimWalletCredit flips wallet_credited from false to true; reports
	// whether this caller won the claim. ReleaseWalletCredit undoes a claim
	// whose ledger call failed.
	ClaimWalletCredit(ctx context.Context, id uint) (bool, error)
	ReleaseWalletCredit(ctx context.Context, id uint) error

	AppendSession(ctx context.Context, session *models.MentorshipSession) error
	UpdateSessionFields(ctx context.Context, sessionID uint, updates map[string]interface{}) error

	// GetBookedSessionByBooking returns the live (BOOKED) ledger entry tied
	// to a booking, if the booking was charged to this engagement.
	GetBookedSessionByBooking(ctx context.Context, mentorshipID, bookingID uint) (*models.MentorshipSession, error)

	// CountBudgetedSessions counts the entries holding a budget unit:
	// BOOKED and COMPLETED. Cancelled entries return their unit.
	CountBudgetedSessions(ctx context.Context, mentorshipID uint) (int64, error)

	FindOpenByPair(ctx context.Context, userID, mentorID uint) (*models.Mentorship, error)
	HasWithStatus(ctx context.Context, userID, mentorID uint, statuses []models.MentorshipStatus) (bool, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error)
	ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error)
}

// BookingRepository owns calendar reservations. Create must enforce the
// (mentor, date, slot) uniqueness at the storage layer: two racing inserts
// for the same live tuple get exactly one winner.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error

	CountActiveByUserOnDate(ctx context.Context, userID uint, date time.Time) (int64, error)
	ListActiveSlots(ctx context.Context, mentorID uint, date time.Time) ([]string, error)
	ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error)
	ListConfirmedOnDate(ctx context.Context, date time.Time) ([]*models.Booking, error)
	CancelActiveByPair(ctx context.Context, userID, mentorID uint) error
}

// PlatformConfigRepository reads tunable policy values seeded at startup
type PlatformConfigRepository interface {
	GetValue(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	ListAll(ctx context.Context) ([]*models.PlatformConfig, error)
}
