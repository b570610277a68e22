package repositories

import (
	"context"
	"errors"
	"time"

	"mentorhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormBookingRepository handles booking data access
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create inserts a booking. The slot_key unique index is the double-booking
// guard: when two requests race for the same (mentor, date, slot) the
// database rejects the second insert and the caller sees ErrDuplicateSlot.
// Requires TranslateError on the gorm config so duplicate-key violations
// surface as gorm.ErrDuplicatedKey.
func (r *GormBookingRepository) Create(ctx context.Context, b *models.Booking) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlot
	}
	return err
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Mentor").
		First(&b, id).Error
	return &b, err
}

// UpdateFields applies a partial update. An accepted reschedule moves the
// booking's slot_key through the same unique index that guards Create, so a
// duplicate-key violation here is also reported as ErrDuplicateSlot.
func (r *GormBookingRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlot
	}
	return err
}

func (r *GormBookingRepository) CountActiveByUserOnDate(ctx context.Context, userID uint, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("user_id = ? AND booking_date = ? AND status <> ?", userID, date, models.BookingCancelled).
		Count(&count).Error
	return count, err
}

// ListActiveSlots returns the slot labels already held against a mentor's
// date, for subtracting from the availability-derived slot list.
func (r *GormBookingRepository) ListActiveSlots(ctx context.Context, mentorID uint, date time.Time) ([]string, error) {
	var slots []string
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("mentor_id = ? AND booking_date = ? AND status <> ?", mentorID, date, models.BookingCancelled).
		Pluck("slot", &slots).Error
	return slots, err
}

// ListByMentor lists a mentor's bookings soonest-first (operational view).
func (r *GormBookingRepository) ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return r.list(ctx, "mentor_id = ?", mentorID, offset, limit, status, "booking_date ASC")
}

// ListByUser lists a user's bookings newest-first (history view).
func (r *GormBookingRepository) ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return r.list(ctx, "user_id = ?", userID, offset, limit, status, "booking_date DESC")
}

func (r *GormBookingRepository) list(ctx context.Context, cond string, id uint, offset, limit int, status *models.BookingStatus, order string) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{}).Where(cond, id)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	query.Count(&total)

	err := query.
		Preload("User").
		Preload("Mentor").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&bookings).Error

	return bookings, total, err
}

func (r *GormBookingRepository) ListConfirmedOnDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Mentor").
		Where("booking_date = ? AND status = ?", date, models.BookingConfirmed).
		Order("mentor_id ASC, slot ASC").
		Find(&bookings).Error
	return bookings, err
}

// CancelActiveByPair releases every live reservation between a pair, used
// when their engagement is cancelled. Clearing slot_key frees the calendar
// tuple for new bookings.
func (r *GormBookingRepository) CancelActiveByPair(ctx context.Context, userID, mentorID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("user_id = ? AND mentor_id = ? AND status IN ?", userID, mentorID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingRescheduled}).
		Updates(map[string]interface{}{
			"status":   models.BookingCancelled,
			"slot_key": nil,
		}).Error
}
