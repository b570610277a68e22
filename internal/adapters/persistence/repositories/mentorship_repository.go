package repositories

import (
	"context"

	"mentorhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormMentorshipRepository handles mentorship data access
type GormMentorshipRepository struct {
	db *gorm.DB
}

// NewMentorshipRepository creates a new mentorship repository
func NewMentorshipRepository(db *gorm.DB) *GormMentorshipRepository {
	return &GormMentorshipRepository{db: db}
}

func (r *GormMentorshipRepository) Create(ctx context.Context, m *models.Mentorship) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormMentorshipRepository) GetByID(ctx context.Context, id uint) (*models.Mentorship, error) {
	var m models.Mentorship
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Mentor").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&m, id).Error
	return &m, err
}

// UpdateFields applies a partial update guarded by the aggregate version.
// The version bump in the same statement means concurrent writers cannot both
// match: the loser gets ErrStaleAggregate and must re-read.
func (r *GormMentorshipRepository) UpdateFields(ctx context.Context, id uint, version int, updates map[string]interface{}) error {
	updates["version"] = version + 1
	res := r.db.WithContext(ctx).
		Model(&models.Mentorship{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleAggregate
	}
	return nil
}

// IncrementUsedSessions bumps the counter atomically; the WHERE guard keeps
// the used <= total invariant intact even under concurrent completions.
func (r *GormMentorshipRepository) IncrementUsedSessions(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Mentorship{}).
		Where("id = ? AND used_sessions < total_sessions", id).
		Update("used_sessions", gorm.Expr("used_sessions + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBudgetExhausted
	}
	return nil
}

func (r *GormMentorshipRepository) ClaimWalletCredit(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Mentorship{}).
		Where("id = ? AND wallet_credited = ?", id, false).
		Update("wallet_credited", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMentorshipRepository) ReleaseWalletCredit(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Mentorship{}).
		Where("id = ?", id).
		Update("wallet_credited", false).Error
}

func (r *GormMentorshipRepository) AppendSession(ctx context.Context, session *models.MentorshipSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormMentorshipRepository) UpdateSessionFields(ctx context.Context, sessionID uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.MentorshipSession{}).
		Where("id = ?", sessionID).
		Updates(updates).Error
}

func (r *GormMentorshipRepository) GetBookedSessionByBooking(ctx context.Context, mentorshipID, bookingID uint) (*models.MentorshipSession, error) {
	var session models.MentorshipSession
	err := r.db.WithContext(ctx).
		Where("mentorship_id = ? AND booking_id = ? AND status = ?", mentorshipID, bookingID, models.SessionBooked).
		First(&session).Error
	return &session, err
}

// CountBudgetedSessions counts only entries that hold a budget unit; a
// cancelled session frees its unit for a fresh booking.
func (r *GormMentorshipRepository) CountBudgetedSessions(ctx context.Context, mentorshipID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MentorshipSession{}).
		Where("mentorship_id = ? AND status IN ?", mentorshipID,
			[]models.SessionStatus{models.SessionBooked, models.SessionCompleted}).
		Count(&count).Error
	return count, err
}

// FindOpenByPair returns the pair's non-terminal engagement, if any.
func (r *GormMentorshipRepository) FindOpenByPair(ctx context.Context, userID, mentorID uint) (*models.Mentorship, error) {
	var m models.Mentorship
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND mentor_id = ? AND status NOT IN ?", userID, mentorID,
			[]models.MentorshipStatus{models.MentorshipCompleted, models.MentorshipRejected, models.MentorshipCancelled}).
		Order("created_at DESC").
		First(&m).Error
	return &m, err
}

func (r *GormMentorshipRepository) HasWithStatus(ctx context.Context, userID, mentorID uint, statuses []models.MentorshipStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Mentorship{}).
		Where("user_id = ? AND mentor_id = ? AND status IN ?", userID, mentorID, statuses).
		Count(&count).Error
	return count > 0, err
}

func (r *GormMentorshipRepository) ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return r.list(ctx, "user_id = ?", userID, offset, limit, status)
}

func (r *GormMentorshipRepository) ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return r.list(ctx, "mentor_id = ?", mentorID, offset, limit, status)
}

func (r *GormMentorshipRepository) list(ctx context.Context, cond string, id uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	var mentorships []*models.Mentorship
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Mentorship{}).Where(cond, id)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	query.Count(&total)

	err := query.
		Preload("User").
		Preload("Mentor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&mentorships).Error

	return mentorships, total, err
}
