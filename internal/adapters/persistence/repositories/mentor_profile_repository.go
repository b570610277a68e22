package repositories

import (
	"context"

	"mentorhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMentorProfileRepository handles mentor profile data access
type GormMentorProfileRepository struct {
	db *gorm.DB
}

// NewMentorProfileRepository creates a new mentor profile repository
func NewMentorProfileRepository(db *gorm.DB) *GormMentorProfileRepository {
	return &GormMentorProfileRepository{db: db}
}

func (r *GormMentorProfileRepository) Upsert(ctx context.Context, profile *models.MentorProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expertise", "bio", "monthly_charge", "availability"}),
		}).
		Create(profile).Error
}

func (r *GormMentorProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.MentorProfile, error) {
	var profile models.MentorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	return &profile, err
}

func (r *GormMentorProfileRepository) List(ctx context.Context, offset, limit int) ([]*models.MentorProfile, int64, error) {
	var profiles []*models.MentorProfile
	var total int64

	r.db.WithContext(ctx).Model(&models.MentorProfile{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error

	return profiles, total, err
}

// GormPlatformConfigRepository handles platform config data access
type GormPlatformConfigRepository struct {
	db *gorm.DB
}

// NewPlatformConfigRepository creates a new platform config repository
func NewPlatformConfigRepository(db *gorm.DB) *GormPlatformConfigRepository {
	return &GormPlatformConfigRepository{db: db}
}

func (r *GormPlatformConfigRepository) GetValue(ctx context.Context, key string) (string, error) {
	var cfg models.PlatformConfig
	err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		return "", err
	}
	return cfg.ConfigValue, nil
}

func (r *GormPlatformConfigRepository) Set(ctx context.Context, key, value, description string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "description"}),
		}).
		Create(&models.PlatformConfig{ConfigKey: key, ConfigValue: value, Description: description}).Error
}

func (r *GormPlatformConfigRepository) ListAll(ctx context.Context) ([]*models.PlatformConfig, error) {
	var rows []*models.PlatformConfig
	err := r.db.WithContext(ctx).Order("config_key ASC").Find(&rows).Error
	return rows, err
}
