package config

import (
	"log"
	"strconv"

	"mentorhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedPlatformConfig(); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedPlatformConfig writes the tunable policy rows so operators can adjust
// them without a redeploy. Values already present are refreshed from env.
func (s *Seeder) seedPlatformConfig() error {
	rows := []models.PlatformConfig{
		{
			ConfigKey:   "reschedule_lead_hours",
			ConfigValue: strconv.Itoa(s.cfg.Policy.RescheduleLeadHours),
			Description: "Minimum hours before session start to request a reschedule",
		},
		{
			ConfigKey:   "min_total_sessions",
			ConfigValue: strconv.Itoa(models.MinTotalSessions),
			Description: "Minimum sessions per mentorship",
		},
		{
			ConfigKey:   "max_total_sessions",
			ConfigValue: strconv.Itoa(models.MaxTotalSessions),
			Description: "Maximum sessions per mentorship",
		},
	}

	for _, row := range rows {
		err := s.db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "config_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"config_value", "description"}),
			}).
			Create(&row).Error
		if err != nil {
			return err
		}
	}

	return nil
}
