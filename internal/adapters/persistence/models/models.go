package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser   = "USER"
	RoleMentor = "MENTOR"
)

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// MentorProfile holds a mentor's public offer: expertise, monthly charge and
// coarse availability windows. Availability is legacy free text
// ("9am-5pm,6pm-8pm"); the timeslot package slices it into bookable slots.
type MentorProfile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Expertise     string         `gorm:"size:255" json:"expertise"`
	Bio           string         `gorm:"type:text" json:"bio"`
	MonthlyCharge float64        `gorm:"type:decimal(10,2);not null" json:"monthly_charge"`
	Availability  string         `gorm:"size:500" json:"availability"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (MentorProfile) TableName() string {
	return "mentor_profiles"
}

// AvailabilityRanges splits the stored availability text into range strings.
func (p *MentorProfile) AvailabilityRanges() []string {
	if p.Availability == "" {
		return nil
	}
	parts := strings.Split(p.Availability, ",")
	ranges := make([]string, 0, len(parts))
	for _, part := range parts {
		if r := strings.TrimSpace(part); r != "" {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// PlatformConfig stores tunable platform policy as key/value rows
type PlatformConfig struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ConfigKey   string `gorm:"size:50;uniqueIndex;not null" json:"config_key"`
	ConfigValue string `gorm:"size:255;not null" json:"config_value"`
	Description string `gorm:"size:255" json:"description"`
}

func (PlatformConfig) TableName() string {
	return "platform_config"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all owned tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&MentorProfile{},
		&Mentorship{},
		&MentorshipSession{},
		&Booking{},
		&PlatformConfig{},
	)
}
