package models

import (
	"fmt"
	"time"
)

// BookingStatus is the closed set of reservation states.
type BookingStatus string

const (
	BookingPending     BookingStatus = "PENDING"
	BookingConfirmed   BookingStatus = "CONFIRMED"
	BookingRescheduled BookingStatus = "RESCHEDULED"
	BookingCancelled   BookingStatus = "CANCELLED"
	BookingCompleted   BookingStatus = "COMPLETED"
)

// Terminal reports whether the booking can no longer change state.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Reschedule requesters
const (
	RescheduleByUser   = "user"
	RescheduleByMentor = "mentor"
)

// DefaultSlotMinutes is the default booking duration.
const DefaultSlotMinutes = 60

// Booking reserves one mentor calendar slot on one date. Rows are never
// deleted, only status-transitioned, so cancelled history survives.
//
// SlotKey is the storage-level double-booking guard: it holds
// "mentorID|date|slot" while the booking is live and is nulled out on
// cancellation. The unique index makes the second of two racing inserts fail
// at the database, while MySQL's repeated-NULL rule keeps any number of
// cancelled rows for the same tuple.
type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	MentorID      uint          `gorm:"not null;index" json:"mentor_id"`
	BookingDate   time.Time     `gorm:"type:date;not null;index" json:"booking_date"`
	Slot          string        `gorm:"size:40;not null" json:"slot"`
	SlotKey       *string       `gorm:"size:80;uniqueIndex" json:"-"`
	Duration      int           `gorm:"not null;default:60" json:"duration"`
	Status        BookingStatus `gorm:"size:15;not null;default:'PENDING';index" json:"status"`
	Topic         string        `gorm:"type:text" json:"topic,omitempty"`
	MeetingLink   string        `gorm:"size:255" json:"meeting_link,omitempty"`
	RescheduleBy  string        `gorm:"size:10" json:"reschedule_by,omitempty"`
	ProposedDate  *time.Time    `gorm:"type:date" json:"proposed_date,omitempty"`
	ProposedSlot  string        `gorm:"size:40" json:"proposed_slot,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Mentor *User `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// SlotKeyFor builds the uniqueness key for a live booking.
func SlotKeyFor(mentorID uint, date time.Time, slot string) string {
	return fmt.Sprintf("%d|%s|%s", mentorID, date.Format("2006-01-02"), slot)
}

// BookingResponse DTO
type BookingResponse struct {
	ID           uint          `json:"id"`
	UserID       uint          `json:"user_id"`
	UserName     string        `json:"user_name,omitempty"`
	MentorID     uint          `json:"mentor_id"`
	MentorName   string        `json:"mentor_name,omitempty"`
	BookingDate  time.Time     `json:"booking_date"`
	Slot         string        `json:"slot"`
	Duration     int           `json:"duration"`
	Status       BookingStatus `json:"status"`
	Topic        string        `json:"topic,omitempty"`
	MeetingLink  string        `json:"meeting_link,omitempty"`
	RescheduleBy string        `json:"reschedule_by,omitempty"`
	ProposedDate *time.Time    `json:"proposed_date,omitempty"`
	ProposedSlot string        `json:"proposed_slot,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (b *Booking) ToResponse() *BookingResponse {
	resp := &BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		MentorID:     b.MentorID,
		BookingDate:  b.BookingDate,
		Slot:         b.Slot,
		Duration:     b.Duration,
		Status:       b.Status,
		Topic:        b.Topic,
		MeetingLink:  b.MeetingLink,
		RescheduleBy: b.RescheduleBy,
		ProposedDate: b.ProposedDate,
		ProposedSlot: b.ProposedSlot,
		CreatedAt:    b.CreatedAt,
	}

	if b.User != nil {
		resp.UserName = b.User.Username
	}
	if b.Mentor != nil {
		resp.MentorName = b.Mentor.Username
	}

	return resp
}
