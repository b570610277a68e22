package models

import (
	"time"
)

// MentorshipStatus is the closed set of engagement states.
type MentorshipStatus string

const (
	MentorshipPending        MentorshipStatus = "PENDING"
	MentorshipMentorAccepted MentorshipStatus = "MENTOR_ACCEPTED"
	MentorshipUserConfirmed  MentorshipStatus = "USER_CONFIRMED"
	MentorshipPaymentPending MentorshipStatus = "PAYMENT_PENDING"
	MentorshipActive         MentorshipStatus = "ACTIVE"
	MentorshipCompleted      MentorshipStatus = "COMPLETED"
	MentorshipRejected       MentorshipStatus = "REJECTED"
	MentorshipCancelled      MentorshipStatus = "CANCELLED"
)

// Terminal reports whether the engagement can no longer change state.
func (s MentorshipStatus) Terminal() bool {
	switch s {
	case MentorshipCompleted, MentorshipRejected, MentorshipCancelled:
		return true
	}
	return false
}

// Payment states
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentVerified = "verified"
)

// Session budget bounds, fixed at engagement creation
const (
	MinTotalSessions = 7
	MaxTotalSessions = 10
)

// EngagementWindowMonths is the fixed length of an ACTIVE engagement.
const EngagementWindowMonths = 1

// Mentorship is the engagement aggregate between one user and one mentor.
// Terminal rows are kept for history, never deleted. Version backs the
// optimistic read-modify-write updates: concurrent flag flips must not
// overwrite each other with a stale copy.
type Mentorship struct {
	ID                        uint             `gorm:"primaryKey" json:"id"`
	UserID                    uint             `gorm:"not null;index" json:"user_id"`
	MentorID                  uint             `gorm:"not null;index" json:"mentor_id"`
	Status                    MentorshipStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	TotalSessions             int              `gorm:"not null" json:"total_sessions"`
	UsedSessions              int              `gorm:"not null;default:0" json:"used_sessions"`
	Amount                    float64          `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentStatus             string           `gorm:"size:10;not null;default:'pending'" json:"payment_status"`
	PaymentID                 string           `gorm:"size:100" json:"payment_id"`
	WalletCredited            bool             `gorm:"default:false" json:"-"`
	ProposedStartDate         *time.Time       `gorm:"type:date" json:"proposed_start_date"`
	MentorSuggestedStartDate  *time.Time       `gorm:"type:date" json:"mentor_suggested_start_date"`
	StartDate                 *time.Time       `gorm:"type:date" json:"start_date"`
	EndDate                   *time.Time       `gorm:"type:date" json:"end_date"`
	UserConfirmedCompletion   bool             `gorm:"default:false" json:"user_confirmed_completion"`
	MentorConfirmedCompletion bool             `gorm:"default:false" json:"mentor_confirmed_completion"`
	RejectionReason           string           `gorm:"type:text" json:"rejection_reason,omitempty"`
	UserRating                *int             `json:"user_rating,omitempty"`
	UserComment               string           `gorm:"type:text" json:"user_comment,omitempty"`
	MentorRating              *int             `json:"mentor_rating,omitempty"`
	MentorComment             string           `gorm:"type:text" json:"mentor_comment,omitempty"`
	Version                   int              `gorm:"not null;default:0" json:"-"`
	CreatedAt                 time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	User     *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Mentor   *User               `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
	Sessions []MentorshipSession `gorm:"foreignKey:MentorshipID" json:"sessions,omitempty"`
}

func (Mentorship) TableName() string {
	return "mentorships"
}

// SessionStatus is the closed set of ledger entry states.
type SessionStatus string

const (
	SessionPending   SessionStatus = "PENDING"
	SessionBooked    SessionStatus = "BOOKED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// MentorshipSession is one unit of the engagement's session budget, appended
// as bookings are approved. BookingID ties the entry to its calendar booking
// so cancellations and reschedules find it no matter where the booking moved.
// Only BOOKED and COMPLETED entries count against the budget; CANCELLED rows
// stay for history.
type MentorshipSession struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	MentorshipID uint          `gorm:"not null;index" json:"mentorship_id"`
	BookingID    uint          `gorm:"index" json:"booking_id,omitempty"`
	Position     int           `gorm:"not null" json:"position"`
	Status       SessionStatus `gorm:"size:25;not null;default:'PENDING'" json:"status"`
	Date         *time.Time    `gorm:"type:date" json:"date"`
	Slot         string        `gorm:"size:40" json:"slot"`
	MentorNotes  string        `gorm:"type:text" json:"mentor_notes,omitempty"`
	UserNotes    string        `gorm:"type:text" json:"user_notes,omitempty"`
	MeetingLink  string        `gorm:"size:255" json:"meeting_link,omitempty"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MentorshipSession) TableName() string {
	return "mentorship_sessions"
}

// MentorshipResponse DTO
type MentorshipResponse struct {
	ID                        uint                `json:"id"`
	UserID                    uint                `json:"user_id"`
	UserName                  string              `json:"user_name,omitempty"`
	MentorID                  uint                `json:"mentor_id"`
	MentorName                string              `json:"mentor_name,omitempty"`
	Status                    MentorshipStatus    `json:"status"`
	TotalSessions             int                 `json:"total_sessions"`
	UsedSessions              int                 `json:"used_sessions"`
	Amount                    float64             `json:"amount"`
	PaymentStatus             string              `json:"payment_status"`
	ProposedStartDate         *time.Time          `json:"proposed_start_date,omitempty"`
	MentorSuggestedStartDate  *time.Time          `json:"mentor_suggested_start_date,omitempty"`
	StartDate                 *time.Time          `json:"start_date,omitempty"`
	EndDate                   *time.Time          `json:"end_date,omitempty"`
	UserConfirmedCompletion   bool                `json:"user_confirmed_completion"`
	MentorConfirmedCompletion bool                `json:"mentor_confirmed_completion"`
	RejectionReason           string              `json:"rejection_reason,omitempty"`
	Sessions                  []MentorshipSession `json:"sessions,omitempty"`
	CreatedAt                 time.Time           `json:"created_at"`
}

func (m *Mentorship) ToResponse() *MentorshipResponse {
	resp := &MentorshipResponse{
		ID:                        m.ID,
		UserID:                    m.UserID,
		MentorID:                  m.MentorID,
		Status:                    m.Status,
		TotalSessions:             m.TotalSessions,
		UsedSessions:              m.UsedSessions,
		Amount:                    m.Amount,
		PaymentStatus:             m.PaymentStatus,
		ProposedStartDate:         m.ProposedStartDate,
		MentorSuggestedStartDate:  m.MentorSuggestedStartDate,
		StartDate:                 m.StartDate,
		EndDate:                   m.EndDate,
		UserConfirmedCompletion:   m.UserConfirmedCompletion,
		MentorConfirmedCompletion: m.MentorConfirmedCompletion,
		RejectionReason:           m.RejectionReason,
		Sessions:                  m.Sessions,
		CreatedAt:                 m.CreatedAt,
	}

	if m.User != nil {
		resp.UserName = m.User.Username
	}
	if m.Mentor != nil {
		resp.MentorName = m.Mentor.Username
	}

	return resp
}
