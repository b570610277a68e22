package services

import (
	"context"
	"log"

	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/adapters/persistence/repositories"
	"mentorhub/internal/core/domain"
)

// MentorService manages mentor profiles and the public mentor directory
type MentorService struct {
	profileRepo repositories.MentorProfileRepository
	userRepo    repositories.UserRepository
}

// NewMentorService creates a new mentor service
func NewMentorService(profileRepo repositories.MentorProfileRepository, userRepo repositories.UserRepository) *MentorService {
	return &MentorService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// ProfileInput represents a mentor profile create/update
type ProfileInput struct {
	Expertise     string  `json:"expertise" validate:"required"`
	Bio           string  `json:"bio,omitempty"`
	MonthlyCharge float64 `json:"monthly_charge" validate:"required"`
	Availability  string  `json:"availability,omitempty"`
}

// UpsertProfile creates or updates the mentor's own profile. Availability is
// stored as the mentor typed it; the slot engine deals with whatever is in
// there.
func (s *MentorService) UpsertProfile(ctx context.Context, mentorID uint, input *ProfileInput) (*models.MentorProfile, error) {
	if input.Expertise == "" {
		return nil, domain.Validationf("expertise is required")
	}
	if input.MonthlyCharge <= 0 {
		return nil, domain.Validationf("monthly charge must be positive, got %.2f", input.MonthlyCharge)
	}

	user, err := s.userRepo.GetByID(ctx, mentorID)
	if err != nil {
		return nil, domain.NotFoundf("user %d not found", mentorID)
	}
	if user.Role != models.RoleMentor {
		return nil, domain.Preconditionf("only mentors can publish a profile")
	}

	profile := &models.MentorProfile{
		UserID:        mentorID,
		Expertise:     input.Expertise,
		Bio:           input.Bio,
		MonthlyCharge: input.MonthlyCharge,
		Availability:  input.Availability,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Mentor profile saved: user=%d charge=%.2f", mentorID, input.MonthlyCharge)
	return s.profileRepo.GetByUserID(ctx, mentorID)
}

// GetProfile returns a mentor's public profile
func (s *MentorService) GetProfile(ctx context.Context, mentorID uint) (*models.MentorProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, mentorID)
	if err != nil {
		return nil, domain.NotFoundf("mentor %d not found", mentorID)
	}
	return profile, nil
}

// ListProfiles returns the public mentor directory
func (s *MentorService) ListProfiles(ctx context.Context, offset, limit int) ([]*models.MentorProfile, int64, error) {
	return s.profileRepo.List(ctx, offset, limit)
}
