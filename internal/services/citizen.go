package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// CitizenStats is the profile view with derived figures.
type CitizenStats struct {
	Citizen      *types.Citizen `json:"citizen"`
	AccuracyRate float64        `json:"accuracyRate"`
}

// UpdateProfileParams carries partial profile edits; nil pointers leave
// the corresponding flag untouched.
type UpdateProfileParams struct {
	Name                 string
	Email                string
	City                 string
	IsAnonymousMode      *bool
	NotificationsEnabled *bool
}

type CitizenService interface {
	Profile(ctx context.Context, id uuid.UUID) (*CitizenStats, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*types.Citizen, error)
	Leaderboard(ctx context.Context, limit int) ([]*types.Citizen, error)
}

type citizenService struct {
	citizenRepo repos.CitizenRepo
	log         *logger.Logger
}

func NewCitizenService(citizenRepo repos.CitizenRepo, baseLog *logger.Logger) CitizenService {
	return &citizenService{
		citizenRepo: citizenRepo,
		log:         baseLog.With("service", "CitizenService"),
	}
}

func (s *citizenService) Profile(ctx context.Context, id uuid.UUID) (*CitizenStats, error) {
	citizen, err := s.citizenRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("citizen")
		}
		return nil, err
	}
	return &CitizenStats{
		Citizen:      citizen,
		AccuracyRate: citizen.AccuracyRate(),
	}, nil
}

func (s *citizenService) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*types.Citizen, error) {
	citizen, err := s.citizenRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("citizen")
		}
		return nil, err
	}
	if params.Name != "" {
		citizen.Name = params.Name
	}
	if params.Email != "" {
		citizen.Email = params.Email
	}
	if params.City != "" {
		citizen.City = params.City
	}
	if params.IsAnonymousMode != nil {
		citizen.IsAnonymousMode = *params.IsAnonymousMode
	}
	if params.NotificationsEnabled != nil {
		citizen.NotificationsEnabled = *params.NotificationsEnabled
	}
	return s.citizenRepo.Update(ctx, nil, citizen)
}

func (s *citizenService) Leaderboard(ctx context.Context, limit int) ([]*types.Citizen, error) {
	return s.citizenRepo.TopByPoints(ctx, nil, limit)
}
