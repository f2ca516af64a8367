package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, fullName, language string) error
}

// UserService serves the settings page: profile reads and language or name
// updates.
type UserService struct {
	users     profileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users profileRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{users: users, validator: validate, logger: logger}
}

// Profile returns the caller's profile.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return &models.Profile{
		ID:                 user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		Role:               user.Role,
		SchoolID:           user.SchoolID,
		LanguagePreference: user.LanguagePreference,
	}, nil
}

// UpdateProfile changes the caller's display name and UI language.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if !models.SupportedLanguages[req.LanguagePreference] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported language")
	}
	if err := s.users.UpdateProfile(ctx, userID, req.FullName, req.LanguagePreference); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return s.Profile(ctx, userID)
}
