package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/media"
)

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateProfileImage(ctx context.Context, id, imageURL, imageID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type imageUploader interface {
	UploadProfileImage(ctx context.Context, r io.Reader, crop *media.CropRect) (string, string, error)
	Delete(ctx context.Context, publicID string) error
}

// ProfileService handles an account's own profile reads and updates.
type ProfileService struct {
	repo      profileUserRepository
	uploader  imageUploader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(repo profileUserRepository, uploader imageUploader, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, uploader: uploader, validator: validate, logger: logger}
}

// Get loads the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return user, nil
}

// Update replaces the editable profile fields.
func (s *ProfileService) Update(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	user.Name = req.Name
	user.Bio = req.Bio
	user.Title = req.Title
	user.Specialties = req.Specialties
	user.YearsOfExperience = req.YearsOfExperience
	user.Phone = req.ContactInfo.Phone
	user.Website = req.ContactInfo.Website
	user.Twitter = req.SocialMedia.Twitter
	user.Instagram = req.SocialMedia.Instagram
	user.Youtube = req.SocialMedia.Youtube
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionProfileUpdate,
		Resource:   "users",
		ResourceID: &userID,
	}); err != nil {
		s.logger.Warn("failed to record profile update audit log", zap.Error(err))
	}

	return user, nil
}

// UploadImage stores a new profile picture and removes the previous one.
func (s *ProfileService) UploadImage(ctx context.Context, userID string, r io.Reader, crop *media.CropRect) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	url, publicID, err := s.uploader.UploadProfileImage(ctx, r, crop)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload image")
	}

	if user.ProfileImageID != "" {
		if err := s.uploader.Delete(ctx, user.ProfileImageID); err != nil {
			s.logger.Warn("failed to remove previous profile image",
				zap.String("public_id", user.ProfileImageID), zap.Error(err))
		}
	}

	if err := s.repo.UpdateProfileImage(ctx, userID, url, publicID); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image reference")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionImageUpload,
		Resource:   "users",
		ResourceID: &userID,
	}); err != nil {
		s.logger.Warn("failed to record image upload audit log", zap.Error(err))
	}

	return url, nil
}
