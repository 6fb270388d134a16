package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

const defaultHideReason = "Hidden by admin"

type moderationContentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Content, error)
	UpdateStatus(ctx context.Context, id string, status models.ContentStatus, notes string) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	Delete(ctx context.Context, id string) error
}

type moderationUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ModerationService applies admin actions to content items and teacher
// accounts. Non-destructive actions are idempotent.
type ModerationService struct {
	contents  moderationContentRepository
	users     moderationUserRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModerationService constructs a ModerationService instance.
func NewModerationService(contents moderationContentRepository, users moderationUserRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ModerationService{contents: contents, users: users, cache: cache, validator: validate, logger: logger}
}

// ManageContent applies the requested action to a content item. Delete
// removes the row and returns nil; every other action returns the item
// in its new state.
func (s *ModerationService) ManageContent(ctx context.Context, adminID, contentID string, req models.ModerateContentRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid moderation payload")
	}

	content, err := s.contents.FindByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}

	if req.Action == models.ActionDelete {
		if err := s.contents.Delete(ctx, contentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
		}
		s.recordContentAudit(ctx, adminID, content, req)
		s.invalidateContentCache(ctx)
		return nil, nil
	}

	switch req.Action {
	case models.ActionHide:
		reason := req.Reason
		if reason == "" {
			reason = defaultHideReason
		}
		if err := s.contents.UpdateStatus(ctx, contentID, models.ContentStatusRejected, reason); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hide content")
		}
		content.Status = models.ContentStatusRejected
		content.ModerationNotes = reason
	case models.ActionUnhide:
		if err := s.contents.UpdateStatus(ctx, contentID, models.ContentStatusPublished, ""); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore content")
		}
		content.Status = models.ContentStatusPublished
		content.ModerationNotes = ""
	case models.ActionFeature:
		if err := s.contents.SetFeatured(ctx, contentID, true); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to feature content")
		}
		content.Featured = true
	case models.ActionUnfeature:
		if err := s.contents.SetFeatured(ctx, contentID, false); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unfeature content")
		}
		content.Featured = false
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported action %q", req.Action))
	}

	// Status may have shifted published_at server-side, reload for the response.
	updated, err := s.contents.FindByID(ctx, contentID)
	if err == nil {
		content = updated
	}

	s.recordContentAudit(ctx, adminID, content, req)
	s.invalidateContentCache(ctx)
	return content, nil
}

// ManageTeacher applies an admin action to a teacher account. Only delete
// is supported; accounts with any other role are reported as not found.
func (s *ModerationService) ManageTeacher(ctx context.Context, adminID, teacherID string, req models.ManageTeacherRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manage teacher payload")
	}

	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	if err := s.users.Delete(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionManageTeacher,
		Resource:   "users",
		ResourceID: &teacherID,
		NewValues:  []byte(fmt.Sprintf(`{"action":%q}`, req.Action)),
	}); err != nil {
		s.logger.Warn("failed to record teacher moderation audit log", zap.Error(err))
	}

	s.invalidateContentCache(ctx)
	return nil
}

func (s *ModerationService) recordContentAudit(ctx context.Context, adminID string, content *models.Content, req models.ModerateContentRequest) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     models.AuditActionManageContent,
		Resource:   "contents",
		ResourceID: &content.ID,
		NewValues:  []byte(fmt.Sprintf(`{"action":%q,"reason":%q}`, req.Action, req.Reason)),
	}); err != nil {
		s.logger.Warn("failed to record content moderation audit log", zap.Error(err))
	}
}

func (s *ModerationService) invalidateContentCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "content:*"); err != nil {
		s.logger.Warn("failed to invalidate content cache", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
