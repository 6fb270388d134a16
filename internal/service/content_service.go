package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

const wordsPerMinute = 200

type contentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	FindByID(ctx context.Context, id string) (*models.Content, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Content, error)
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) error
}

// ContentList pairs a page of content with its pagination metadata.
type ContentList struct {
	Items      []models.Content   `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

// ContentService covers teacher authoring and the public reading surface.
type ContentService struct {
	repo          contentRepository
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
	defaultStatus models.ContentStatus
	cacheTTL      time.Duration
}

// NewContentService constructs a ContentService instance.
func NewContentService(repo contentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, defaultStatus models.ContentStatus, cacheTTL time.Duration) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if defaultStatus == "" {
		defaultStatus = models.ContentStatusPublished
	}
	return &ContentService{repo: repo, cache: cache, validator: validate, logger: logger, defaultStatus: defaultStatus, cacheTTL: cacheTTL}
}

// Create stores a new submission authored by the given teacher.
func (s *ContentService) Create(ctx context.Context, teacherID string, req models.CreateContentRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}

	content := &models.Content{
		TeacherID:   teacherID,
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Body:        req.Content,
		Category:    models.ContentCategory(req.Category),
		Tags:        normalizeTags(req.Tags),
		Status:      s.defaultStatus,
		ReadingTime: estimateReadingTime(req.Content),
	}
	if content.Status == models.ContentStatusPublished {
		now := time.Now().UTC()
		content.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}

	if err := s.cache.Invalidate(ctx, "content:*"); err != nil {
		s.logger.Warn("failed to invalidate content cache", zap.Error(err))
	}

	return content, nil
}

// ListOwn returns every item authored by the teacher, newest first.
func (s *ContentService) ListOwn(ctx context.Context, teacherID string) ([]models.Content, error) {
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}
	return items, nil
}

// ListPublished returns the public feed. Only published items are visible
// regardless of the filter supplied.
func (s *ContentService) ListPublished(ctx context.Context, filter models.ContentFilter) (*ContentList, error) {
	status := models.ContentStatusPublished
	filter.Status = &status

	key := publicListCacheKey(filter)
	var cached ContentList
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}

	list := &ContentList{Items: items, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}
	if err := s.cache.Set(ctx, key, list, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache content list", zap.Error(err))
	}
	return list, nil
}

// GetPublished returns a single published item and counts the view.
func (s *ContentService) GetPublished(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.findPublished(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to increment view counter", zap.String("content_id", id), zap.Error(err))
	} else {
		content.Views++
	}
	return content, nil
}

// Like records a like on a published item and returns the new count.
func (s *ContentService) Like(ctx context.Context, id string) (int, error) {
	content, err := s.findPublished(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.repo.IncrementLikes(ctx, id); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record like")
	}
	return content.Likes + 1, nil
}

func (s *ContentService) findPublished(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if content.Status != models.ContentStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
	}
	return content, nil
}

func publicListCacheKey(filter models.ContentFilter) string {
	category := ""
	if filter.Category != nil {
		category = string(*filter.Category)
	}
	featured := ""
	if filter.Featured != nil {
		featured = fmt.Sprintf("%t", *filter.Featured)
	}
	return fmt.Sprintf("content:list:%s:%s:%s:%s:%d:%d",
		strings.ToLower(filter.Search), category, featured, filter.TeacherID, filter.Page, filter.Limit)
}

// normalizeTags trims and lowercases each tag, dropping entries that
// end up empty.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func estimateReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
