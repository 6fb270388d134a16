package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

type teacherUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.User, int, error)
}

type teacherContentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	TeacherStats(ctx context.Context, teacherID string) (*models.TeacherStats, error)
}

// TeacherProfile is the public view of a teacher with their published work.
type TeacherProfile struct {
	Teacher *models.User     `json:"teacher"`
	Content []models.Content `json:"content"`
}

// TeacherService serves the public teacher directory and the authoring
// dashboard counters for a logged-in teacher.
type TeacherService struct {
	users    teacherUserRepository
	contents teacherContentRepository
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(users teacherUserRepository, contents teacherContentRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{users: users, contents: contents, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Directory returns a page of the public teacher listing.
func (s *TeacherService) Directory(ctx context.Context, filter models.TeacherFilter) (*TeacherList, error) {
	key := fmt.Sprintf("content:teachers:%s:%d:%d", strings.ToLower(filter.Search), filter.Page, filter.Limit)
	var cached TeacherList
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	items, total, err := s.users.ListTeachers(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	list := &TeacherList{Items: items, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}
	if err := s.cache.Set(ctx, key, list, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache teacher directory", zap.Error(err))
	}
	return list, nil
}

// Profile returns one teacher together with their published content.
func (s *TeacherService) Profile(ctx context.Context, teacherID string) (*TeacherProfile, error) {
	user, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	status := models.ContentStatusPublished
	items, _, err := s.contents.List(ctx, models.ContentFilter{TeacherID: teacherID, Status: &status, Page: 1, Limit: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher content")
	}

	return &TeacherProfile{Teacher: user, Content: items}, nil
}

// Stats returns the authoring counters for the given teacher.
func (s *TeacherService) Stats(ctx context.Context, teacherID string) (*models.TeacherStats, error) {
	stats, err := s.contents.TeacherStats(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate teacher stats")
	}
	return stats, nil
}
