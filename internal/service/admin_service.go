package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/export"
)

type adminUserRepository interface {
	ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.User, int, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	CountAll(ctx context.Context) (int, error)
}

type adminContentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	GlobalStats(ctx context.Context) (total, published, draft, featured int, err error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TeacherList pairs a page of teacher accounts with pagination metadata.
type TeacherList struct {
	Items      []models.User      `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

// AdminService serves the admin dashboard read side: platform stats,
// teacher and content listings, and roster exports.
type AdminService struct {
	users    adminUserRepository
	contents adminContentRepository
	cache    *CacheService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users adminUserRepository, contents adminContentRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration, csv csvRenderer, pdf pdfRenderer) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AdminService{users: users, contents: contents, cache: cache, csv: csv, pdf: pdf, logger: logger, cacheTTL: cacheTTL}
}

// Stats aggregates platform-wide counters, served from cache when warm.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	const key = "stats:admin"
	var cached models.AdminStats
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	teachers, err := s.users.CountByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	total, published, draft, featured, err := s.contents.GlobalStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate content stats")
	}
	users, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	stats := &models.AdminStats{
		TotalTeachers:    teachers,
		TotalContent:     total,
		PublishedContent: published,
		DraftContent:     draft,
		FeaturedContent:  featured,
		TotalUsers:       users,
	}
	if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache admin stats", zap.Error(err))
	}
	return stats, nil
}

// ListTeachers returns a page of teacher accounts for the dashboard.
func (s *AdminService) ListTeachers(ctx context.Context, filter models.TeacherFilter) (*TeacherList, error) {
	items, total, err := s.users.ListTeachers(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return &TeacherList{Items: items, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}, nil
}

// ListContent returns content across all statuses with the given filters.
func (s *AdminService) ListContent(ctx context.Context, filter models.ContentFilter) (*ContentList, error) {
	items, total, err := s.contents.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}
	return &ContentList{Items: items, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}, nil
}

// ExportTeachers renders the full teacher roster as CSV or PDF.
func (s *AdminService) ExportTeachers(ctx context.Context, format string) ([]byte, string, error) {
	filter := models.TeacherFilter{Page: 1, Limit: 100}
	var all []models.User
	for {
		items, total, err := s.users.ListTeachers(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
		}
		all = append(all, items...)
		if len(all) >= total || len(items) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Title", "Specialties", "Experience (years)", "Verified", "Joined"},
	}
	for _, t := range all {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":               t.Name,
			"Email":              t.Email,
			"Title":              t.Title,
			"Specialties":        strings.Join(t.Specialties, ", "),
			"Experience (years)": strconv.Itoa(t.YearsOfExperience),
			"Verified":           strconv.FormatBool(t.IsEmailVerified),
			"Joined":             t.JoinedAt.Format("2006-01-02"),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Teacher Roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
