package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

type contentStoreStub struct {
	items map[string]*models.Content
}

func newContentStore(items ...*models.Content) *contentStoreStub {
	store := &contentStoreStub{items: make(map[string]*models.Content)}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		store.items[item.ID] = item
	}
	return store
}

func (s *contentStoreStub) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	content.CreatedAt = time.Now().UTC()
	cp := *content
	s.items[content.ID] = &cp
	return nil
}

func (s *contentStoreStub) FindByID(ctx context.Context, id string) (*models.Content, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (s *contentStoreStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.Content, error) {
	var result []models.Content
	for _, item := range s.items {
		if item.TeacherID == teacherID {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *contentStoreStub) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	var result []models.Content
	for _, item := range s.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && item.Category != *filter.Category {
			continue
		}
		if filter.Featured != nil && item.Featured != *filter.Featured {
			continue
		}
		if filter.TeacherID != "" && item.TeacherID != filter.TeacherID {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, len(result), nil
}

func (s *contentStoreStub) UpdateStatus(ctx context.Context, id string, status models.ContentStatus, notes string) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	item.ModerationNotes = notes
	if status == models.ContentStatusPublished && item.PublishedAt == nil {
		now := time.Now().UTC()
		item.PublishedAt = &now
	}
	return nil
}

func (s *contentStoreStub) SetFeatured(ctx context.Context, id string, featured bool) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Featured = featured
	return nil
}

func (s *contentStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *contentStoreStub) IncrementViews(ctx context.Context, id string) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Views++
	return nil
}

func (s *contentStoreStub) IncrementLikes(ctx context.Context, id string) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Likes++
	return nil
}

func (s *contentStoreStub) TeacherStats(ctx context.Context, teacherID string) (*models.TeacherStats, error) {
	stats := &models.TeacherStats{}
	for _, item := range s.items {
		if item.TeacherID != teacherID {
			continue
		}
		stats.TotalContent++
		switch item.Status {
		case models.ContentStatusPublished:
			stats.PublishedContent++
		case models.ContentStatusDraft:
			stats.DraftContent++
		}
		stats.TotalViews += item.Views
		stats.TotalLikes += item.Likes
	}
	return stats, nil
}

func (s *contentStoreStub) GlobalStats(ctx context.Context) (total, published, draft, featured int, err error) {
	for _, item := range s.items {
		total++
		switch item.Status {
		case models.ContentStatusPublished:
			published++
		case models.ContentStatusDraft:
			draft++
		}
		if item.Featured {
			featured++
		}
	}
	return total, published, draft, featured, nil
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, nil, false)
}

func publishedContent(teacherID string) *models.Content {
	now := time.Now().UTC()
	return &models.Content{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		Title:       "Morning Practice",
		Excerpt:     "A short primer.",
		Body:        "Sit quietly and breathe.",
		Category:    models.CategoryMeditation,
		Status:      models.ContentStatusPublished,
		PublishedAt: &now,
	}
}

func newModerationService(contents *contentStoreStub, users *userStoreStub) *ModerationService {
	return NewModerationService(contents, users, disabledCache(), nil, nil)
}

func TestModerationHideSetsRejectedWithReason(t *testing.T) {
	item := publishedContent("teacher-1")
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{
		Action: models.ActionHide,
		Reason: "off topic",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusRejected, updated.Status)
	assert.Equal(t, "off topic", updated.ModerationNotes)
}

func TestModerationHideDefaultsReason(t *testing.T) {
	item := publishedContent("teacher-1")
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionHide})
	require.NoError(t, err)
	assert.Equal(t, "Hidden by admin", updated.ModerationNotes)
}

func TestModerationUnhideRestoresAndClearsNotes(t *testing.T) {
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusRejected
	item.ModerationNotes = "off topic"
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionUnhide})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPublished, updated.Status)
	assert.Empty(t, updated.ModerationNotes)
	assert.NotNil(t, updated.PublishedAt)
}

func TestModerationUnhideBackfillsPublishedAt(t *testing.T) {
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusRejected
	item.PublishedAt = nil
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionUnhide})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
}

func TestModerationUnhideKeepsOriginalPublishedAt(t *testing.T) {
	first := time.Now().UTC().Add(-48 * time.Hour)
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusRejected
	item.PublishedAt = &first
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionUnhide})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, updated.PublishedAt.Equal(first))
}

func TestModerationFeatureOnDraftFlipsFlagOnly(t *testing.T) {
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusDraft
	item.PublishedAt = nil
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionFeature})
	require.NoError(t, err)
	assert.True(t, updated.Featured)
	assert.Equal(t, models.ContentStatusDraft, updated.Status)
}

func TestModerationHideIsIdempotent(t *testing.T) {
	item := publishedContent("teacher-1")
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	_, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionHide, Reason: "dup"})
	require.NoError(t, err)
	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionHide, Reason: "dup"})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusRejected, updated.Status)
}

func TestModerationDeleteRemovesRow(t *testing.T) {
	item := publishedContent("teacher-1")
	contents := newContentStore(item)
	svc := newModerationService(contents, newUserStore())

	updated, err := svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionDelete})
	require.NoError(t, err)
	assert.Nil(t, updated)

	_, err = svc.ManageContent(context.Background(), "admin-1", item.ID, models.ModerateContentRequest{Action: models.ActionDelete})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestModerationUnknownContent(t *testing.T) {
	svc := newModerationService(newContentStore(), newUserStore())

	_, err := svc.ManageContent(context.Background(), "admin-1", "missing", models.ModerateContentRequest{Action: models.ActionHide})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestManageTeacherDelete(t *testing.T) {
	teacher := unverifiedUser("guru@example.com")
	teacher.Role = models.RoleTeacher
	users := newUserStore(teacher)
	svc := newModerationService(newContentStore(), users)

	require.NoError(t, svc.ManageTeacher(context.Background(), "admin-1", teacher.ID, models.ManageTeacherRequest{Action: "delete"}))
	assert.Empty(t, users.users)
}

func TestManageTeacherRejectsNonTeacher(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	users := newUserStore(user)
	svc := newModerationService(newContentStore(), users)

	err := svc.ManageTeacher(context.Background(), "admin-1", user.ID, models.ManageTeacherRequest{Action: "delete"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Len(t, users.users, 1)
}

func TestManageTeacherUnsupportedAction(t *testing.T) {
	teacher := unverifiedUser("guru@example.com")
	teacher.Role = models.RoleTeacher
	svc := newModerationService(newContentStore(), newUserStore(teacher))

	err := svc.ManageTeacher(context.Background(), "admin-1", teacher.ID, models.ManageTeacherRequest{Action: "suspend"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
