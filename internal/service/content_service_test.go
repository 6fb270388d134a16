package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

func newContentService(store *contentStoreStub, defaultStatus models.ContentStatus) *ContentService {
	return NewContentService(store, disabledCache(), nil, nil, defaultStatus, 0)
}

func TestContentCreatePublishesByDefault(t *testing.T) {
	store := newContentStore()
	svc := newContentService(store, "")

	content, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Morning Practice",
		Excerpt:  "A short primer.",
		Content:  "Sit quietly and breathe.",
		Category: "meditation",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPublished, content.Status)
	require.NotNil(t, content.PublishedAt)
	assert.Equal(t, "teacher-1", content.TeacherID)
	assert.Equal(t, 1, content.ReadingTime)
}

func TestContentCreateDraftDefault(t *testing.T) {
	store := newContentStore()
	svc := newContentService(store, models.ContentStatusDraft)

	content, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Morning Practice",
		Excerpt:  "A short primer.",
		Content:  "Sit quietly and breathe.",
		Category: "meditation",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, content.Status)
	assert.Nil(t, content.PublishedAt)
}

func TestContentCreateRejectsUnknownCategory(t *testing.T) {
	svc := newContentService(newContentStore(), "")

	_, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Morning Practice",
		Excerpt:  "A short primer.",
		Content:  "Sit quietly and breathe.",
		Category: "cooking",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentCreateRejectsOversizedExcerpt(t *testing.T) {
	svc := newContentService(newContentStore(), "")

	_, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Morning Practice",
		Excerpt:  strings.Repeat("x", 501),
		Content:  "Sit quietly and breathe.",
		Category: "meditation",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentCreateNormalizesTags(t *testing.T) {
	store := newContentStore()
	svc := newContentService(store, "")

	content, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Morning Practice",
		Excerpt:  "A short primer.",
		Content:  "Sit quietly and breathe.",
		Category: "meditation",
		Tags:     []string{"  Vedanta ", "MEDITATION", "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vedanta", "meditation"}, []string(content.Tags))
}

func TestContentReadingTimeScalesWithLength(t *testing.T) {
	store := newContentStore()
	svc := newContentService(store, "")

	long := strings.Repeat("word ", 450)
	content, err := svc.Create(context.Background(), "teacher-1", models.CreateContentRequest{
		Title:    "Long Read",
		Excerpt:  "A longer primer.",
		Content:  long,
		Category: "philosophy",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, content.ReadingTime)
}

func TestContentGetPublishedCountsView(t *testing.T) {
	item := publishedContent("teacher-1")
	store := newContentStore(item)
	svc := newContentService(store, "")

	got, err := svc.GetPublished(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, store.items[item.ID].Views)
}

func TestContentGetHidesUnpublished(t *testing.T) {
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusDraft
	store := newContentStore(item)
	svc := newContentService(store, "")

	_, err := svc.GetPublished(context.Background(), item.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContentLikePublished(t *testing.T) {
	item := publishedContent("teacher-1")
	store := newContentStore(item)
	svc := newContentService(store, "")

	likes, err := svc.Like(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
}

func TestContentLikeRejectedIsHidden(t *testing.T) {
	item := publishedContent("teacher-1")
	item.Status = models.ContentStatusRejected
	store := newContentStore(item)
	svc := newContentService(store, "")

	_, err := svc.Like(context.Background(), item.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContentListPublishedFiltersStatus(t *testing.T) {
	visible := publishedContent("teacher-1")
	hidden := publishedContent("teacher-1")
	hidden.Status = models.ContentStatusRejected
	store := newContentStore(visible, hidden)
	svc := newContentService(store, "")

	list, err := svc.ListPublished(context.Background(), models.ContentFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, visible.ID, list.Items[0].ID)
	require.NotNil(t, list.Pagination)
	assert.Equal(t, 1, list.Pagination.TotalItems)
}

func TestContentListOwnIncludesAllStatuses(t *testing.T) {
	published := publishedContent("teacher-1")
	draft := publishedContent("teacher-1")
	draft.Status = models.ContentStatusDraft
	other := publishedContent("teacher-2")
	store := newContentStore(published, draft, other)
	svc := newContentService(store, "")

	items, err := svc.ListOwn(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
