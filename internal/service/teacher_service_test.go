package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

func newTeacherService(users *userStoreStub, contents *contentStoreStub) *TeacherService {
	return NewTeacherService(users, contents, disabledCache(), nil, 0)
}

func TestTeacherDirectoryListsTeachersOnly(t *testing.T) {
	users := newUserStore(
		teacherAccount("one@example.com", "Ananda"),
		unverifiedUser("seeker@example.com"),
	)
	svc := newTeacherService(users, newContentStore())

	list, err := svc.Directory(context.Background(), models.TeacherFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, models.RoleTeacher, list.Items[0].Role)
}

func TestTeacherProfileShowsPublishedContentOnly(t *testing.T) {
	teacher := teacherAccount("one@example.com", "Ananda")
	users := newUserStore(teacher)

	published := publishedContent(teacher.ID)
	draft := publishedContent(teacher.ID)
	draft.Status = models.ContentStatusDraft
	contents := newContentStore(published, draft)

	svc := newTeacherService(users, contents)

	profile, err := svc.Profile(context.Background(), teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, profile.Teacher.ID)
	require.Len(t, profile.Content, 1)
	assert.Equal(t, published.ID, profile.Content[0].ID)
}

func TestTeacherProfileHidesNonTeachers(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	svc := newTeacherService(newUserStore(user), newContentStore())

	_, err := svc.Profile(context.Background(), user.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherStatsAggregates(t *testing.T) {
	published := publishedContent("teacher-1")
	published.Views = 10
	published.Likes = 3
	draft := publishedContent("teacher-1")
	draft.Status = models.ContentStatusDraft
	draft.Views = 2
	other := publishedContent("teacher-2")
	other.Views = 100
	contents := newContentStore(published, draft, other)

	svc := newTeacherService(newUserStore(), contents)

	stats, err := svc.Stats(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalContent)
	assert.Equal(t, 1, stats.PublishedContent)
	assert.Equal(t, 1, stats.DraftContent)
	assert.Equal(t, 12, stats.TotalViews)
	assert.Equal(t, 3, stats.TotalLikes)
}
