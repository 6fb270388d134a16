package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
)

const contentColumns = `c.id, c.teacher_id, c.title, c.excerpt, c.body, c.category, c.tags, c.status, c.moderation_notes, c.featured, c.reading_time, c.views, c.likes, c.published_at, c.created_at, c.updated_at`

// ContentRepository manages persistence for teacher-authored posts.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a new content item.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	const query = `INSERT INTO contents (id, teacher_id, title, excerpt, body, category, tags, status, moderation_notes, featured, reading_time, views, likes, published_at, created_at, updated_at)
VALUES (:id, :teacher_id, :title, :excerpt, :body, :category, :tags, :status, :moderation_notes, :featured, :reading_time, :views, :likes, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// FindByID fetches a content item by identifier.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	query := fmt.Sprintf(`SELECT %s FROM contents c WHERE c.id = $1 LIMIT 1`, contentColumns)
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return &content, nil
}

// ListByTeacher returns every item authored by the teacher, newest first.
func (r *ContentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Content, error) {
	query := fmt.Sprintf(`SELECT %s FROM contents c WHERE c.teacher_id = $1 ORDER BY c.created_at DESC`, contentColumns)
	var items []models.Content
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher content: %w", err)
	}
	return items, nil
}

// List returns content matching the filter joined with author identity,
// newest first, along with the total count.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	base := `FROM contents c JOIN users u ON u.id = c.teacher_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf(`(LOWER(c.title) LIKE $%d OR LOWER(c.excerpt) LIKE $%d OR EXISTS (SELECT 1 FROM unnest(c.tags) AS t WHERE LOWER(t) LIKE $%d))`,
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("c.featured = $%d", len(args)+1))
		args = append(args, *filter.Featured)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("SELECT %s, u.name AS teacher_name, u.email AS teacher_email %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d", contentColumns, base, limit, offset)
	var items []models.Content
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}

	return items, total, nil
}

// UpdateStatus transitions a content item's status. When the new status is
// published the publication timestamp is stamped once and never cleared
// afterwards.
func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, status models.ContentStatus, notes string) error {
	const query = `UPDATE contents SET status = $2, moderation_notes = $3, published_at = CASE WHEN $2 = 'published' THEN COALESCE(published_at, $4) ELSE published_at END, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, notes, time.Now().UTC()); err != nil {
		return fmt.Errorf("update content status: %w", err)
	}
	return nil
}

// SetFeatured flips the feature flag independently of status.
func (r *ContentRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	const query = `UPDATE contents SET featured = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, featured, time.Now().UTC()); err != nil {
		return fmt.Errorf("set content featured: %w", err)
	}
	return nil
}

// Delete permanently removes a content item.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM contents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViews bumps the view counter atomically.
func (r *ContentRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE contents SET views = views + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter atomically.
func (r *ContentRepository) IncrementLikes(ctx context.Context, id string) error {
	const query = `UPDATE contents SET likes = likes + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}
	return nil
}

// TeacherStats aggregates authoring counters for a single teacher.
func (r *ContentRepository) TeacherStats(ctx context.Context, teacherID string) (*models.TeacherStats, error) {
	const query = `SELECT COUNT(*) AS total_content,
COUNT(*) FILTER (WHERE status = 'published') AS published_content,
COUNT(*) FILTER (WHERE status = 'draft') AS draft_content,
COALESCE(SUM(views), 0) AS total_views,
COALESCE(SUM(likes), 0) AS total_likes
FROM contents WHERE teacher_id = $1`
	var stats models.TeacherStats
	if err := r.db.GetContext(ctx, &stats, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher stats: %w", err)
	}
	return &stats, nil
}

// GlobalStats aggregates platform-wide content counters.
func (r *ContentRepository) GlobalStats(ctx context.Context) (total, published, draft, featured int, err error) {
	const query = `SELECT COUNT(*) AS total_content,
COUNT(*) FILTER (WHERE status = 'published') AS published_content,
COUNT(*) FILTER (WHERE status = 'draft') AS draft_content,
COUNT(*) FILTER (WHERE featured) AS featured_content
FROM contents`
	var row struct {
		Total     int `db:"total_content"`
		Published int `db:"published_content"`
		Draft     int `db:"draft_content"`
		Featured  int `db:"featured_content"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("content stats: %w", err)
	}
	return row.Total, row.Published, row.Draft, row.Featured, nil
}
