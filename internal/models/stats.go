package models

// AdminStats aggregates platform-wide counters for the admin dashboard.
type AdminStats struct {
	TotalTeachers    int `db:"total_teachers" json:"totalTeachers"`
	TotalContent     int `db:"total_content" json:"totalContent"`
	PublishedContent int `db:"published_content" json:"publishedContent"`
	DraftContent     int `db:"draft_content" json:"draftContent"`
	FeaturedContent  int `db:"featured_content" json:"featuredContent"`
	TotalUsers       int `db:"total_users" json:"totalUsers"`
}

// TeacherStats aggregates a single teacher's authoring counters.
type TeacherStats struct {
	TotalContent     int `db:"total_content" json:"totalContent"`
	PublishedContent int `db:"published_content" json:"publishedContent"`
	DraftContent     int `db:"draft_content" json:"draftContent"`
	TotalViews       int `db:"total_views" json:"totalViews"`
	TotalLikes       int `db:"total_likes" json:"totalLikes"`
}
