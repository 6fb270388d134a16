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

const userColumns = `id, email, password_hash, name, role, is_email_verified, otp_code, otp_expires_at, otp_attempts, otp_last_attempt, bio, title, years_of_experience, specialties, phone, website, twitter, instagram, youtube, profile_image, profile_image_id, joined_at, created_at, updated_at`

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns an account by case-normalised email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = LOWER($1) LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns an account by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(user.Email)

	const query = `INSERT INTO users (id, email, password_hash, name, role, is_email_verified, otp_code, otp_expires_at, otp_attempts, otp_last_attempt, bio, title, years_of_experience, specialties, phone, website, twitter, instagram, youtube, profile_image, profile_image_id, joined_at, created_at, updated_at)
VALUES (:id, :email, :password_hash, :name, :role, :is_email_verified, :otp_code, :otp_expires_at, :otp_attempts, :otp_last_attempt, :bio, :title, :years_of_experience, :specialties, :phone, :website, :twitter, :instagram, :youtube, :profile_image, :profile_image_id, :joined_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Delete permanently removes an account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateProfile stores the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, bio = :bio, title = :title, years_of_experience = :years_of_experience, specialties = :specialties, phone = :phone, website = :website, twitter = :twitter, instagram = :instagram, youtube = :youtube, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateProfileImage stores the CDN reference for the account's avatar.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, imageURL, imageID string) error {
	const query = `UPDATE users SET profile_image = $2, profile_image_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, imageURL, imageID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}
	return nil
}

// SetOTP stores a freshly issued code, replacing any outstanding one and
// resetting the failure counters.
func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	const query = `UPDATE users SET otp_code = $2, otp_expires_at = $3, otp_attempts = 0, otp_last_attempt = NULL, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, code, expiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

// RecordOTPFailure bumps the failed-attempt counter in a single statement so
// concurrent verifications never lose an increment.
func (r *UserRepository) RecordOTPFailure(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET otp_attempts = otp_attempts + 1, otp_last_attempt = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("record otp failure: %w", err)
	}
	return nil
}

// ResetOTPAttempts clears the failure counters after the lockout window.
func (r *UserRepository) ResetOTPAttempts(ctx context.Context, id string) error {
	const query = `UPDATE users SET otp_attempts = 0, otp_last_attempt = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("reset otp attempts: %w", err)
	}
	return nil
}

// MarkVerified flips the verification flag and clears every OTP field.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_email_verified = TRUE, otp_code = NULL, otp_expires_at = NULL, otp_attempts = 0, otp_last_attempt = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// ListTeachers returns teacher accounts matching the filter with total count.
func (r *UserRepository) ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.User, int, error) {
	base := `FROM users WHERE role = 'teacher'`
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(` AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(title) LIKE $%d OR EXISTS (SELECT 1 FROM unnest(specialties) AS s WHERE LOWER(s) LIKE $%d))`,
			len(args)+1, len(args)+1, len(args)+1, len(args)+1)
		args = append(args, search)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY joined_at DESC LIMIT %d OFFSET %d", userColumns, base, limit, offset)
	var teachers []models.User
	if err := r.db.SelectContext(ctx, &teachers, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// CountByRole returns the number of accounts holding the given role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, role); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return total, nil
}

// CountAll returns the total number of accounts.
func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
