package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for the access control gate.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleUser    UserRole = "user"
)

// User represents an account stored in the users table. OTP fields are
// populated only while a verification cycle is outstanding.
type User struct {
	ID              string   `db:"id" json:"id"`
	Email           string   `db:"email" json:"email"`
	PasswordHash    string   `db:"password_hash" json:"-"`
	Name            string   `db:"name" json:"name"`
	Role            UserRole `db:"role" json:"role"`
	IsEmailVerified bool     `db:"is_email_verified" json:"isEmailVerified"`

	OTPCode        *string    `db:"otp_code" json:"-"`
	OTPExpiresAt   *time.Time `db:"otp_expires_at" json:"-"`
	OTPAttempts    int        `db:"otp_attempts" json:"-"`
	OTPLastAttempt *time.Time `db:"otp_last_attempt" json:"-"`

	Bio               string         `db:"bio" json:"bio,omitempty"`
	Title             string         `db:"title" json:"title,omitempty"`
	YearsOfExperience int            `db:"years_of_experience" json:"yearsOfExperience,omitempty"`
	Specialties       pq.StringArray `db:"specialties" json:"specialties,omitempty"`
	Phone             string         `db:"phone" json:"phone,omitempty"`
	Website           string         `db:"website" json:"website,omitempty"`
	Twitter           string         `db:"twitter" json:"twitter,omitempty"`
	Instagram         string         `db:"instagram" json:"instagram,omitempty"`
	Youtube           string         `db:"youtube" json:"youtube,omitempty"`
	ProfileImage      string         `db:"profile_image" json:"profileImage,omitempty"`
	ProfileImageID    string         `db:"profile_image_id" json:"-"`

	JoinedAt  time.Time `db:"joined_at" json:"joinedDate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TeacherFilter captures filtering criteria for listing teacher accounts.
type TeacherFilter struct {
	Search string
	Page   int
	Limit  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination derives pagination metadata from page, limit and total count.
func NewPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}
