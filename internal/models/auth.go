package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest creates a regular user account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// TeacherRegistrationRequest creates a teacher account with profile data.
type TeacherRegistrationRequest struct {
	Name              string      `json:"name" validate:"required"`
	Email             string      `json:"email" validate:"required,email"`
	Password          string      `json:"password" validate:"required,min=6"`
	Title             string      `json:"title" validate:"required"`
	Bio               string      `json:"bio" validate:"required"`
	Specialties       []string    `json:"specialties" validate:"required,min=1"`
	YearsOfExperience int         `json:"yearsOfExperience" validate:"gte=0"`
	ContactInfo       ContactInfo `json:"contactInfo"`
	SocialMedia       SocialMedia `json:"socialMedia"`
}

// ContactInfo groups optional contact fields on profile payloads.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// SocialMedia groups optional social handles on profile payloads.
type SocialMedia struct {
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	Youtube   string `json:"youtube"`
}

// ProfileUpdateRequest updates the editable fields of an account.
type ProfileUpdateRequest struct {
	Name              string      `json:"name" validate:"required"`
	Bio               string      `json:"bio"`
	Title             string      `json:"title"`
	Specialties       []string    `json:"specialties"`
	YearsOfExperience int         `json:"yearsOfExperience" validate:"gte=0"`
	ContactInfo       ContactInfo `json:"contactInfo"`
	SocialMedia       SocialMedia `json:"socialMedia"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// VerifyEmailRequest consumes an outstanding OTP.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendVerificationRequest reissues an OTP for an unverified account.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	IssuedAt    time.Time `json:"issuedAt"`
	User        UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Role            UserRole `json:"role"`
	IsEmailVerified bool     `json:"isEmailVerified"`
	ProfileImage    string   `json:"profileImage,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
