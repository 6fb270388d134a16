package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

type verificationUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	RecordOTPFailure(ctx context.Context, id string, at time.Time) error
	ResetOTPAttempts(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type verificationMailer interface {
	SendVerificationCode(to, name, code string) error
	SendReissuedCode(to, name, code string) error
}

// VerificationConfig tunes the email verification cycle.
type VerificationConfig struct {
	CodeLifetime    time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
}

// VerificationService owns the email verification state machine: issuing
// one-time codes, checking submitted codes against the stored state, and
// throttling brute-force attempts per account.
type VerificationService struct {
	repo      verificationUserRepository
	mailer    verificationMailer
	validator *validator.Validate
	logger    *zap.Logger
	config    VerificationConfig
}

// NewVerificationService constructs a VerificationService instance.
func NewVerificationService(repo verificationUserRepository, mailer verificationMailer, validate *validator.Validate, logger *zap.Logger, config VerificationConfig) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.CodeLifetime <= 0 {
		config.CodeLifetime = 10 * time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	return &VerificationService{repo: repo, mailer: mailer, validator: validate, logger: logger, config: config}
}

// Issue generates a fresh code for the user, persists it and emails it.
// Any previously outstanding code is replaced. A delivery failure is
// reported as such so callers can compensate.
func (s *VerificationService) Issue(ctx context.Context, user *models.User) error {
	code, err := s.generateCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate verification code")
	}

	expiresAt := time.Now().UTC().Add(s.config.CodeLifetime)
	if err := s.repo.SetOTP(ctx, user.ID, code, expiresAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store verification code")
	}

	if err := s.mailer.SendVerificationCode(user.Email, user.Name, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, appErrors.ErrDeliveryFailed.Status, "failed to send verification email")
	}
	return nil
}

// Verify consumes a submitted code. Success flips the account to verified
// and clears all verification state; a wrong or expired code counts one
// failed attempt.
func (s *VerificationService) Verify(ctx context.Context, req models.VerifyEmailRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.IsEmailVerified {
		return nil, appErrors.Clone(appErrors.ErrAlreadyVerified, "email is already verified")
	}

	now := time.Now().UTC()
	if locked, err := s.checkLockout(ctx, user, now); err != nil {
		return nil, err
	} else if locked {
		return nil, appErrors.Clone(appErrors.ErrTooManyAttempts, "too many verification attempts, try again later")
	}

	if user.OTPCode == nil || *user.OTPCode != req.OTP || user.OTPExpiresAt == nil || now.After(*user.OTPExpiresAt) {
		if err := s.repo.RecordOTPFailure(ctx, user.ID, now); err != nil {
			s.logger.Warn("failed to record verification attempt", zap.String("user_id", user.ID), zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "invalid or expired OTP")
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark email verified")
	}
	user.IsEmailVerified = true
	user.OTPCode = nil
	user.OTPExpiresAt = nil
	user.OTPAttempts = 0
	user.OTPLastAttempt = nil

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionVerifyEmail,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"verified"}`),
	}); err != nil {
		s.logger.Warn("failed to record verification audit log", zap.Error(err))
	}

	return user, nil
}

// Reissue replaces the outstanding code for an unverified account and
// emails the new one. The lockout gate applies the same as for Verify.
func (s *VerificationService) Reissue(ctx context.Context, req models.ResendVerificationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resend payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.IsEmailVerified {
		return appErrors.Clone(appErrors.ErrAlreadyVerified, "email is already verified")
	}

	now := time.Now().UTC()
	if locked, err := s.checkLockout(ctx, user, now); err != nil {
		return err
	} else if locked {
		return appErrors.Clone(appErrors.ErrTooManyAttempts, "too many verification attempts, try again later")
	}

	code, err := s.generateCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate verification code")
	}

	expiresAt := now.Add(s.config.CodeLifetime)
	if err := s.repo.SetOTP(ctx, user.ID, code, expiresAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store verification code")
	}

	if err := s.mailer.SendReissuedCode(user.Email, user.Name, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, appErrors.ErrDeliveryFailed.Status, "failed to send verification email")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionResendOTP,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"reissued"}`),
	}); err != nil {
		s.logger.Warn("failed to record resend audit log", zap.Error(err))
	}

	return nil
}

// checkLockout reports whether the account is currently throttled. Once
// the lockout window since the last failed attempt has elapsed, the
// attempt counter resets and the account proceeds normally.
func (s *VerificationService) checkLockout(ctx context.Context, user *models.User, now time.Time) (bool, error) {
	if user.OTPAttempts < s.config.MaxAttempts || user.OTPLastAttempt == nil {
		return false, nil
	}
	if now.Sub(*user.OTPLastAttempt) < s.config.LockoutDuration {
		return true, nil
	}
	if err := s.repo.ResetOTPAttempts(ctx, user.ID); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset verification attempts")
	}
	user.OTPAttempts = 0
	user.OTPLastAttempt = nil
	return false, nil
}

// generateCode draws a uniform six digit code. Leading zeros are valid.
func (s *VerificationService) generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
