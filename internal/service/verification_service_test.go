package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

type userStoreStub struct {
	users  map[string]*models.User
	audits []*models.AuditLog

	setOTPErr error
	createErr error
	deleteErr error
}

func newUserStore(users ...*models.User) *userStoreStub {
	store := &userStoreStub{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		store.users[u.ID] = u
	}
	return store
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *userStoreStub) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userStoreStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.users, id)
	return nil
}

func (s *userStoreStub) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	if s.setOTPErr != nil {
		return s.setOTPErr
	}
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
	u.OTPAttempts = 0
	u.OTPLastAttempt = nil
	return nil
}

func (s *userStoreStub) RecordOTPFailure(ctx context.Context, id string, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.OTPAttempts++
	u.OTPLastAttempt = &at
	return nil
}

func (s *userStoreStub) ResetOTPAttempts(ctx context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.OTPAttempts = 0
	u.OTPLastAttempt = nil
	return nil
}

func (s *userStoreStub) MarkVerified(ctx context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.IsEmailVerified = true
	u.OTPCode = nil
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
	u.OTPLastAttempt = nil
	return nil
}

func (s *userStoreStub) UpdateProfile(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *userStoreStub) UpdateProfileImage(ctx context.Context, id, imageURL, imageID string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.ProfileImage = imageURL
	u.ProfileImageID = imageID
	return nil
}

func (s *userStoreStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

type mailerStub struct {
	codes    []string
	reissued []string
	err      error
}

func (m *mailerStub) SendVerificationCode(to, name, code string) error {
	if m.err != nil {
		return m.err
	}
	m.codes = append(m.codes, code)
	return nil
}

func (m *mailerStub) SendReissuedCode(to, name, code string) error {
	if m.err != nil {
		return m.err
	}
	m.reissued = append(m.reissued, code)
	return nil
}

func unverifiedUser(email string) *models.User {
	return &models.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  "Test User",
		Role:  models.RoleUser,
	}
}

func withCode(u *models.User, code string, expiresAt time.Time) *models.User {
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
	return u
}

func newVerificationService(store *userStoreStub, mail *mailerStub) *VerificationService {
	return NewVerificationService(store, mail, nil, nil, VerificationConfig{})
}

func TestVerificationIssueStoresAndSendsCode(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	store := newUserStore(user)
	mail := &mailerStub{}
	svc := newVerificationService(store, mail)

	require.NoError(t, svc.Issue(context.Background(), user))

	stored := store.users[user.ID]
	require.NotNil(t, stored.OTPCode)
	assert.Len(t, *stored.OTPCode, 6)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), *stored.OTPExpiresAt, time.Minute)

	require.Len(t, mail.codes, 1)
	assert.Equal(t, *stored.OTPCode, mail.codes[0])
}

func TestVerificationIssueReplacesOutstandingCode(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "111111", time.Now().UTC().Add(5*time.Minute))
	user.OTPAttempts = 3
	store := newUserStore(user)
	mail := &mailerStub{}
	svc := newVerificationService(store, mail)

	require.NoError(t, svc.Issue(context.Background(), user))

	stored := store.users[user.ID]
	assert.NotEqual(t, "111111", *stored.OTPCode)
	assert.Equal(t, 0, stored.OTPAttempts)
}

func TestVerificationVerifySuccess(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "042042", time.Now().UTC().Add(5*time.Minute))
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	verified, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "042042"})
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	stored := store.users[user.ID]
	assert.True(t, stored.IsEmailVerified)
	assert.Nil(t, stored.OTPCode)
	assert.Nil(t, stored.OTPExpiresAt)
	assert.Equal(t, 0, stored.OTPAttempts)
}

func TestVerificationVerifyWrongCodeCountsOneAttempt(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "042042", time.Now().UTC().Add(5*time.Minute))
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "999999"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)

	stored := store.users[user.ID]
	assert.Equal(t, 1, stored.OTPAttempts)
	require.NotNil(t, stored.OTPCode)
	assert.Equal(t, "042042", *stored.OTPCode)
	assert.False(t, stored.IsEmailVerified)
}

func TestVerificationVerifyExpiredCodeRejected(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "042042", time.Now().UTC().Add(-time.Minute))
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "042042"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, store.users[user.ID].OTPAttempts)
}

func TestVerificationVerifyLockout(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "042042", time.Now().UTC().Add(5*time.Minute))
	user.OTPAttempts = 5
	recent := time.Now().UTC().Add(-time.Minute)
	user.OTPLastAttempt = &recent
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	// Even the correct code is rejected while locked.
	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "042042"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTooManyAttempts.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 5, store.users[user.ID].OTPAttempts)
}

func TestVerificationVerifyLockoutExpiresAndProceeds(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "042042", time.Now().UTC().Add(5*time.Minute))
	user.OTPAttempts = 5
	stale := time.Now().UTC().Add(-16 * time.Minute)
	user.OTPLastAttempt = &stale
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	verified, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "042042"})
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)
}

func TestVerificationVerifyAlreadyVerified(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	user.IsEmailVerified = true
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "042042"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyVerified.Code, appErrors.FromError(err).Code)
}

func TestVerificationVerifyUnknownEmail(t *testing.T) {
	svc := newVerificationService(newUserStore(), &mailerStub{})

	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: "ghost@example.com", OTP: "042042"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestVerificationReissueReplacesCodeAndResetsAttempts(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "111111", time.Now().UTC().Add(5*time.Minute))
	user.OTPAttempts = 2
	store := newUserStore(user)
	mail := &mailerStub{}
	svc := newVerificationService(store, mail)

	require.NoError(t, svc.Reissue(context.Background(), models.ResendVerificationRequest{Email: user.Email}))

	stored := store.users[user.ID]
	require.NotNil(t, stored.OTPCode)
	assert.NotEqual(t, "111111", *stored.OTPCode)
	assert.Equal(t, 0, stored.OTPAttempts)
	require.Len(t, mail.reissued, 1)
	assert.Equal(t, *stored.OTPCode, mail.reissued[0])

	// The old code no longer verifies.
	_, err := svc.Verify(context.Background(), models.VerifyEmailRequest{Email: user.Email, OTP: "111111"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErrors.FromError(err).Code)
}

func TestVerificationReissueLockedAccount(t *testing.T) {
	user := withCode(unverifiedUser("seeker@example.com"), "111111", time.Now().UTC().Add(5*time.Minute))
	user.OTPAttempts = 5
	recent := time.Now().UTC().Add(-time.Minute)
	user.OTPLastAttempt = &recent
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	err := svc.Reissue(context.Background(), models.ResendVerificationRequest{Email: user.Email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTooManyAttempts.Code, appErrors.FromError(err).Code)
}

func TestVerificationReissueAlreadyVerified(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	user.IsEmailVerified = true
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{})

	err := svc.Reissue(context.Background(), models.ResendVerificationRequest{Email: user.Email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyVerified.Code, appErrors.FromError(err).Code)
}

func TestVerificationReissueDeliveryFailure(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	store := newUserStore(user)
	svc := newVerificationService(store, &mailerStub{err: assert.AnError})

	err := svc.Reissue(context.Background(), models.ResendVerificationRequest{Email: user.Email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDeliveryFailed.Code, appErrors.FromError(err).Code)
}
