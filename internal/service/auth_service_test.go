package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
)

func newAuthService(store *userStoreStub, mail *mailerStub) *AuthService {
	verification := newVerificationService(store, mail)
	return NewAuthService(store, verification, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "acharyas-gurus-test",
	})
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignupCreatesUnverifiedUserAndSendsCode(t *testing.T) {
	store := newUserStore()
	mail := &mailerStub{}
	svc := newAuthService(store, mail)

	user, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Seeker",
		Email:    "Seeker@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "seeker@example.com", user.Email)
	assert.False(t, user.IsEmailVerified)
	assert.Len(t, mail.codes, 1)

	stored := store.users[user.ID]
	require.NotNil(t, stored)
	require.NotNil(t, stored.OTPCode)
}

func TestSignupDuplicateEmail(t *testing.T) {
	existing := unverifiedUser("seeker@example.com")
	store := newUserStore(existing)
	svc := newAuthService(store, &mailerStub{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Another",
		Email:    "seeker@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)
}

func TestSignupDeliveryFailureRemovesAccount(t *testing.T) {
	store := newUserStore()
	svc := newAuthService(store, &mailerStub{err: assert.AnError})

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Seeker",
		Email:    "seeker@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDeliveryFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.users)

	// The address is free again for a retry.
	mail := &mailerStub{}
	retrySvc := newAuthService(store, mail)
	_, err = retrySvc.Signup(context.Background(), models.SignupRequest{
		Name:     "Seeker",
		Email:    "seeker@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
}

func TestRegisterTeacherStoresProfileWithoutVerificationCycle(t *testing.T) {
	store := newUserStore()
	mail := &mailerStub{}
	svc := newAuthService(store, mail)

	user, err := svc.RegisterTeacher(context.Background(), models.TeacherRegistrationRequest{
		Name:        "Guruji",
		Email:       "guru@example.com",
		Password:    "secret123",
		Title:       "Meditation Teacher",
		Bio:         "Twenty years of practice.",
		Specialties: []string{"meditation", "philosophy"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, "Meditation Teacher", user.Title)
	assert.Equal(t, []string{"meditation", "philosophy"}, []string(user.Specialties))

	// Teacher accounts await admin approval, no code is mailed.
	assert.Empty(t, mail.codes)
	stored := store.users[user.ID]
	require.NotNil(t, stored)
	assert.Nil(t, stored.OTPCode)
	assert.False(t, stored.IsEmailVerified)
}

func TestRegisterTeacherRequiresProfileFields(t *testing.T) {
	svc := newAuthService(newUserStore(), &mailerStub{})

	_, err := svc.RegisterTeacher(context.Background(), models.TeacherRegistrationRequest{
		Name:     "Guruji",
		Email:    "guru@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginSuccess(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	user.PasswordHash = hashed(t, "secret123")
	user.IsEmailVerified = true
	store := newUserStore(user)
	svc := newAuthService(store, &mailerStub{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, user.ID, res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	user.PasswordHash = hashed(t, "secret123")
	user.IsEmailVerified = true
	svc := newAuthService(newUserStore(user), &mailerStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnverifiedBlocked(t *testing.T) {
	user := unverifiedUser("seeker@example.com")
	user.PasswordHash = hashed(t, "secret123")
	svc := newAuthService(newUserStore(user), &mailerStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailNotVerified.Code, appErrors.FromError(err).Code)
}

func TestLoginUnverifiedAdminAllowed(t *testing.T) {
	admin := unverifiedUser("admin@example.com")
	admin.Role = models.RoleAdmin
	admin.PasswordHash = hashed(t, "secret123")
	svc := newAuthService(newUserStore(admin), &mailerStub{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: admin.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(newUserStore(), &mailerStub{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
