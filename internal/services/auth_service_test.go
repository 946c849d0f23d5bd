package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"evspare/internal/models"
	"evspare/internal/services"
	"evspare/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess := f.login(t, "  Admin@ElyfEvspare.com ", "admin123")
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, f.admin.ID, sess.UserID)
	assert.Equal(t, models.RoleAdmin, sess.Role)
	assert.Equal(t, f.clock.Now().Add(time.Hour), sess.ExpiresAt)

	current, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, current.ID)
	assert.True(t, f.auth.IsAdmin(ctx, sess.Token))
	assert.False(t, f.auth.IsCustomer(ctx, sess.Token))
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.SetActive(ctx, f.customer.ID, false))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@elyfevspare.com", "admin124"},
		{"unknown email", "nobody@example.com", "admin123"},
		{"inactive account", "customer@example.com", "customer123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := f.auth.Login(ctx, tt.email, tt.password)
			assert.Nil(t, sess)
			assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		})
	}
	assert.Equal(t, 0, f.sessions.Len())

	_, err := f.auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Register(ctx, services.RegisterInput{
		Email:     "New.Buyer@Example.com",
		Password:  "pa55word",
		FirstName: " Ravi ",
		LastName:  "Kumar",
		Phone:     "+91 9000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, sess.Role)
	assert.Equal(t, "new.buyer@example.com", sess.Email)
	assert.Equal(t, "Ravi", sess.FirstName)

	stored, err := f.users.GetByEmail(ctx, "new.buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, services.Fingerprint("pa55word", services.DefaultPepper), stored.PasswordHash)
	assert.True(t, stored.IsActive)

	// Registration signs the user in.
	_, err = f.auth.CurrentUser(ctx, sess.Token)
	assert.NoError(t, err)

	_, err = f.auth.Register(ctx, services.RegisterInput{
		Email: "NEW.BUYER@example.com", Password: "x", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, services.ErrEmailExists)

	unchanged, err := f.users.GetByEmail(ctx, "new.buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, unchanged.ID)
	assert.Equal(t, stored.PasswordHash, unchanged.PasswordHash)
	assert.Equal(t, "Ravi", unchanged.FirstName)
	assert.Equal(t, "Kumar", unchanged.LastName)

	_, err = f.auth.Register(ctx, services.RegisterInput{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_RegisterStorageFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	auth := services.NewAuthService(mockRepo, session.NewMemoryStore(), session.NewSigner(testJWTSecret),
		services.NewFingerprintHasher(services.DefaultPepper), services.AuthOptions{Logger: zerolog.Nop()})

	dbErr := errors.New("connection reset")
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(dbErr).Once()

	_, err := auth.Register(context.Background(), services.RegisterInput{
		Email: "a@example.com", Password: "pw", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, services.ErrRegistrationFailed)
	assert.ErrorIs(t, err, dbErr)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.login(t, "customer@example.com", "customer123")

	f.clock.Advance(59 * time.Minute)
	_, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	_, err = f.auth.CurrentUser(ctx, sess.Token)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.login(t, "customer@example.com", "customer123")

	f.auth.Logout(ctx, sess.Token)
	_, err := f.auth.CurrentUser(ctx, sess.Token)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	// Unusable tokens are ignored.
	f.auth.Logout(ctx, "")
	f.auth.Logout(ctx, "not-a-token")
}

func TestAuthService_CurrentUserRejectsForeignTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.login(t, "customer@example.com", "customer123")

	forged, err := session.NewSigner("some_other_secret").Sign(sess)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", forged} {
		_, err := f.auth.CurrentUser(ctx, token)
		assert.ErrorIs(t, err, services.ErrNotAuthenticated)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.login(t, "customer@example.com", "customer123")
	f.clock.Advance(10 * time.Minute)

	name := "  Meera "
	addr := "12 MG Road, Pune"
	pw := "newpass1"
	updated, err := f.auth.UpdateProfile(ctx, sess.Token, services.ProfileUpdate{
		FirstName: &name,
		Address:   &addr,
		Password:  &pw,
	})
	require.NoError(t, err)
	assert.Equal(t, sess.ID, updated.ID)
	assert.Equal(t, "Meera", updated.FirstName)
	assert.Equal(t, "Rao", updated.LastName)
	require.NotNil(t, updated.Address)
	assert.Equal(t, addr, *updated.Address)
	assert.Equal(t, sess.ExpiresAt, updated.ExpiresAt)

	current, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Meera", current.FirstName)

	_, err = f.auth.Login(ctx, "customer@example.com", "customer123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	f.login(t, "customer@example.com", "newpass1")

	empty := ""
	_, err = f.auth.UpdateProfile(ctx, sess.Token, services.ProfileUpdate{Password: &empty})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_UpdateProfileRequiresSession(t *testing.T) {
	mockRepo := new(MockUserRepository)
	auth := services.NewAuthService(mockRepo, session.NewMemoryStore(), session.NewSigner(testJWTSecret),
		services.NewFingerprintHasher(services.DefaultPepper), services.AuthOptions{Logger: zerolog.Nop()})

	name := "Someone"
	_, err := auth.UpdateProfile(context.Background(), "", services.ProfileUpdate{FirstName: &name})
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_AdminOperations(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := f.login(t, "admin@elyfevspare.com", "admin123")
	customer := f.login(t, "customer@example.com", "customer123")

	_, err := f.auth.ListUsers(ctx, customer.Token)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = f.auth.ListUsers(ctx, "")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.ErrorIs(t, f.auth.UpdateUserRole(ctx, customer.Token, customer.UserID, models.RoleAdmin), services.ErrUnauthorized)

	users, err := f.auth.ListUsers(ctx, admin.Token)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	assert.ErrorIs(t, f.auth.UpdateUserRole(ctx, admin.Token, customer.UserID, "owner"), services.ErrValidation)
	assert.ErrorIs(t, f.auth.UpdateUserRole(ctx, admin.Token, "missing", models.RoleAdmin), services.ErrNotFound)
	require.NoError(t, f.auth.UpdateUserRole(ctx, admin.Token, customer.UserID, models.RoleAdmin))

	// The existing session keeps the role it was issued with.
	assert.False(t, f.auth.IsAdmin(ctx, customer.Token))
	promoted := f.login(t, "customer@example.com", "customer123")
	assert.True(t, f.auth.IsAdmin(ctx, promoted.Token))

	require.NoError(t, f.auth.DeactivateUser(ctx, admin.Token, customer.UserID))
	_, err = f.auth.Login(ctx, "customer@example.com", "customer123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_SetPasswordByEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.SetPasswordByEmail(ctx, "Customer@Example.com", "rotated"))
	f.login(t, "customer@example.com", "rotated")

	assert.ErrorIs(t, f.auth.SetPasswordByEmail(ctx, "ghost@example.com", "x"), services.ErrNotFound)
	assert.ErrorIs(t, f.auth.SetPasswordByEmail(ctx, "", "x"), services.ErrValidation)
}
