package services_test

import (
	"context"
	"testing"
	"time"

	"evspare/internal/models"
	"evspare/internal/repositories"
	"evspare/internal/services"
	"evspare/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	return m.user(m.Called(ctx, id, update))
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) UpdatePasswordHashByEmail(ctx context.Context, email, hash string) error {
	return m.Called(ctx, email, hash).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher records published order events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	return m.Called(exchange, routingKey, body).Error(0)
}

type authFixture struct {
	clock    *fakeClock
	users    *repositories.MemoryUserRepository
	sessions *session.MemoryStore
	auth     *services.AuthService
	admin    *models.User
	customer *models.User
}

// newAuthFixture seeds the two demo accounts.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()
	f := &authFixture{
		clock: newFakeClock(),
		users: repositories.NewMemoryUserRepository(),
	}
	f.sessions = session.NewMemoryStoreWithClock(f.clock.Now)
	f.auth = services.NewAuthService(f.users, f.sessions, session.NewSigner(testJWTSecret),
		services.NewFingerprintHasher(services.DefaultPepper),
		services.AuthOptions{TTL: time.Hour, Logger: zerolog.Nop(), Now: f.clock.Now})

	f.admin = &models.User{
		Email:        "admin@elyfevspare.com",
		PasswordHash: services.Fingerprint("admin123", services.DefaultPepper),
		Role:         models.RoleAdmin,
		FirstName:    "Store",
		LastName:     "Admin",
		IsActive:     true,
	}
	f.customer = &models.User{
		Email:        "customer@example.com",
		PasswordHash: services.Fingerprint("customer123", services.DefaultPepper),
		Role:         models.RoleCustomer,
		FirstName:    "Asha",
		LastName:     "Rao",
		IsActive:     true,
	}
	require.NoError(t, f.users.Create(ctx, f.admin))
	require.NoError(t, f.users.Create(ctx, f.customer))
	return f
}

func (f *authFixture) login(t *testing.T, email, password string) *models.Session {
	t.Helper()
	sess, err := f.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return sess
}
