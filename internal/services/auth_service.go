package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evspare/internal/metrics"
	"evspare/internal/models"
	"evspare/internal/repositories"
	"evspare/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultSessionTTL is how long a session lives. Sessions are never renewed.
const DefaultSessionTTL = 24 * time.Hour

// AuthOptions tunes an AuthService. Zero values pick the defaults.
type AuthOptions struct {
	TTL    time.Duration
	Logger zerolog.Logger
	Now    func() time.Time
}

// AuthService handles credentials, sessions, and user administration.
type AuthService struct {
	users    repositories.UserRepository
	sessions session.Store
	signer   *session.Signer
	hasher   PasswordHasher
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, sessions session.Store, signer *session.Signer, hasher PasswordHasher, opts AuthOptions) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		signer:   signer,
		hasher:   hasher,
		ttl:      opts.TTL,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RegisterInput is the data a visitor supplies to create an account.
// New accounts are always customers.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   *string
}

// ProfileUpdate carries the fields a user wants to change. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	Password  *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login exchanges credentials for a new session. A wrong email, a wrong password
// and an inactive account all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	sess, err := s.issue(ctx, user)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("session_id", sess.ID).Msg("user logged in")
	return sess, nil
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Session, error) {
	email := normalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if email == "" || in.Password == "" || firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: email, password, first name and last name are required", ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "email_exists").Inc()
			return nil, ErrEmailExists
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		s.log.Error().Err(err).Str("email", email).Msg("registration insert failed")
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	sess, err := s.issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return sess, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.Session, error) {
	sess := models.NewSession(uuid.NewString(), user, s.now(), s.ttl)
	token, err := s.signer.Sign(sess)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	sess.Token = token
	return sess, nil
}

// CurrentUser resolves token to its live session. Any missing, forged, revoked or
// expired token yields ErrNotAuthenticated; an expired one is purged on the way.
// The user table is not consulted.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	now := s.now()

	claims, err := s.signer.Verify(token, now)
	if err != nil {
		if errors.Is(err, session.ErrTokenExpired) && claims != nil {
			s.purge(ctx, claims.Id)
		}
		return nil, ErrNotAuthenticated
	}

	sess, err := s.sessions.Get(ctx, claims.Id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != claims.Subject {
		return nil, ErrNotAuthenticated
	}
	if sess.Expired(now) {
		s.purge(ctx, sess.ID)
		return nil, ErrNotAuthenticated
	}
	sess.Token = token
	return sess, nil
}

func (s *AuthService) purge(ctx context.Context, id string) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("failed to purge session")
	}
}

// Logout revokes the session behind token. It never fails; problems are logged.
func (s *AuthService) Logout(ctx context.Context, token string) {
	claims, err := s.signer.Verify(token, s.now())
	if claims == nil {
		s.log.Debug().Err(err).Msg("logout with unusable token")
		return
	}
	s.purge(ctx, claims.Id)
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "success").Inc()
}

// UpdateProfile changes the caller's own profile and refreshes their session from
// the stored row. The session keeps its original expiry.
func (s *AuthService) UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (*models.Session, error) {
	sess, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	update := models.UserUpdate{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
		Phone:     trimmed(in.Phone),
		Address:   in.Address,
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, sess.UserID, update)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("update_profile", "error").Inc()
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	refreshed := models.NewSession(sess.ID, user, sess.IssuedAt, s.ttl)
	refreshed.ExpiresAt = sess.ExpiresAt
	if err := s.sessions.Save(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	refreshed.Token = token
	metrics.AuthAttemptsTotal.WithLabelValues("update_profile", "success").Inc()
	return refreshed, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// HasRole reports whether token belongs to a live session with role.
func (s *AuthService) HasRole(ctx context.Context, token string, role models.Role) bool {
	sess, err := s.CurrentUser(ctx, token)
	return err == nil && sess.HasRole(role)
}

func (s *AuthService) IsAdmin(ctx context.Context, token string) bool {
	return s.HasRole(ctx, token, models.RoleAdmin)
}

func (s *AuthService) IsCustomer(ctx context.Context, token string) bool {
	return s.HasRole(ctx, token, models.RoleCustomer)
}

func (s *AuthService) requireAdmin(ctx context.Context, token string) error {
	if !s.IsAdmin(ctx, token) {
		return ErrUnauthorized
	}
	return nil
}

// ListUsers returns every account, newest first. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	if err := s.requireAdmin(ctx, token); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// UpdateUserRole changes another account's role. Admin only. Sessions already
// issued to that user keep their old role until they expire.
func (s *AuthService) UpdateUserRole(ctx context.Context, token, userID string, role models.Role) error {
	if err := s.requireAdmin(ctx, token); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return err
	}
	s.log.Info().Str("user_id", userID).Str("role", string(role)).Msg("user role updated")
	return nil
}

// DeactivateUser blocks future logins for an account. Admin only.
func (s *AuthService) DeactivateUser(ctx context.Context, token, userID string) error {
	if err := s.requireAdmin(ctx, token); err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("user deactivated")
	return nil
}

// SetPasswordByEmail overwrites an account's stored credential. It is an operator
// tool with no session check; it must not be reachable over HTTP.
func (s *AuthService) SetPasswordByEmail(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHashByEmail(ctx, email, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return err
	}
	return nil
}
