package auth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/domain"
	"github.com/prn-tf/inkstand/internal/metrics"
	"github.com/prn-tf/inkstand/internal/pkg/crypto"
	"github.com/prn-tf/inkstand/internal/repository"
)

// Login failure messages shown to the user.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccessDenied       = "Access denied"
	msgRateLimited        = "Too many login attempts. Please try again in %d minutes."
)

// Store is the persistence the auth service needs.
type Store interface {
	repository.UserRepository
	repository.SessionRepository
	repository.ActivityRepository
}

// LoginRequest is a login form submission.
type LoginRequest struct {
	Identifier string `json:"usernameOrEmail"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Validate checks the form fields before a login is attempted.
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(1, 200)),
	)
	return asValidationError(err)
}

// LoginResult reports the outcome of a login attempt. Failures carry a
// user-facing message rather than an error; Reason holds the domain error
// behind the message and is never serialized.
type LoginResult struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Session *domain.AuthSession `json:"session,omitempty"`
	Reason  error               `json:"-"`
}

// CredentialChange is an owner's request to update their account.
// Empty Email, Username or NewPassword leave that field unchanged.
type CredentialChange struct {
	CurrentPassword string `json:"currentPassword"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	NewPassword     string `json:"newPassword"`
}

// Validate checks the fields being changed.
func (c CredentialChange) Validate() error {
	return c.validate(0)
}

// validate checks the fields, capping NewPassword at maxBytes when positive.
func (c CredentialChange) validate(maxBytes int) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.CurrentPassword, validation.Required),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.Username, validation.RuneLength(3, 20)),
		validation.Field(&c.NewPassword, validation.RuneLength(6, 0), validation.By(maxPasswordBytes(maxBytes))),
	)
	return asValidationError(err)
}

// maxPasswordBytes rejects strings longer than limit bytes. A limit of 0 disables it.
func maxPasswordBytes(limit int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if limit <= 0 || len(s) <= limit {
			return nil
		}
		return validation.NewError("validation_password_too_long", fmt.Sprintf("must be at most %d bytes", limit))
	}
}

// OwnerSeed is the bootstrap owner account.
type OwnerSeed struct {
	Email    string
	Username string
	Password string
}

// Service authenticates the owner and manages the single session.
//
// The current user is cached in memory in front of the persisted session.
// The cache is dropped on logout, on session expiry and replaced on
// credential rotation; a cold cache is refilled from the session.
type Service struct {
	store   Store
	hasher  Hasher
	limiter *LoginLimiter
	csrf    *CSRF
	cfg     config.AuthConfig
	metrics metrics.Recorder
	logger  zerolog.Logger
	now     func() time.Time

	mu          sync.Mutex
	currentUser *domain.User
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records login outcomes and session expiry.
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService creates a new Service.
func NewService(store Store, hasher Hasher, limiter *LoginLimiter, csrf *CSRF, cfg config.AuthConfig, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		hasher:  hasher,
		limiter: limiter,
		csrf:    csrf,
		cfg:     cfg,
		metrics: metrics.Nop{},
		logger:  logger.With().Str("service", "auth").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CSRF returns the service's CSRF manager.
func (s *Service) CSRF() *CSRF {
	return s.csrf
}

// Login authenticates the owner and starts a session.
// Every attempt counts toward the rate limit, including successful ones.
// The error return is reserved for system failures.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	identifier := strings.ToLower(req.Identifier)

	allowed, retryAfter := s.limiter.Attempt(identifier)
	if !allowed {
		minutes := int(math.Ceil(retryAfter.Minutes()))
		s.metrics.RecordLoginAttempt(metrics.LoginRateLimited)
		s.logger.Warn().Str("identifier", identifier).Int("retry_minutes", minutes).Msg("login rate limited")
		return LoginResult{Error: fmt.Sprintf(msgRateLimited, minutes), Reason: domain.ErrTooManyAttempts}, nil
	}

	user := s.store.UserByEmailOrUsername(ctx, identifier)
	if user == nil {
		// Log but don't expose whether the identifier exists.
		reason := fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, domain.ErrUserNotFound)
		s.logger.Debug().Err(reason).Str("identifier", identifier).Msg("login failed")
		return s.fail(metrics.LoginInvalid, MsgInvalidCredentials, reason), nil
	}

	ok, err := s.hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to verify password")
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Debug().Err(domain.ErrInvalidCredentials).Str("user_id", user.ID).Msg("login failed")
		return s.fail(metrics.LoginInvalid, MsgInvalidCredentials, domain.ErrInvalidCredentials), nil
	}

	if !user.IsOwner() {
		s.logger.Warn().Err(domain.ErrAccessDenied).Str("user_id", user.ID).Str("role", string(user.Role)).Msg("non-owner attempted login")
		return s.fail(metrics.LoginDenied, MsgAccessDenied, domain.ErrAccessDenied), nil
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	ttl := s.cfg.SessionTTL
	if req.RememberMe {
		ttl = s.cfg.RememberMeTTL
	}
	session := domain.AuthSession{
		UserID:     user.ID,
		Token:      token,
		ExpiresAt:  s.now().Add(ttl),
		RememberMe: req.RememberMe,
	}
	s.store.SetSession(ctx, session)
	s.setCurrentUser(user)

	if _, err := s.csrf.Generate(ctx); err != nil {
		return LoginResult{}, fmt.Errorf("create csrf token: %w", err)
	}

	s.logActivity(ctx, fmt.Sprintf("User %s logged in", user.Username), map[string]any{
		"rememberMe": req.RememberMe,
	})
	s.metrics.RecordLoginAttempt(metrics.LoginSuccess)
	s.logger.Info().
		Str("user_id", user.ID).
		Bool("remember_me", req.RememberMe).
		Time("expires_at", session.ExpiresAt).
		Msg("user logged in")

	return LoginResult{Success: true, Session: &session}, nil
}

func (s *Service) fail(outcome, message string, reason error) LoginResult {
	s.metrics.RecordLoginAttempt(outcome)
	return LoginResult{Error: message, Reason: reason}
}

// Logout ends the session and records who logged out.
func (s *Service) Logout(ctx context.Context) {
	if user := s.CurrentUser(ctx); user != nil {
		s.logActivity(ctx, fmt.Sprintf("User %s logged out", user.Username), nil)
		s.logger.Info().Str("user_id", user.ID).Msg("user logged out")
	}
	s.endSession(ctx)
}

// ValidSession returns the persisted session, or nil when there is none.
// An expired session is deleted together with its CSRF token.
func (s *Service) ValidSession(ctx context.Context) *domain.AuthSession {
	session := s.store.Session(ctx)
	if session == nil {
		return nil
	}
	if session.IsExpired(s.now()) {
		s.endSession(ctx)
		s.metrics.RecordSessionExpired()
		s.logger.Info().Str("user_id", session.UserID).Time("expired_at", session.ExpiresAt).Msg("session expired")
		return nil
	}
	return session
}

// IsAuthenticated reports whether a valid session exists.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.ValidSession(ctx) != nil
}

// RequireAuth returns domain.ErrAuthRequired without a valid session.
func (s *Service) RequireAuth(ctx context.Context) error {
	if !s.IsAuthenticated(ctx) {
		return domain.ErrAuthRequired
	}
	return nil
}

// RequireOwner returns the logged-in owner or domain.ErrOwnerRequired.
func (s *Service) RequireOwner(ctx context.Context) (*domain.User, error) {
	user := s.CurrentUser(ctx)
	if user == nil || !user.IsOwner() {
		return nil, domain.ErrOwnerRequired
	}
	return user, nil
}

// CurrentUser returns the user owning the valid session.
func (s *Service) CurrentUser(ctx context.Context) *domain.User {
	session := s.ValidSession(ctx)
	if session == nil {
		s.setCurrentUser(nil)
		return nil
	}

	s.mu.Lock()
	cached := s.currentUser
	s.mu.Unlock()
	if cached != nil && cached.ID == session.UserID {
		u := *cached
		return &u
	}

	user := s.store.UserByID(ctx, session.UserID)
	s.setCurrentUser(user)
	return user
}

// RotateCredentials updates the owner's email, username and password.
// It returns false, nil when the current password is wrong, and an error
// when the caller is not the owner or the new values are invalid.
func (s *Service) RotateCredentials(ctx context.Context, change CredentialChange) (bool, error) {
	user, err := s.RequireOwner(ctx)
	if err != nil {
		return false, err
	}
	if err := change.validate(passwordLimit(s.hasher)); err != nil {
		return false, err
	}

	ok, err := s.hasher.Verify(ctx, change.CurrentPassword, user.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("user_id", user.ID).Msg("credential rotation with wrong current password")
		return false, nil
	}

	updated := *user
	if change.Email != "" {
		updated.Email = change.Email
	}
	if change.Username != "" {
		updated.Username = change.Username
	}
	if change.NewPassword != "" {
		hash, err := s.hasher.Hash(ctx, change.NewPassword)
		if err != nil {
			return false, fmt.Errorf("hash new password: %w", err)
		}
		updated.PasswordHash = hash
	}
	updated.UpdatedAt = s.now()

	if s.store.UserByID(ctx, user.ID) == nil {
		s.logger.Warn().Err(domain.ErrUserNotFound).Str("user_id", user.ID).Msg("owner removed during credential rotation")
		return false, nil
	}
	s.store.UpdateUser(ctx, updated)
	s.setCurrentUser(&updated)

	s.logActivity(ctx, "Owner credentials updated", nil)
	s.logger.Info().
		Str("user_id", user.ID).
		Bool("password_changed", change.NewPassword != "").
		Msg("owner credentials updated")

	return true, nil
}

// EnsureOwner creates the owner account when no user exists.
// It reports whether an account was created.
func (s *Service) EnsureOwner(ctx context.Context, seed OwnerSeed) (bool, error) {
	if len(s.store.Users(ctx)) > 0 {
		return false, nil
	}

	if limit := passwordLimit(s.hasher); limit > 0 && len(seed.Password) > limit {
		return false, domain.NewValidationError(map[string]string{
			"password": fmt.Sprintf("must be at most %d bytes", limit),
		})
	}

	hash, err := s.hasher.Hash(ctx, seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash owner password: %w", err)
	}

	owner := domain.NewOwner(uuid.NewString(), seed.Email, seed.Username, hash, s.now())
	s.store.SetUsers(ctx, []domain.User{*owner})

	s.logger.Info().
		Str("user_id", owner.ID).
		Str("username", owner.Username).
		Msg("default owner account created; change its credentials after first login")

	return true, nil
}

func (s *Service) endSession(ctx context.Context) {
	s.store.ClearSession(ctx)
	s.csrf.Clear(ctx)
	s.setCurrentUser(nil)
}

func (s *Service) setCurrentUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.currentUser = nil
		return
	}
	u := *user
	s.currentUser = &u
}

func (s *Service) logActivity(ctx context.Context, description string, metadata map[string]any) {
	s.store.AddActivity(ctx, domain.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        domain.ActivityLogin,
		Description: description,
		Timestamp:   s.now(),
		Metadata:    metadata,
	})
}

// asValidationError converts ozzo field errors into a domain.ValidationError.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	if errs, ok := err.(validation.Errors); ok {
		return domain.FieldErrors(errs)
	}
	return err
}
