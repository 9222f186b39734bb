package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/nickname"
	"github.com/accountd/accountd/internal/repository"
	"github.com/accountd/accountd/internal/search"
)

// nicknameRetries bounds collision retries for generated nicknames.
const nicknameRetries = 3

// UserRepository is the persistence interface the user service depends on
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	IncrementFailedAttempts(ctx context.Context, id string, lockThreshold int) (int, bool, error)
	ResetFailedAttempts(ctx context.Context, id string) error
	SetLocked(ctx context.Context, id string, locked bool) error
	Search(ctx context.Context, f search.Filter, limit, offset int) ([]*model.User, int, error)
}

// AuditRepository records and retrieves account lifecycle events
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	ListByTarget(ctx context.Context, targetID string, limit int) ([]*model.AuditEntry, error)
}

// TokenIssuer mints access tokens for authenticated users
type TokenIssuer interface {
	Issue(subject string, role model.Role) (string, error)
}

// VerificationSender dispatches a verification email for a freshly
// registered account
type VerificationSender interface {
	SendVerification(ctx context.Context, user *model.User) error
}

// UserService implements the account lifecycle: registration, login with
// lockout, profile management, and search.
type UserService struct {
	users         UserRepository
	audit         AuditRepository
	tokens        TokenIssuer
	verification  VerificationSender
	policy        auth.PasswordPolicy
	argon         *auth.Argon2Params
	lockThreshold int
	log           *logger.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users UserRepository,
	audit AuditRepository,
	tokens TokenIssuer,
	verification VerificationSender,
	cfg config.PasswordConfig,
	log *logger.Logger,
) *UserService {
	threshold := cfg.LockoutThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &UserService{
		users:         users,
		audit:         audit,
		tokens:        tokens,
		verification:  verification,
		policy:        auth.PolicyFromConfig(cfg),
		argon:         auth.NewParams(cfg.Argon2Memory, cfg.Argon2Iterations, cfg.Argon2Parallelism),
		lockThreshold: threshold,
		log:           log.WithComponent("user_service"),
	}
}

// RegisterInput is the self-service registration payload
type RegisterInput struct {
	Email    string
	Password string
	Nickname string

	Bio                *string
	GithubProfileURL   *string
	LinkedInProfileURL *string
}

// CreateInput is the admin account creation payload. Accounts created this
// way are verified immediately and may carry any role.
type CreateInput struct {
	Email    string
	Password string
	Nickname string
	Role     string
}

// UpdateInput carries the partial profile update. Nil fields are left
// unchanged.
type UpdateInput struct {
	Nickname           *string
	Email              *string
	Role               *string
	Bio                *string
	GithubProfileURL   *string
	LinkedInProfileURL *string
}

// Register creates a new unverified account with the ANONYMOUS role and
// sends a verification email. Email delivery is best effort: a send failure
// is logged but does not fail the registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := auth.NormalizeEmail(in.Email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := auth.ValidatePassword(in.Password, s.policy); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	generated := in.Nickname == ""
	if !generated {
		if err := auth.ValidateNickname(in.Nickname); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}

	hash, err := auth.HashPassword(in.Password, s.argon)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:                 uuid.New().String(),
		Nickname:           in.Nickname,
		Email:              email,
		PasswordHash:       hash,
		Role:               model.RoleAnonymous,
		EmailVerified:      false,
		Bio:                in.Bio,
		GithubProfileURL:   in.GithubProfileURL,
		LinkedInProfileURL: in.LinkedInProfileURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if generated {
		user.Nickname = nickname.Generate()
	}

	for attempt := 0; ; attempt++ {
		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		// A generated nickname can collide; pick another and retry.
		if generated && errors.Is(err, repository.ErrDuplicateNickname) && attempt < nicknameRetries {
			user.Nickname = nickname.Generate()
			continue
		}
		return nil, mapRepositoryError(err)
	}

	if s.verification != nil {
		if err := s.verification.SendVerification(ctx, user); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send verification email")
		}
	}

	s.recordAudit(ctx, &user.ID, model.AuditActionRegister, &user.ID, nil)
	s.log.Info().Str("user_id", user.ID).Str("nickname", user.Nickname).Msg("user registered")
	return user, nil
}

// Create provisions an account on behalf of an administrator. The account
// is created verified, with the requested role, and no verification email
// is sent.
func (s *UserService) Create(ctx context.Context, actorID string, in CreateInput) (*model.User, error) {
	email := auth.NormalizeEmail(in.Email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := auth.ValidatePassword(in.Password, s.policy); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	role := model.RoleAuthenticated
	if in.Role != "" {
		parsed, err := model.ParseRole(in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		role = parsed
	}

	generated := in.Nickname == ""
	if !generated {
		if err := auth.ValidateNickname(in.Nickname); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}

	hash, err := auth.HashPassword(in.Password, s.argon)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:            uuid.New().String(),
		Nickname:      in.Nickname,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if generated {
		user.Nickname = nickname.Generate()
	}

	for attempt := 0; ; attempt++ {
		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		if generated && errors.Is(err, repository.ErrDuplicateNickname) && attempt < nicknameRetries {
			user.Nickname = nickname.Generate()
			continue
		}
		return nil, mapRepositoryError(err)
	}

	s.recordAudit(ctx, &actorID, model.AuditActionCreate, &user.ID, map[string]interface{}{
		"role": string(role),
	})
	return user, nil
}

// Login authenticates an email/password pair and returns an access token.
// Failure modes, in evaluation order: unknown email and wrong password both
// yield ErrInvalidCredentials; a locked account yields ErrAccountLocked
// before the password is checked; correct credentials on an unverified
// account yield ErrEmailNotVerified. The failed-attempt counter increments
// only on password mismatches, and the attempt that reaches the threshold
// locks the account in the same statement.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = auth.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if user.Locked {
		s.recordAudit(ctx, nil, model.AuditActionLoginFailed, &user.ID, map[string]interface{}{
			"reason": "locked",
		})
		return "", nil, ErrAccountLocked
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		attempts, nowLocked, incErr := s.users.IncrementFailedAttempts(ctx, user.ID, s.lockThreshold)
		if incErr != nil && !errors.Is(incErr, repository.ErrNotFound) {
			s.log.Error().Err(incErr).Str("user_id", user.ID).Msg("failed to record failed login")
		}
		s.recordAudit(ctx, nil, model.AuditActionLoginFailed, &user.ID, map[string]interface{}{
			"reason":   "bad_password",
			"attempts": attempts,
		})
		if nowLocked {
			s.recordAudit(ctx, nil, model.AuditActionLocked, &user.ID, map[string]interface{}{
				"attempts": attempts,
			})
			s.log.Warn().Str("user_id", user.ID).Int("attempts", attempts).Msg("account locked after repeated failed logins")
		}
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	if user.FailedLoginAttempts > 0 {
		if err := s.users.ResetFailedAttempts(ctx, user.ID); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to reset failed login counter")
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recordAudit(ctx, &user.ID, model.AuditActionLogin, &user.ID, nil)
	return token, user, nil
}

// Get retrieves a single account by ID
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return user, nil
}

// Update applies a partial profile update and returns the updated account
func (s *UserService) Update(ctx context.Context, actorID, id string, in UpdateInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	changed := map[string]interface{}{}

	if in.Nickname != nil {
		if err := auth.ValidateNickname(*in.Nickname); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		user.Nickname = *in.Nickname
		changed["nickname"] = *in.Nickname
	}
	if in.Email != nil {
		email := auth.NormalizeEmail(*in.Email)
		if err := auth.ValidateEmail(email); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		user.Email = email
		changed["email"] = email
	}
	if in.Role != nil {
		role, err := model.ParseRole(*in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		user.Role = role
		changed["role"] = string(role)
	}
	if in.Bio != nil {
		user.Bio = in.Bio
		changed["bio"] = *in.Bio
	}
	if in.GithubProfileURL != nil {
		user.GithubProfileURL = in.GithubProfileURL
		changed["github_profile_url"] = *in.GithubProfileURL
	}
	if in.LinkedInProfileURL != nil {
		user.LinkedInProfileURL = in.LinkedInProfileURL
		changed["linkedin_profile_url"] = *in.LinkedInProfileURL
	}

	if len(changed) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.recordAudit(ctx, &actorID, model.AuditActionUpdate, &user.ID, changed)

	updated, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return updated, nil
}

// Delete removes an account permanently
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.recordAudit(ctx, &actorID, model.AuditActionDelete, &id, nil)
	return nil
}

// Unlock clears the lockout on an account and resets its failed-login
// counter
func (s *UserService) Unlock(ctx context.Context, actorID, id string) error {
	if err := s.users.SetLocked(ctx, id, false); err != nil {
		return mapRepositoryError(err)
	}
	s.recordAudit(ctx, &actorID, model.AuditActionUnlocked, &id, nil)
	return nil
}

// AuditTrail returns the most recent audit entries recorded against an
// account, newest first. The account must exist.
func (s *UserService) AuditTrail(ctx context.Context, id string, limit int) ([]*model.AuditEntry, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, mapRepositoryError(err)
	}
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.ListByTarget(ctx, id, limit)
}

// List returns a page of all accounts plus the total count
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	return s.users.Search(ctx, search.Filter{}, limit, offset)
}

// Search returns the page of accounts matching the given criteria plus the
// total match count. Invalid criteria surface as ErrInvalidInput.
func (s *UserService) Search(ctx context.Context, p search.Params, limit, offset int) ([]*model.User, int, error) {
	filter, err := search.Build(p)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.users.Search(ctx, filter, limit, offset)
}

// recordAudit writes an audit entry. Audit failures are logged, never
// propagated; the primary operation has already succeeded.
func (s *UserService) recordAudit(ctx context.Context, actorID *string, action string, targetID *string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	entry := &model.AuditEntry{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Action:    action,
		TargetID:  targetID,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

// mapRepositoryError converts repository sentinels into service sentinels
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateNickname):
		return ErrDuplicateNickname
	default:
		return err
	}
}
