package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/email"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/repository"
)

const verificationKeyPrefix = "verify:"

// VerificationStore is the subset of user persistence the verification
// service needs
type VerificationStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	Verify(ctx context.Context, id string) error
}

// TokenStore holds token digests under a TTL. database.Redis satisfies it;
// a missing key must surface as redis.Nil.
type TokenStore interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// VerificationService issues and confirms email verification links. Tokens
// are single use: only a SHA-256 digest is stored, under a TTL, and the key
// is deleted on successful confirmation.
type VerificationService struct {
	store   TokenStore
	users   VerificationStore
	audit   AuditRepository
	sender  email.Sender
	cfg     config.VerificationConfig
	appName string
	log     *logger.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	store TokenStore,
	users VerificationStore,
	audit AuditRepository,
	sender email.Sender,
	cfg config.VerificationConfig,
	appName string,
	log *logger.Logger,
) *VerificationService {
	return &VerificationService{
		store:   store,
		users:   users,
		audit:   audit,
		sender:  sender,
		cfg:     cfg,
		appName: appName,
		log:     log.WithComponent("verification_service"),
	}
}

// SendVerification generates a fresh verification token for the user,
// stores its digest, and emails the verification link. A repeated call
// replaces any earlier token.
func (s *VerificationService) SendVerification(ctx context.Context, user *model.User) error {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	token := hex.EncodeToString(raw)

	ttl := s.cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	if err := s.store.SetWithTTL(ctx, verificationKeyPrefix+user.ID, digest(token), ttl); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email/%s/%s", strings.TrimRight(s.cfg.BaseURL, "/"), user.ID, token)
	ttlHours := int(ttl.Hours())

	msg := email.Message{
		To:       user.Email,
		Subject:  fmt.Sprintf("Verify your email for %s", s.appName),
		HTMLBody: email.VerificationEmailHTML(link, s.appName, ttlHours),
		TextBody: email.VerificationEmailText(link, s.appName, ttlHours),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("verification email sent")
	return nil
}

// Confirm validates a verification token and marks the account verified.
// Confirming an already verified account succeeds without consuming
// anything, so clicking a stale link twice is harmless.
func (s *VerificationService) Confirm(ctx context.Context, userID, token string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidVerificationToken
	}
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return nil
	}

	stored, err := s.store.GetString(ctx, verificationKeyPrefix+user.ID)
	if errors.Is(err, redis.Nil) {
		return ErrInvalidVerificationToken
	}
	if err != nil {
		return fmt.Errorf("failed to load verification token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(token))) != 1 {
		return ErrInvalidVerificationToken
	}

	if err := s.users.Verify(ctx, user.ID); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.store.Delete(ctx, verificationKeyPrefix+user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to delete consumed verification token")
	}

	if s.audit != nil {
		entry := &model.AuditEntry{
			ID:        uuid.New().String(),
			UserID:    &user.ID,
			Action:    model.AuditActionVerified,
			TargetID:  &user.ID,
			CreatedAt: time.Now(),
		}
		if err := s.audit.Create(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record audit entry")
		}
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// digest returns the hex SHA-256 digest of a token
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
