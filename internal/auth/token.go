package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/model"
)

// Token errors
var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures, and wrong
	// signing algorithms.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims are the access token claims: subject identity plus role.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// TokenService issues and decodes Ed25519-signed access tokens. Tokens are
// stateless: there is no server-side revocation, logout is client-side
// discard.
type TokenService struct {
	cfg  config.TokenConfig
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewTokenService creates a TokenService from configuration. When no signing
// key seed is configured an ephemeral key pair is generated.
func NewTokenService(cfg config.TokenConfig) (*TokenService, error) {
	var priv ed25519.PrivateKey

	if cfg.SigningKeySeed != "" {
		seed, err := hex.DecodeString(cfg.SigningKeySeed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signing key seed: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("signing key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
		}
		priv = ed25519.NewKeyFromSeed(seed)
	} else {
		var err error
		_, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}

	return &TokenService{
		cfg:  cfg,
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// Issue creates a signed access token for the given subject and role
func (s *TokenService) Issue(subject string, role model.Role) (string, error) {
	now := time.Now()
	ttl := s.cfg.AccessTokenTTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode validates a token string and returns its claims
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.pub, nil
		},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
