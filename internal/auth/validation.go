package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/accountd/accountd/internal/config"
)

// PasswordPolicy is the configurable password ruleset enforced at
// registration and password change.
type PasswordPolicy struct {
	MinLength        int
	RequireMixedCase bool
	RequireDigit     bool
	RequireSymbol    bool
}

// PolicyFromConfig builds a PasswordPolicy from configuration
func PolicyFromConfig(cfg config.PasswordConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:        cfg.MinLength,
		RequireMixedCase: cfg.RequireMixedCase,
		RequireDigit:     cfg.RequireDigit,
		RequireSymbol:    cfg.RequireSymbol,
	}
}

// ValidatePassword validates a candidate password against the policy
func ValidatePassword(password string, policy PasswordPolicy) error {
	minLength := policy.MinLength
	if minLength == 0 {
		minLength = 8
	}

	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters long", minLength)
	}

	// Cap length to keep hashing cost bounded
	if len(password) > 128 {
		return fmt.Errorf("password must be at most 128 characters long")
	}

	hasLower, hasUpper, hasDigit, hasSymbol := false, false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if policy.RequireMixedCase && (!hasLower || !hasUpper) {
		return fmt.Errorf("password must contain both upper and lower case letters")
	}
	if policy.RequireDigit && !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if policy.RequireSymbol && !hasSymbol {
		return fmt.Errorf("password must contain at least one symbol")
	}

	return nil
}

var nicknamePattern = regexp.MustCompile(`^[\w-]+$`)

// ValidateNickname checks nickname length and character set
func ValidateNickname(nickname string) error {
	if len(nickname) < 3 {
		return fmt.Errorf("nickname must be at least 3 characters long")
	}
	if len(nickname) > 50 {
		return fmt.Errorf("nickname must be at most 50 characters long")
	}
	if !nicknamePattern.MatchString(nickname) {
		return fmt.Errorf("nickname may only contain letters, digits, underscores and hyphens")
	}
	return nil
}

// ValidateEmail performs a structural email format check
func ValidateEmail(email string) error {
	if len(email) < 3 || len(email) > 255 {
		return fmt.Errorf("invalid email format")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return fmt.Errorf("invalid email format")
	}
	// Domain must have at least one dot and no spaces anywhere
	if !strings.Contains(parts[1], ".") || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
