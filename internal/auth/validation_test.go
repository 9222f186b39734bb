package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strictPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		RequireMixedCase: true,
		RequireDigit:     true,
		RequireSymbol:    true,
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"meets all requirements", "Str0ng-pass", false},
		{"too short", "S7-a", true},
		{"no upper case", "weak-pass-77", true},
		{"no lower case", "WEAK-PASS-77", true},
		{"no digit", "Weak-password", true},
		{"no symbol", "Weakpassword77", true},
		{"empty", "", true},
	}

	policy := strictPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, policy)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePasswordRelaxedPolicy(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}
	assert.NoError(t, ValidatePassword("alllowercase", policy))
	assert.Error(t, ValidatePassword("short", policy))
}

func TestValidateNickname(t *testing.T) {
	assert.NoError(t, ValidateNickname("brisk_otter_42"))
	assert.NoError(t, ValidateNickname("jo-anne"))
	assert.Error(t, ValidateNickname("ab"))
	assert.Error(t, ValidateNickname("has spaces"))
	assert.Error(t, ValidateNickname("email@style"))
	assert.Error(t, ValidateNickname(string(make([]byte, 60))))
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co.uk",
		"u+tag@example.io",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@nodot",
		"user @example.com",
		"user@exa mple.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}
