package service

import "errors"

// Service errors. Handlers map these onto HTTP status codes; nothing below
// the handler layer knows about HTTP.
var (
	// ErrNotFound means the requested account does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail means the email address is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateNickname means the nickname is already taken.
	ErrDuplicateNickname = errors.New("nickname already exists")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so a caller cannot probe which addresses are registered.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrAccountLocked means the account is locked out after repeated
	// failed logins.
	ErrAccountLocked = errors.New("account locked due to too many failed login attempts")
	// ErrEmailNotVerified means the credentials were correct but the email
	// address has not been verified yet.
	ErrEmailNotVerified = errors.New("email address not verified")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidVerificationToken means the verification link is unknown,
	// already used, or expired.
	ErrInvalidVerificationToken = errors.New("verification link is invalid or has expired")
)
