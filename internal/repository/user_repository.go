package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/search"
)

const userColumns = `id, nickname, email, password_hash, role, email_verified, locked,
	       failed_login_attempts, bio, github_profile_url, linkedin_profile_url,
	       created_at, updated_at`

// UserRepository handles user data persistence
type UserRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Postgres) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Email and nickname uniqueness is enforced by
// database constraints, so two concurrent registrations with the same email
// cannot both succeed; the loser observes ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, nickname, email, password_hash, role, email_verified, locked,
		                   failed_login_attempts, bio, github_profile_url, linkedin_profile_url,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.EmailVerified,
		user.Locked,
		user.FailedLoginAttempts,
		user.Bio,
		user.GithubProfileURL,
		user.LinkedInProfileURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Update persists the mutable fields of a user record
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET nickname = $1, email = $2, role = $3, bio = $4,
		    github_profile_url = $5, linkedin_profile_url = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Nickname,
		user.Email,
		user.Role,
		user.Bio,
		user.GithubProfileURL,
		user.LinkedInProfileURL,
		time.Now(),
		user.ID,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user record permanently
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementFailedAttempts atomically bumps the failed-login counter and
// flips the lock flag in the same statement once the counter reaches the
// threshold. Doing both in one UPDATE guarantees concurrent failed logins
// cannot interleave past the threshold without locking the account.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, id string, lockThreshold int) (int, bool, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked = locked OR (failed_login_attempts + 1 >= $2),
		    updated_at = $3
		WHERE id = $1
		RETURNING failed_login_attempts, locked
	`
	var attempts int
	var locked bool
	err := r.db.QueryRowContext(ctx, query, id, lockThreshold, time.Now()).Scan(&attempts, &locked)
	if err == sql.ErrNoRows {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment failed attempts: %w", err)
	}
	return attempts, locked, nil
}

// ResetFailedAttempts resets the failed-login counter after a successful login
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	query := `UPDATE users SET failed_login_attempts = 0, updated_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reset failed attempts: %w", err)
	}
	return nil
}

// Verify marks the account as email-verified, promotes an anonymous account
// to authenticated, and clears any lockout. Successful re-verification is the
// non-admin path out of the locked state.
func (r *UserRepository) Verify(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET email_verified = true,
		    role = CASE WHEN role = $2 THEN $3 ELSE role END,
		    locked = false,
		    failed_login_attempts = 0,
		    updated_at = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, model.RoleAnonymous, model.RoleAuthenticated, time.Now())
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLocked sets or clears the lock flag. Clearing also resets the
// failed-login counter.
func (r *UserRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	query := `
		UPDATE users
		SET locked = $2,
		    failed_login_attempts = CASE WHEN $2 THEN failed_login_attempts ELSE 0 END,
		    updated_at = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, locked, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set lock state: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns the page of users matching the filter plus the total match
// count. An empty filter returns the full collection. All criteria are ANDed.
func (r *UserRepository) Search(ctx context.Context, f search.Filter, limit, offset int) ([]*model.User, int, error) {
	var where []string
	var args []interface{}

	if f.Nickname != "" {
		args = append(args, f.Nickname)
		where = append(where, fmt.Sprintf("nickname = $%d", len(args)))
	}
	if f.Email != "" {
		args = append(args, f.Email)
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.HasDateRange {
		args = append(args, f.CreatedAfter)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
		args = append(args, f.CreatedBefore)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(
		`SELECT %s FROM users%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		userColumns, clause, limitPos, offsetPos,
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// duplicateError maps a Postgres unique-violation to the matching sentinel,
// or returns nil if err is not a unique violation.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case "users_nickname_key":
		return ErrDuplicateNickname
	default:
		return ErrDuplicateEmail
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row *sql.Row) (*model.User, error) {
	user, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.EmailVerified,
		&user.Locked,
		&user.FailedLoginAttempts,
		&user.Bio,
		&user.GithubProfileURL,
		&user.LinkedInProfileURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
