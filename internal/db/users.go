package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/skills-dossier/internal/types"
)

// User is a stored account row.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	Roles        []string
}

// ErrDuplicateUser is returned when the id or email is already taken.
var ErrDuplicateUser = errors.New("user already exists")

const stableIDLength = 20

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StableUserID derives the account id from an email: "user_" followed by
// the first 20 characters of the normalized email's base64 with "/", "+"
// and "=" removed.
func StableUserID(email string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(NormalizeEmail(email)))
	encoded = strings.NewReplacer("/", "", "+", "", "=", "").Replace(encoded)
	if len(encoded) > stableIDLength {
		encoded = encoded[:stableIDLength]
	}
	return "user_" + encoded
}

// ToAPI converts the row to its API shape, dropping the password hash.
func (u *User) ToAPI() *types.User {
	if u == nil {
		return nil
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &types.User{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUser inserts a user with a password hash.
func (db *DB) CreateUser(ctx context.Context, id, email, fullName, passwordHash string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name, password_hash) VALUES ($1, $2, $3, $4)`,
		id, NormalizeEmail(email), fullName, passwordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpsertUser inserts a password-less user or keeps the existing row.
func (db *DB) UpsertUser(ctx context.Context, id, email, fullName string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		id, NormalizeEmail(email), fullName,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser returns the user with its roles, or nil when absent.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	return db.getUserWhere(ctx, "id = $1", id)
}

// GetUserByEmail returns the user with its roles, or nil when absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.getUserWhere(ctx, "email = $1", NormalizeEmail(email))
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	var hash *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, full_name, password_hash, created_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.FullName, &hash, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if hash != nil {
		u.PasswordHash = *hash
	}

	u.Roles, err = db.ListUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUserRoles returns the roles held by a user, in tier order.
func (db *DB) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1
		 ORDER BY array_position(ARRAY['consultant','business_manager','admin'], role)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}

// AddUserRole grants a role; granting a held role is a no-op.
func (db *DB) AddUserRole(ctx context.Context, userID string, role types.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

// SetUserRoles replaces every role of a user in one transaction.
func (db *DB) SetUserRoles(ctx context.Context, userID string, roles []types.Role) error {
	for _, r := range roles {
		if !r.IsValid() {
			return fmt.Errorf("invalid role: %q", r)
		}
	}

	return db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear roles: %w", err)
		}
		for _, r := range roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, string(r),
			); err != nil {
				return fmt.Errorf("failed to add role %s: %w", r, err)
			}
		}
		return nil
	})
}

// ListUsers returns every user with roles, oldest first.
func (db *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT u.id, u.email, u.full_name, u.created_at,
		        COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles r ON r.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt, &u.Roles); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user with the dossiers they manage.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE manager_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete profiles: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
