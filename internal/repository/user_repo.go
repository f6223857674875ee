package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garage_gateway/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of the Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL         = `INSERT INTO users (username, password_hash, role, api_key) VALUES (?, ?, ?, ?)`
	selectUserByNameSQL   = `SELECT id, username, password_hash, role, api_key FROM users WHERE username = ?`
	selectUserByAPIKeySQL = `SELECT id, username, password_hash, role, api_key FROM users WHERE api_key = ?`
	selectAllUsersSQL     = `SELECT id, username, password_hash, role, api_key FROM users ORDER BY username`
	updatePasswordSQL     = `UPDATE users SET password_hash = ? WHERE username = ?`
	deleteUserSQL         = `DELETE FROM users WHERE username = ?`
)

// Create inserts a new user and returns its ID. apiKey may be empty.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash, role, apiKey string) (int, error) {
	var key any
	if apiKey != "" {
		key = apiKey
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL, username, passwordHash, role, key)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", username, err)
	}
	return int(lastID), nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := r.scanUser(r.db.QueryRowContext(ctx, selectUserByNameSQL, username))
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// GetByAPIKey fetches a user by API key. Returns (nil, nil) if no user
// carries that key.
func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	u, err := r.scanUser(r.db.QueryRowContext(ctx, selectUserByAPIKeySQL, apiKey))
	if err != nil {
		return nil, fmt.Errorf("select user by api key: %w", err)
	}
	return u, nil
}

// List returns all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectAllUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var (
			u      models.User
			apiKey sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &apiKey); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.APIKey = apiKey.String
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return out, nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, updatePasswordSQL, passwordHash, username)
	if err != nil {
		return fmt.Errorf("update password for %q: %w", username, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update password for %q: no such user", username)
	}
	return nil
}

// Delete removes a user by username.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, deleteUserSQL, username); err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u      models.User
		apiKey sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &apiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.APIKey = apiKey.String
	return &u, nil
}
