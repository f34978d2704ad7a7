package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tallergo/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, password_hash, name, email, role, is_active, created_at)
              VALUES (?, ?, ?, ?, ?, 1, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Email, user.Role, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.IsActive = true
	user.CreatedAt = now
	return nil
}

// EnsureUser inserts the user only when the username is absent. Used to
// seed the initial admin account.
func (db *DB) EnsureUser(ctx context.Context, user *models.User) error {
	query := `INSERT OR IGNORE INTO users (username, password_hash, name, email, role, is_active, created_at)
              VALUES (?, ?, ?, ?, ?, 1, ?)`
	_, err := db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Email, user.Role, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, name, email, role, is_active, created_at
              FROM users WHERE username = ?`
	return db.queryUser(ctx, query, username)
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, password_hash, name, email, role, is_active, created_at
              FROM users WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Name,
		&user.Email, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
