package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelflab/platform/internal/domain/users"
)

// UserRepository persists researcher accounts in sqlite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository on an opened sqlite handle.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id string) (users.User, error) {
	const query = `
        SELECT id, email, name, password_hash, created_at, updated_at
          FROM users
         WHERE id = ?
    `
	return scanUser(r.db.QueryRow(query, id))
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	const query = `
        SELECT id, email, name, password_hash, created_at, updated_at
          FROM users
         WHERE email = ?
    `
	return scanUser(r.db.QueryRow(query, strings.ToLower(email)))
}

func scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Save inserts or updates a user.
func (r *UserRepository) Save(u users.User) (users.User, error) {
	now := time.Now().UTC()
	u.Email = strings.ToLower(u.Email)

	if u.ID == "" {
		u.ID = newID()
		u.CreatedAt = now
		u.UpdatedAt = now
		const insert = `
            INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
            VALUES (?,?,?,?,?,?)
        `
		if _, err := r.db.Exec(insert, u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt); err != nil {
			return users.User{}, fmt.Errorf("insert user: %w", err)
		}
		return u, nil
	}

	const update = `
        UPDATE users
           SET email = ?, name = ?, password_hash = ?, updated_at = ?
         WHERE id = ?
    `
	result, err := r.db.Exec(update, u.Email, u.Name, u.PasswordHash, now, u.ID)
	if err != nil {
		return users.User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return users.User{}, fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return users.User{}, users.ErrNotFound
	}
	u.UpdatedAt = now
	return u, nil
}
