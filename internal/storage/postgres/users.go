package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/users"
)

// UserRepository persists researcher accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository using a pooled DB handle.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id string) (users.User, error) {
	const query = `
        SELECT id, email, name, password_hash, created_at, updated_at
          FROM users
         WHERE id = $1
    `
	return r.scanUser(r.db.QueryRow(query, id))
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	const query = `
        SELECT id, email, name, password_hash, created_at, updated_at
          FROM users
         WHERE email = lower($1)
    `
	return r.scanUser(r.db.QueryRow(query, email))
}

func (r *UserRepository) scanUser(row *sql.Row) (users.User, error) {
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
	if u.ID == "" {
		const insert = `
            INSERT INTO users (email, name, password_hash, created_at, updated_at)
            VALUES (lower($1),$2,$3,$4,$5)
            RETURNING id
        `
		if err := r.db.QueryRow(insert, u.Email, u.Name, u.PasswordHash, now, now).Scan(&u.ID); err != nil {
			return users.User{}, fmt.Errorf("insert user: %w", err)
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		return u, nil
	}

	const update = `
        UPDATE users
           SET email = lower($2),
               name = $3,
               password_hash = $4,
               updated_at = $5
         WHERE id = $1
        RETURNING created_at
    `
	var created time.Time
	if err := r.db.QueryRow(update, u.ID, u.Email, u.Name, u.PasswordHash, now).Scan(&created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("update user: %w", err)
	}
	u.CreatedAt = created
	u.UpdatedAt = now
	return u, nil
}
