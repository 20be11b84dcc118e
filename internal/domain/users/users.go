package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotImplemented  = errors.New("users repository: not implemented")
	ErrNotFound        = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailExists     = errors.New("email already in use")
)

// User represents a researcher account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines persistence behaviour for users.
type Repository interface {
	FindByID(id string) (User, error)
	FindByEmail(email string) (User, error)
	Save(user User) (User, error)
}

// NullRepository can be used when no storage is configured.
type NullRepository struct{}

func (NullRepository) FindByID(string) (User, error)    { return User{}, ErrNotImplemented }
func (NullRepository) FindByEmail(string) (User, error) { return User{}, ErrNotImplemented }
func (NullRepository) Save(User) (User, error)          { return User{}, ErrNotImplemented }

// Service exposes user registration and authentication logic.
type Service interface {
	Register(input RegisterInput) (User, error)
	Authenticate(email, password string) (User, error)
	Get(id string) (User, error)
}

type service struct {
	repo Repository
}

// RegisterInput captures data required to create an account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// NewService constructs a user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(input RegisterInput) (User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return User{}, errors.New("email is required")
	}
	if len(input.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	if _, err := s.repo.FindByEmail(email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotImplemented) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
	}

	saved, err := s.repo.Save(user)
	if err != nil {
		return User{}, err
	}
	return saved, nil
}

func (s *service) Authenticate(email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return User{}, errors.New("email is required")
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidPassword
	}
	return user, nil
}

func (s *service) Get(id string) (User, error) {
	return s.repo.FindByID(id)
}
