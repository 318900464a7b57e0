package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/storage"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already registered")
	ErrInvalidPassword = errors.New("invalid password")
)

// AccountService persists users in Postgres. Password hashes never leave it
// except as part of the stored models.User.
type AccountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) *AccountService {
	return &AccountService{pool: pool}
}

func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, is_admin, created_at`

	row := s.pool.QueryRow(ctx, query, req.Username, string(hashedPassword))
	user, err := scanUser(row)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

// Login verifies the username/password pair against the stored hash.
func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	const query = `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		WHERE username = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	const query = `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		WHERE id = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return user, nil
}

// IsAdmin reads the admin flag straight from the users table. Admin-gated
// requests call this on every hit instead of trusting the login-time token
// claim, so a demoted admin loses access immediately.
func (s *AccountService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT is_admin FROM users WHERE id = $1`

	var isAdmin bool
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&isAdmin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("fetch admin flag: %w", err)
	}
	return isAdmin, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
