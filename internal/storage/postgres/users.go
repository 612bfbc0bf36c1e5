package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

const userColumns = `id, username, email, phone, role, kyc_status, country, password_hash, created_at`

// CreateUser inserts a new user row. Usernames and emails are unique
// case-insensitively; emails are stored lowercased.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.KYCStatus == "" {
		user.KYCStatus = models.KYCNone
	}
	query := `
		INSERT INTO users (id, username, email, phone, role, kyc_status, country, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.Phone, user.Role, user.KYCStatus, user.Country, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsernameOrEmail fetches the user whose username or email matches the
// identifier, ignoring case.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1) OR email = lower($1) LIMIT 1`, identifier)
	return scanUser(row)
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserRole sets the user's platform role.
func (s *Store) UpdateUserRole(ctx context.Context, id, role string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `UPDATE users SET role = $2 WHERE id = $1 RETURNING `+userColumns, id, role)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role, &user.KYCStatus, &user.Country, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
