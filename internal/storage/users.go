package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// CreateUser inserts a new user record.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateString(user.Email, "email"); err != nil {
		return err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, address, city_tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Email, user.PasswordHash, user.FullName,
		user.Phone, user.Address, string(user.CityTier), user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: email %s", common.ErrDuplicateEntry, user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByID returns the user with the given ID, or ErrNotFound.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, phone, address, city_tier, created_at
		FROM users WHERE id = ?`, id.String()))
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, phone, address, city_tier, created_at
		FROM users WHERE email = ?`, email))
}

func (s *SQLiteStorage) scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var id, cityTier string
	var address sql.NullString

	err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Phone, &address, &cityTier, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	user.Address = address.String
	user.CityTier = model.CityTier(cityTier)

	return &user, nil
}
