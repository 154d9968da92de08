package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const userColumns = `id, email, hashed_password, full_name, role, is_active, created_at, updated_at`

func (s *pgStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := s.db.SelectContext(ctx, &users, `
	SELECT `+userColumns+`
	FROM users
	ORDER BY created_at, id;
	`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

func (s *pgStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM users;`); err != nil {
		log.Error().Err(err).Msg("failed to count users")
		return 0, err
	}
	return n, nil
}

// GetUserByID returns ErrNotFound if no such user.
func (s *pgStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail matches case-insensitively. Returns ErrNotFound if no such user.
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUser(ctx, "lower(email)", strings.ToLower(strings.TrimSpace(email)))
}

func (s *pgStore) getUser(ctx context.Context, column, value string) (model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `
	SELECT `+userColumns+`
	FROM users
	WHERE `+column+` = $1;
	`, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return u, ErrNotFound
		}
		log.Error().Err(err).Str("by", column).Msg("failed to get user")
		return u, err
	}
	return u, nil
}

// CreateUser inserts u (with HashedPassword already set) and returns the
// stored row. A taken email yields ErrConflict.
func (s *pgStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.Identify(uuid.NewString(), time.Now().UTC())
	u.Email = strings.TrimSpace(u.Email)
	u.Role = model.NormalizeRole(u.Role)

	var out model.User
	err := s.db.GetContext(ctx, &out, `
	INSERT INTO users (id, email, hashed_password, full_name, role, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	RETURNING `+userColumns+`;
	`, u.ID, u.Email, u.HashedPassword, u.FullName, u.Role, u.IsActive, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return out, ErrConflict
		}
		log.Error().Err(err).Msg("failed to create user")
		return out, err
	}
	return out, nil
}

func (s *pgStore) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	b := psql.Update("users").
		Set("email", strings.TrimSpace(u.Email)).
		Set("full_name", u.FullName).
		Set("role", model.NormalizeRole(u.Role)).
		Set("is_active", u.IsActive).
		Set("updated_at", sq.Expr("now()"))
	if u.HashedPassword != "" {
		b = b.Set("hashed_password", u.HashedPassword)
	}
	query, args, err := b.Where(sq.Eq{"id": u.ID}).Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return model.User{}, err
	}

	var out model.User
	if err := s.db.GetContext(ctx, &out, query, args...); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), isInvalidID(err):
			return out, ErrNotFound
		case isUniqueViolation(err):
			return out, ErrConflict
		}
		log.Error().Err(err).Str("id", u.ID).Msg("failed to update user")
		return out, err
	}
	return out, nil
}

func (s *pgStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if isInvalidID(err) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete user")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
