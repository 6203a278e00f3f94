package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/guardpost/security-patrol/internal/model"
	"github.com/guardpost/security-patrol/internal/utils"
)

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.  The password is hashed with
// bcrypt before it touches the database.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		strings.TrimSpace(name), email, hash, string(role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx,
		"SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx,
		"SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if parsed, ok := model.ParseRole(role); ok {
		u.Role = parsed
	} else {
		u.Role = model.Role(role)
	}
	return u, nil
}

// GuardRef is the trimmed user projection managers see in filter
// dropdowns on the incident list.
type GuardRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ListGuards returns id and name of every guard, ordered by name.
func (r *UserRepo) ListGuards(ctx context.Context) ([]GuardRef, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name FROM users WHERE role=? ORDER BY name", string(model.RoleGuard))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]GuardRef, 0)
	for rows.Next() {
		var g GuardRef
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountGuards returns how many guard accounts exist.
func (r *UserRepo) CountGuards(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", string(model.RoleGuard)).Scan(&n)
	return n, err
}
