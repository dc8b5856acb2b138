package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-auth-service/internal/auth"
	"github.com/iliyamo/movie-auth-service/internal/model"
)

// UserRepo provides access to the 'users' table and the user_roles join
// table. All lookups exclude soft-deleted rows unless stated otherwise.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,is_active,is_admin,created_at,updated_at,deleted_at"

// Create hashes the password and inserts a user row, returning the stored
// record. Unique violations surface as ErrDuplicateUsername/ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		username, email, hash)
	if err != nil {
		return model.User{}, translateDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a user by id regardless of active flag, excluding
// soft-deleted rows.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id))
}

// GetActiveByID fetches an active, non-deleted user by id.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_active=TRUE AND deleted_at IS NULL LIMIT 1", id))
}

// GetActiveByUsername fetches an active, non-deleted user by username.
// Used by the login path, which needs the password hash but not the roles.
func (r *UserRepo) GetActiveByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? AND is_active=TRUE AND deleted_at IS NULL LIMIT 1",
		strings.TrimSpace(username)))
}

// GetActiveByUsernameWithRoles fetches an active user together with their
// live roles. Only the id and name columns of each role are projected;
// that is all the token snapshot and the access gate need.
func (r *UserRepo) GetActiveByUsernameWithRoles(ctx context.Context, username string) (model.User, error) {
	u, err := r.GetActiveByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id=? AND r.deleted_at IS NULL
		 ORDER BY r.name`, u.ID)
	if err != nil {
		return model.User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return model.User{}, err
		}
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListActive returns all active, non-deleted users without roles.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active=TRUE AND deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserUpdate carries the mutable user fields. Nil pointers mean "leave
// unchanged"; a full update fills every field, a partial update only the
// ones the caller provided.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	IsActive *bool
	IsAdmin  *bool
}

// Update applies the provided fields to an active user and returns the
// updated row. Passwords are re-hashed with the given bcrypt cost.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate, cost int) (model.User, error) {
	if _, err := r.GetActiveByID(ctx, id); err != nil {
		return model.User{}, err
	}

	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.Username != nil {
		set = append(set, "username=?")
		args = append(args, strings.TrimSpace(*upd.Username))
	}
	if upd.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password, cost)
		if err != nil {
			return model.User{}, err
		}
		set = append(set, "password_hash=?")
		args = append(args, hash)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if upd.IsAdmin != nil {
		set = append(set, "is_admin=?")
		args = append(args, *upd.IsAdmin)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=? AND deleted_at IS NULL",
		args...); err != nil {
		return model.User{}, translateDuplicate(err)
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks a user as deleted and deactivates the account. The row
// stays in storage for audit; every active lookup filters it out.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted_at=UTC_TIMESTAMP(), is_active=FALSE WHERE id=? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GrantRole appends a role to a user. Both sides must exist and not be
// soft-deleted. The insert is idempotent: the unique (user_id, role_id)
// pair guards against duplicate grants and races.
func (r *UserRepo) GrantRole(ctx context.Context, userID, roleID uint64) error {
	if _, err := r.GetActiveByID(ctx, userID); err != nil {
		return err
	}
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT TRUE FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1", roleID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?,?)", userID, roleID)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...interface{}) error }

func scanUser(s scanner) (model.User, error) {
	var (
		u         model.User
		deletedAt sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsActive, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return model.User{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}
