package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-auth-service/internal/model"
)

// PermissionRepo provides access to the 'permissions' table.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

const permissionColumns = "id,name,created_at,updated_at,deleted_at"

// Create inserts a permission. A colliding name surfaces as ErrDuplicateName.
func (r *PermissionRepo) Create(ctx context.Context, name string) (model.Permission, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO permissions (name) VALUES (?)", strings.TrimSpace(name))
	if err != nil {
		return model.Permission{}, translateDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Permission{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a non-deleted permission by id.
func (r *PermissionRepo) GetByID(ctx context.Context, id uint64) (model.Permission, error) {
	var (
		p         model.Permission
		deletedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+permissionColumns+" FROM permissions WHERE id=? AND deleted_at IS NULL LIMIT 1", id).
		Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Permission{}, ErrNotFound
	}
	if err != nil {
		return model.Permission{}, err
	}
	return p, nil
}

// List returns all non-deleted permissions.
func (r *PermissionRepo) List(ctx context.Context) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+permissionColumns+" FROM permissions WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []model.Permission
	for rows.Next() {
		var (
			p         model.Permission
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Rename updates a permission's name and returns the updated row.
func (r *PermissionRepo) Rename(ctx context.Context, id uint64, name string) (model.Permission, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Permission{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE permissions SET name=? WHERE id=? AND deleted_at IS NULL",
		strings.TrimSpace(name), id); err != nil {
		return model.Permission{}, translateDuplicate(err)
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks a permission as deleted.
func (r *PermissionRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE permissions SET deleted_at=UTC_TIMESTAMP() WHERE id=? AND deleted_at IS NULL", id)
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
