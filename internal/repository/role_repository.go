package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-auth-service/internal/model"
)

// RoleRepo provides access to the 'roles' table and the role_permissions
// join table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

const roleColumns = "id,name,created_at,updated_at,deleted_at"

// Create inserts a role. A colliding name surfaces as ErrDuplicateName;
// the existing role is untouched.
func (r *RoleRepo) Create(ctx context.Context, name string) (model.Role, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name) VALUES (?)", strings.TrimSpace(name))
	if err != nil {
		return model.Role{}, translateDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a non-deleted role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var (
		role      model.Role
		deletedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1", id).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, err
	}
	return role, nil
}

// List returns all non-deleted roles.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []model.Role
	for rows.Next() {
		var (
			role      model.Role
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Rename updates a role's name and returns the updated row.
func (r *RoleRepo) Rename(ctx context.Context, id uint64, name string) (model.Role, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Role{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE roles SET name=? WHERE id=? AND deleted_at IS NULL",
		strings.TrimSpace(name), id); err != nil {
		return model.Role{}, translateDuplicate(err)
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks a role as deleted. Existing user_roles rows remain for
// history but the role no longer appears in any active lookup or token
// snapshot.
func (r *RoleRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE roles SET deleted_at=UTC_TIMESTAMP() WHERE id=? AND deleted_at IS NULL", id)
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

// GrantPermissions appends each permission to the role. Every id must
// resolve to a live permission (ErrNotFound otherwise). The inserts are
// idempotent: re-granting an already-associated permission is a no-op and
// the unique (role_id, permission_id) pair guards against races.
func (r *RoleRepo) GrantPermissions(ctx context.Context, roleID uint64, permissionIDs []uint64) error {
	if _, err := r.GetByID(ctx, roleID); err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		var exists bool
		err := r.DB.QueryRowContext(ctx,
			"SELECT TRUE FROM permissions WHERE id=? AND deleted_at IS NULL LIMIT 1", pid).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO role_permissions (role_id, permission_id) VALUES (?,?)",
			roleID, pid); err != nil {
			return err
		}
	}
	return nil
}

// GetWithPermissions returns a role with its associated permissions. Only
// the id and name columns are projected from either side; callers wanting
// timestamps should fetch the rows individually.
func (r *RoleRepo) GetWithPermissions(ctx context.Context, roleID uint64) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1", roleID).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id=? AND p.deleted_at IS NULL
		 ORDER BY p.name`, roleID)
	if err != nil {
		return model.Role{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return model.Role{}, err
		}
		role.Permissions = append(role.Permissions, p)
	}
	return role, rows.Err()
}
