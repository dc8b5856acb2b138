package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newRoleRepoMock(t *testing.T) (*RoleRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoleRepo(db), mock
}

func roleRows(id uint64, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, name, now, now, nil)
}

func TestCreateRoleDuplicateName(t *testing.T) {
	t.Parallel()

	repo, mock := newRoleRepoMock(t)
	ctx := context.Background()

	const insert = "INSERT INTO roles (name) VALUES (?)"
	const get = "SELECT " + roleColumns + " FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1"

	t.Run("first create succeeds", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs("admin").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(get).WithArgs(uint64(1)).WillReturnRows(roleRows(1, "admin"))

		role, err := repo.Create(ctx, "admin")
		require.NoError(t, err)
		require.Equal(t, "admin", role.Name)
	})

	t.Run("second create surfaces DuplicateName", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs("admin").WillReturnError(
			errors.New("Error 1062 (23000): Duplicate entry 'admin' for key 'roles.uq_roles_name'"))

		_, err := repo.Create(ctx, "admin")
		require.ErrorIs(t, err, ErrDuplicateName)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantPermissionsIdempotent(t *testing.T) {
	t.Parallel()

	repo, mock := newRoleRepoMock(t)
	ctx := context.Background()

	const roleGet = "SELECT " + roleColumns + " FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1"
	const permCheck = "SELECT TRUE FROM permissions WHERE id=? AND deleted_at IS NULL LIMIT 1"
	const insert = "INSERT IGNORE INTO role_permissions (role_id, permission_id) VALUES (?,?)"

	// First call associates permissions 10 and 11; the second call overlaps
	// on 11 and its INSERT IGNORE writes no new row.
	mock.ExpectQuery(roleGet).WithArgs(uint64(1)).WillReturnRows(roleRows(1, "editor"))
	for _, pid := range []uint64{10, 11} {
		mock.ExpectQuery(permCheck).WithArgs(pid).
			WillReturnRows(sqlmock.NewRows([]string{"TRUE"}).AddRow(true))
		mock.ExpectExec(insert).WithArgs(uint64(1), pid).
			WillReturnResult(sqlmock.NewResult(int64(pid), 1))
	}
	require.NoError(t, repo.GrantPermissions(ctx, 1, []uint64{10, 11}))

	mock.ExpectQuery(roleGet).WithArgs(uint64(1)).WillReturnRows(roleRows(1, "editor"))
	mock.ExpectQuery(permCheck).WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"TRUE"}).AddRow(true))
	mock.ExpectExec(insert).WithArgs(uint64(1), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.GrantPermissions(ctx, 1, []uint64{11}))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantPermissionsUnknownPermission(t *testing.T) {
	t.Parallel()

	repo, mock := newRoleRepoMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT "+roleColumns+" FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1").
		WithArgs(uint64(1)).WillReturnRows(roleRows(1, "editor"))
	mock.ExpectQuery("SELECT TRUE FROM permissions WHERE id=? AND deleted_at IS NULL LIMIT 1").
		WithArgs(uint64(404)).WillReturnRows(sqlmock.NewRows([]string{"TRUE"}))

	require.ErrorIs(t, repo.GrantPermissions(ctx, 1, []uint64{404}), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithPermissionsProjection(t *testing.T) {
	t.Parallel()

	repo, mock := newRoleRepoMock(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name FROM roles WHERE id=? AND deleted_at IS NULL LIMIT 1").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "editor"))
	mock.ExpectQuery(`SELECT p.id, p.name FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id=? AND p.deleted_at IS NULL
		 ORDER BY p.name`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(10, "movies.read").
			AddRow(11, "movies.write"))

	role, err := repo.GetWithPermissions(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "editor", role.Name)
	require.Len(t, role.Permissions, 2)
	// Projection contract: ids and names only, no timestamps fetched.
	require.True(t, role.Permissions[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
