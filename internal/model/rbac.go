package model

import "time"

// Role represents a row in the `roles` table.  Roles carry a unique name
// and are attached to users through the `user_roles` join table and to
// permissions through `role_permissions`.
type Role struct {
    ID          uint64       // roles.id
    Name        string       // roles.name
    CreatedAt   time.Time    // roles.created_at
    UpdatedAt   time.Time    // roles.updated_at
    DeletedAt   *time.Time   // roles.deleted_at (nullable)
    Permissions []Permission // loaded via role_permissions when requested
}

// Permission represents a row in the `permissions` table.
type Permission struct {
    ID        uint64     // permissions.id
    Name      string     // permissions.name
    CreatedAt time.Time  // permissions.created_at
    UpdatedAt time.Time  // permissions.updated_at
    DeletedAt *time.Time // permissions.deleted_at (nullable)
}

// UserRole models a grant in the `user_roles` join table.  The (user_id,
// role_id) pair is unique so the same role cannot be granted twice.
type UserRole struct {
    ID        uint64    // user_roles.id
    UserID    uint64    // user_roles.user_id
    RoleID    uint64    // user_roles.role_id
    CreatedAt time.Time // user_roles.created_at
}

// RolePermission models a grant in the `role_permissions` join table.  The
// (role_id, permission_id) pair is unique.
type RolePermission struct {
    ID           uint64    // role_permissions.id
    RoleID       uint64    // role_permissions.role_id
    PermissionID uint64    // role_permissions.permission_id
    CreatedAt    time.Time // role_permissions.created_at
}
