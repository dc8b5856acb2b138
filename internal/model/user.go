package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The password is kept as an opaque bcrypt hash and never leaves
// the repository layer; handlers define separate response types with the
// JSON shape they want to expose.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name, also the JWT subject.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active; flipped off on soft delete.
//  IsAdmin      – whether the account has the administrative flag.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
//  DeletedAt    – soft delete marker (nil while the account is live).
//  Roles        – role rows granted to the user, loaded on demand.
type User struct {
    ID           uint64     // users.id
    Username     string     // users.username
    Email        string     // users.email
    PasswordHash []byte     // users.password_hash
    IsActive     bool       // users.is_active
    IsAdmin      bool       // users.is_admin
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
    DeletedAt    *time.Time // users.deleted_at (nullable)
    Roles        []Role     // loaded via user_roles when requested
}

// RoleNames returns the names of the user's loaded roles.  This is the
// snapshot embedded into access tokens at issuance time.
func (u User) RoleNames() []string {
    names := make([]string, 0, len(u.Roles))
    for _, r := range u.Roles {
        names = append(names, r.Name)
    }
    return names
}

// HasRole reports whether one of the user's loaded roles carries the given
// name.
func (u User) HasRole(name string) bool {
    for _, r := range u.Roles {
        if r.Name == name {
            return true
        }
    }
    return false
}
