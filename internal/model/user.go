package model

import (
    "strings"
    "time"
)

// Role is the closed set of roles a user can hold.  Roles are stored as
// lowercase strings in the `users` table but compared through this type so
// that a typo in a role check fails to compile instead of silently denying
// (or granting) access.
type Role string

const (
    RoleGuard      Role = "guard"      // base role; owns attendance and incident records
    RoleAdmin      Role = "admin"      // manages incident reports system-wide
    RoleSuperadmin Role = "superadmin" // same incident capabilities as admin
)

// ParseRole normalizes a raw role string into a Role.  Unknown values
// return false so callers can reject them instead of persisting garbage.
func ParseRole(raw string) (Role, bool) {
    switch Role(strings.ToLower(strings.TrimSpace(raw))) {
    case RoleGuard:
        return RoleGuard, true
    case RoleAdmin:
        return RoleAdmin, true
    case RoleSuperadmin:
        return RoleSuperadmin, true
    }
    return "", false
}

// IsGuard reports whether the role is the base guard role.
func (r Role) IsGuard() bool { return r == RoleGuard }

// CanManageIncidents reports whether the role may read every incident
// report and write its status and admin notes.  Admins and superadmins
// qualify; guards never do.
func (r Role) CanManageIncidents() bool {
    return r == RoleAdmin || r == RoleSuperadmin
}

// User represents an application user record as stored in the `users`
// table.  Role is immutable for the lifetime of a request; the capability
// predicates on Role determine what the user may do.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown in manager filter dropdowns.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – closed role enum (guard, admin, superadmin).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
