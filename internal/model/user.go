package model

import (
    "strings"
    "time"
)

// Role names stored in usuarios.rol.
const (
    RoleEmployee   = "funcionario"
    RoleSupervisor = "supervisor"
    RoleAdmin      = "admin"
)

// User represents a row of the `usuarios` table.  SupervisorID builds the
// reporting hierarchy: a funcionario points at a supervisor-role user.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name.
//  LastName     – family name.
//  Role         – funcionario, supervisor or admin.
//  SupervisorID – users.id of the supervisor (nullable).
//  IsActive     – whether the account is active.
type User struct {
    ID           uint64    // usuarios.id
    Email        string    // usuarios.email
    PasswordHash string    // usuarios.password_hash
    FirstName    string    // usuarios.nombre
    LastName     string    // usuarios.apellido
    Role         string    // usuarios.rol
    SupervisorID *uint64   // usuarios.supervisor_id (nullable)
    IsActive     bool      // usuarios.activo
    CreatedAt    time.Time // usuarios.created_at
    UpdatedAt    time.Time // usuarios.updated_at
}

// FullName joins first and last name.
func (u User) FullName() string {
    return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Supervises reports whether u is the direct supervisor of other.
func (u User) Supervises(other User) bool {
    return other.SupervisorID != nil && *other.SupervisorID == u.ID
}

// ValidRole reports whether r is a known role name.
func ValidRole(r string) bool {
    switch r {
    case RoleEmployee, RoleSupervisor, RoleAdmin:
        return true
    }
    return false
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
