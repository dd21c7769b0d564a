// Package model defines persistence-facing structs shared between the
// repository layer and handlers.
package model

import "time"

// Roles stored in the users.role column and carried in the JWT "role" claim.
const (
    RoleMember  = "MEMBER"
    RoleTrainer = "TRAINER"
)

// User mirrors the users table.  Both gym members and trainers are accounts;
// the role decides which endpoints they may call.
type User struct {
    ID           uint64
    Email        string
    PasswordHash string
    FullName     string
    Role         string
    IsActive     bool
    CreatedAt    time.Time
    UpdatedAt    time.Time
}
