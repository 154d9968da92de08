package model

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// NormalizeRole maps anything that is not super_admin to admin.
func NormalizeRole(r Role) Role {
	if r == RoleSuperAdmin {
		return RoleSuperAdmin
	}
	return RoleAdmin
}

type User struct {
	ID             string    `db:"id"               json:"id"`
	Email          string    `db:"email"            json:"email"`
	HashedPassword string    `db:"hashed_password"  json:"-"`
	FullName       string    `db:"full_name"        json:"full_name"`
	Role           Role      `db:"role"             json:"role"`
	IsActive       bool      `db:"is_active"        json:"is_active"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"       json:"updated_at"`

	// Password is write-only: sent on create or reset, never returned.
	Password string `db:"-" json:"password,omitempty"`
}

func (u User) RecordID() string { return u.ID }

func (u *User) Identify(id string, created time.Time) {
	u.ID, u.CreatedAt, u.UpdatedAt = id, created, created
}

// AuthUser is the identity/role pair handed out at login.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u User) AuthUser() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role}
}
