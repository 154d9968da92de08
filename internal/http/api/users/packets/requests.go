package packets

import "github.com/Nixie-Tech-LLC/masjid/internal/model"

type CreateUserRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=8"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role" binding:"omitempty,oneof=super_admin admin"`
	IsActive *bool      `json:"is_active"`
}

// UpdateUserRequest replaces the profile; Password is only changed when set.
type UpdateUserRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"omitempty,min=8"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role" binding:"omitempty,oneof=super_admin admin"`
	IsActive *bool      `json:"is_active"`
}
