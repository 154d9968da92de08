package packets

import "github.com/Nixie-Tech-LLC/masjid/internal/model"

// body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  model.AuthUser `json:"user"`
}
