package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// AuthPublicModule mounts POST /auth/login.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts GET /auth/me (JWT required).
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/me", ctl.currentUser)
	})
}

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

func newAccountManager(secret string, store db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store}
}

// POST /api/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}

	user, err := a.store.GetUserByEmail(ctx.Request.Context(), request.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusInternalServerError, "could not look up user")
	}
	if err != nil || !middleware.CheckPassword(user.HashedPassword, request.Password) {
		log.Warn().Str("email", request.Email).Msg("[auth] failed login")
		return nil, api.Errorf(http.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, api.Errorf(http.StatusForbidden, "account disabled")
	}

	token, err := middleware.GenerateJWT(user, a.jwtSecret)
	if err != nil {
		log.Error().Err(err).Msg("[auth] could not sign token")
		return nil, api.Errorf(http.StatusInternalServerError, "could not generate token")
	}

	return packets.LoginResponse{Token: token, User: user.AuthUser()}, nil
}

// GET /api/auth/me
func (a *AccountManager) currentUser(_ *gin.Context, user *model.User) (any, *api.APIError) {
	return user.AuthUser(), nil
}
