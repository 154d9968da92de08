package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/content/packets"
	userpackets "github.com/Nixie-Tech-LLC/masjid/internal/http/api/users/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type UserController struct {
	store db.Store
}

// UserModule mounts /users CRUD. Mount it in a super_admin-only group.
func UserModule(store db.Store) api.Module {
	ctl := &UserController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/users", ctl.listUsers)
		c.POST("/users", ctl.createUser)
		c.PUT("/users/:id", ctl.updateUser)
		c.DELETE("/users/:id", ctl.deleteUser)
	})
}

// GET /api/users
func (u *UserController) listUsers(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	users, err := u.store.ListUsers(ctx.Request.Context())
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not list users")
	}
	return users, nil
}

// POST /api/users
func (u *UserController) createUser(ctx *gin.Context, actor *model.User) (any, *api.APIError) {
	var req userpackets.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}

	hashed, err := middleware.HashPassword(req.Password)
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not hash password")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	created, err := u.store.CreateUser(ctx.Request.Context(), model.User{
		Email:          req.Email,
		HashedPassword: hashed,
		FullName:       packets.Clean(req.FullName),
		Role:           model.NormalizeRole(req.Role),
		IsActive:       active,
	})
	if errors.Is(err, db.ErrConflict) {
		return nil, api.Errorf(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not create user")
	}
	ctx.Set(middleware.RecordIDKey, created.ID)
	log.Info().Str("id", created.ID).Str("by", actor.ID).Msg("[users] created")
	return created, nil
}

// PUT /api/users/:id. A super admin cannot demote or deactivate themselves.
func (u *UserController) updateUser(ctx *gin.Context, actor *model.User) (any, *api.APIError) {
	id := ctx.Param("id")
	var req userpackets.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}

	existing, err := u.store.GetUserByID(ctx.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not load user")
	}

	next := existing
	next.Email = req.Email
	next.FullName = packets.Clean(req.FullName)
	if req.Role != "" {
		next.Role = model.NormalizeRole(req.Role)
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}
	next.HashedPassword = ""
	if req.Password != "" {
		if next.HashedPassword, err = middleware.HashPassword(req.Password); err != nil {
			return nil, api.Errorf(http.StatusInternalServerError, "could not hash password")
		}
	}

	if id == actor.ID && (next.Role != model.RoleSuperAdmin || !next.IsActive) {
		return nil, api.Errorf(http.StatusConflict, "you cannot demote or deactivate your own account")
	}

	updated, err := u.store.UpdateUser(ctx.Request.Context(), next)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, api.Errorf(http.StatusNotFound, "user not found")
	case errors.Is(err, db.ErrConflict):
		return nil, api.Errorf(http.StatusConflict, "email already registered")
	case err != nil:
		return nil, api.Errorf(http.StatusInternalServerError, "could not update user")
	}
	return updated, nil
}

// DELETE /api/users/:id. Deleting the caller's own account is refused.
func (u *UserController) deleteUser(ctx *gin.Context, actor *model.User) (any, *api.APIError) {
	id := ctx.Param("id")
	if id == actor.ID {
		log.Warn().Str("id", id).Msg("[users] refused self-delete")
		return nil, api.Errorf(http.StatusConflict, "you cannot delete your own account")
	}

	err := u.store.DeleteUser(ctx.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not delete user")
	}
	log.Info().Str("id", id).Str("by", actor.ID).Msg("[users] deleted")
	return nil, nil
}
