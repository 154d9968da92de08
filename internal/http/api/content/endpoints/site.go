package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/content/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type SiteController struct {
	store db.Store
}

// SitePublicModule mounts GET /content/site.
func SitePublicModule(store db.Store) api.Module {
	ctl := &SiteController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/content/site", ctl.getSite)
	})
}

// SiteModule mounts PUT /content/site (JWT required).
func SiteModule(store db.Store) api.Module {
	ctl := &SiteController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUT("/content/site", ctl.patchSite)
	})
}

// GET /api/content/site. Before provisioning there is no document; the
// response is ok with no data.
func (s *SiteController) getSite(ctx *gin.Context) (any, *api.APIError) {
	cfg, err := s.store.GetSite(ctx.Request.Context())
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not load site config")
	}
	return cfg, nil
}

// PUT /api/content/site with a partial document. Keys outside the
// allow-list are dropped.
func (s *SiteController) patchSite(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var raw map[string]any
	if err := ctx.ShouldBindJSON(&raw); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}
	patch, ok := packets.SitePatch(raw)
	if !ok {
		return nil, api.Errorf(http.StatusBadRequest, "site fields must be strings")
	}

	cfg, err := s.store.PatchSite(ctx.Request.Context(), patch)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusNotFound, "site config not provisioned")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not save site config")
	}
	log.Info().Str("user", user.ID).Int("fields", len(patch)).Msg("[site] updated")
	return cfg, nil
}
