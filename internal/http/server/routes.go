// Package server assembles the content API and the rendered pages on a gin
// engine.
package server

import (
	"html/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/auth/endpoints"
	contentapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/content/endpoints"
	pageapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/pages/endpoints"
	userapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/users/endpoints"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// APIPrefix is where every JSON endpoint lives.
const APIPrefix = "/api"

type Deps struct {
	Store     db.Store
	SecretKey string
	Schedules pageapi.Schedules
	// Changes is optional; without it mutations are not announced.
	Changes   middleware.ChangeNotifier
	Templates *template.Template
	Clock     clockwork.Clock
}

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Templates != nil {
		r.SetHTMLTemplate(d.Templates)
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	pages := pageapi.NewIntegrationController(d.Schedules, d.Clock)
	notify := middleware.NotifyChanges(d.Changes, APIPrefix)

	api.MountGroup(r, api.GroupConfig{
		Prefix: APIPrefix,
	},
		authapi.AuthPublicModule(d.SecretKey, d.Store),
		contentapi.SitePublicModule(d.Store),
		contentapi.CollectionsPublicModule(d.Store),
		pageapi.PrayerModule(pages),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:     APIPrefix,
		Auth:       true,
		SecretKey:  d.SecretKey,
		Users:      d.Store,
		Middleware: []gin.HandlerFunc{notify},
	},
		authapi.AuthSessionModule(d.SecretKey, d.Store),
		contentapi.SiteModule(d.Store),
		contentapi.CollectionsModule(d.Store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    APIPrefix,
		Auth:      true,
		SecretKey: d.SecretKey,
		Users:     d.Store,
		Roles:     []model.Role{model.RoleSuperAdmin},
	},
		userapi.UserModule(d.Store),
	)

	api.MountGroup(r, api.GroupConfig{},
		pageapi.HomeModule(d.Store, pages),
		pageapi.IntegrationsModule(pages),
	)
}
