package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/content/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// CollectionController serves one content collection at /<path>.
type CollectionController[T model.Record, R packets.Request[T]] struct {
	path string
	repo db.Repo[T]
}

func newCollection[T model.Record, R packets.Request[T]](path string, repo db.Repo[T]) *CollectionController[T, R] {
	return &CollectionController[T, R]{path: path, repo: repo}
}

func (c *CollectionController[T, R]) public(ctl *api.Controller) {
	ctl.PUBLIC_GET("/"+c.path, c.list)
}

func (c *CollectionController[T, R]) private(ctl *api.Controller) {
	ctl.POST("/"+c.path, c.create)
	ctl.PUT("/"+c.path+"/:id", c.update)
	ctl.DELETE("/"+c.path+"/:id", c.remove)
}

func (c *CollectionController[T, R]) list(ctx *gin.Context) (any, *api.APIError) {
	rows, err := c.repo.List(ctx.Request.Context())
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not list "+c.path)
	}
	return rows, nil
}

func (c *CollectionController[T, R]) create(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}
	row, err := c.repo.Create(ctx.Request.Context(), req.Row(""))
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not create record")
	}
	ctx.Set(middleware.RecordIDKey, row.RecordID())
	log.Info().Str("kind", c.path).Str("id", row.RecordID()).Str("user", user.ID).Msg("[content] created")
	return row, nil
}

func (c *CollectionController[T, R]) update(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id := ctx.Param("id")
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.Errorf(http.StatusBadRequest, err.Error())
	}
	row, err := c.repo.Update(ctx.Request.Context(), req.Row(id))
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusNotFound, "not found")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not update record")
	}
	log.Info().Str("kind", c.path).Str("id", id).Str("user", user.ID).Msg("[content] updated")
	return row, nil
}

func (c *CollectionController[T, R]) remove(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id := ctx.Param("id")
	err := c.repo.Delete(ctx.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.Errorf(http.StatusNotFound, "not found")
	}
	if err != nil {
		return nil, api.Errorf(http.StatusInternalServerError, "could not delete record")
	}
	log.Info().Str("kind", c.path).Str("id", id).Str("user", user.ID).Msg("[content] deleted")
	return nil, nil
}

type collection interface {
	public(*api.Controller)
	private(*api.Controller)
}

func collections(store db.Store) []collection {
	return []collection{
		newCollection[model.Event, packets.EventRequest]("events", store.Events()),
		newCollection[model.Program, packets.ProgramRequest]("programs", store.Programs()),
		newCollection[model.Contact, packets.ContactRequest]("contacts", store.Contacts()),
		newCollection[model.GalleryItem, packets.GalleryRequest]("gallery", store.Gallery()),
		newCollection[model.FooterLink, packets.FooterLinkRequest]("footer-links", store.FooterLinks()),
	}
}

// CollectionsPublicModule mounts GET /<collection> for all five collections.
func CollectionsPublicModule(store db.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		for _, coll := range collections(store) {
			coll.public(c)
		}
	})
}

// CollectionsModule mounts POST, PUT /:id and DELETE /:id (JWT required).
func CollectionsModule(store db.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		for _, coll := range collections(store) {
			coll.private(c)
		}
	})
}
