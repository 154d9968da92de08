package endpoints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/pages/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
)

type HomeController struct {
	store      db.Store
	integrator *IntegrationController
}

// HomeModule mounts the server-rendered home page at "/".
func HomeModule(store db.Store, ic *IntegrationController) api.Module {
	ctl := &HomeController{store: store, integrator: ic}
	return api.ModuleFunc(func(c *api.Controller) {
		c.HTML("/", ctl.serveHome)
	})
}

func (h *HomeController) serveHome(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "home.html", h.page(ctx.Request.Context()))
}

// page never fails: a section whose fetch fails is logged and left empty,
// and the site falls back to the defaults.
func (h *HomeController) page(ctx context.Context) packets.HomePage {
	now := h.integrator.now()
	page := packets.HomePage{Site: model.DefaultSite(), Countdown: NoCountdown, Year: now.Year()}

	var g errgroup.Group
	g.Go(func() error {
		site, err := h.store.GetSite(ctx)
		switch {
		case err == nil:
			page.Site = site
		case !errors.Is(err, db.ErrNotFound):
			log.Error().Err(err).Msg("[home] could not load site, using defaults")
		}
		return nil
	})
	g.Go(func() error { page.Events = section(ctx, "events", h.store.Events()); return nil })
	g.Go(func() error { page.Programs = section(ctx, "programs", h.store.Programs()); return nil })
	g.Go(func() error { page.Contacts = section(ctx, "contacts", h.store.Contacts()); return nil })
	g.Go(func() error { page.Gallery = section(ctx, "gallery", h.store.Gallery()); return nil })
	g.Go(func() error { page.FooterLinks = section(ctx, "footer links", h.store.FooterLinks()); return nil })

	var schedule prayer.Schedule
	g.Go(func() error { schedule = h.integrator.today(ctx); return nil })
	_ = g.Wait()

	page.Prayers = prayer.Table(now, schedule)
	if next, ok := prayer.Resolve(now, schedule); ok {
		page.NextName = string(next.Key)
		page.Countdown = prayer.Countdown(now, next.At)
	}
	page.Broadcast = broadcast(page.Site, now)
	return page
}

func section[T any](ctx context.Context, name string, repo db.Repo[T]) []T {
	rows, err := repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Str("section", name).Msg("[home] could not load section")
		return nil
	}
	return rows
}

// broadcast is nil unless the site names a parseable broadcast instant.
func broadcast(site model.SiteConfig, now time.Time) *prayer.Broadcast {
	bc, ok := prayer.ScheduledBroadcast(site, now, now.Location())
	if !ok {
		return nil
	}
	return &bc
}
