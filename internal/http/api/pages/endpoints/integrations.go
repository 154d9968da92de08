package endpoints

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/pages/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
)

// Schedules is the venue's prayer-time source. *prayer.Provider implements it.
type Schedules interface {
	Today(ctx context.Context) (prayer.Schedule, error)
	City() string
	Venue() *time.Location
}

// NoCountdown is shown when there is nothing to count down to.
const NoCountdown = "--:--:--"

type IntegrationController struct {
	schedules Schedules
	clock     clockwork.Clock
}

func NewIntegrationController(schedules Schedules, clock clockwork.Clock) *IntegrationController {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IntegrationController{schedules: schedules, clock: clock}
}

// IntegrationsModule mounts the signage pages under /integrations.
func IntegrationsModule(ctl *IntegrationController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.HTML("/integrations/:name", ctl.serveIntegration)
	})
}

// PrayerModule mounts GET /prayer/times.
func PrayerModule(ctl *IntegrationController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/prayer/times", ctl.prayerTimes)
	})
}

func (i *IntegrationController) serveIntegration(ctx *gin.Context) {
	switch ctx.Param("name") {
	case "athan":
		i.serveAthan(ctx)
	default:
		ctx.String(http.StatusNotFound, "integration not found")
	}
}

func (i *IntegrationController) now() time.Time {
	return i.clock.Now().In(i.schedules.Venue())
}

// today returns nil when the provider fails; pages then render without times.
func (i *IntegrationController) today(ctx context.Context) prayer.Schedule {
	s, err := i.schedules.Today(ctx)
	if err != nil {
		log.Error().Err(err).Msg("[prayer] could not fetch today's schedule")
		return nil
	}
	return s
}

func (i *IntegrationController) serveAthan(ctx *gin.Context) {
	s := i.today(ctx.Request.Context())
	if s == nil {
		ctx.String(http.StatusBadGateway, "failed to get prayer times")
		return
	}
	now := i.now()
	ctx.HTML(http.StatusOK, "athan.html", prayer.AthanPage(now, i.schedules.City(), s))
}

// GET /api/prayer/times
func (i *IntegrationController) prayerTimes(ctx *gin.Context) (any, *api.APIError) {
	now := i.now()
	s := i.today(ctx.Request.Context())

	resp := packets.PrayerTimesResponse{
		City:      strings.TrimSpace(i.schedules.City()),
		Now:       now,
		Schedule:  s,
		Countdown: NoCountdown,
		Prayers:   prayer.Table(now, s),
	}
	if next, ok := prayer.Resolve(now, s); ok {
		resp.Next = &next
		resp.Countdown = prayer.Countdown(now, next.At)
	}
	return resp, nil
}
