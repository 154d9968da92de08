// Command display drives one signage screen from the content API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/client"
	"github.com/Nixie-Tech-LLC/masjid/internal/clock"
	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/content"
	"github.com/Nixie-Tech-LLC/masjid/internal/display"
	"github.com/Nixie-Tech-LLC/masjid/internal/mqtt"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
	"github.com/Nixie-Tech-LLC/masjid/internal/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.SetupLogging()
	venue, err := cfg.Venue()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// Site cache: shared redis when configured, else a file next to the binary.
	var cache content.SiteCache = content.NewFileCache(cfg.CacheDir)
	var opts []prayer.ProviderOption
	if cfg.RedisAddress != "" {
		rc := redis.New(redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword), cfg.RedisPrefix)
		if err := rc.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("redis unreachable, using the file cache")
		} else {
			defer rc.Close()
			cache = rc
			opts = append(opts, prayer.WithCache(rc))
		}
	}

	store := content.NewStore()
	store.Warm(ctx, cache)

	api := client.New(cfg.APIBaseURL, nil)
	api.SetTimeout(cfg.UpstreamTimeout)
	ctl := content.NewController(api, store, api.Session(), content.WithSiteCache(cache))

	provider := prayer.NewProvider(cfg.PrayerAPI, prayer.Location{
		City:    cfg.PrayerCity,
		Country: cfg.PrayerCountry,
		Method:  cfg.PrayerMethod,
	}, venue, append(opts, prayer.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}))...)

	boardOpts := []display.Option{display.WithVenue(venue)}
	var bus *mqtt.Bus
	if cfg.MQTTBroker != "" {
		if bus, err = mqtt.Connect(cfg.MQTTBroker, "masjid-display-"+cfg.DisplayName, cfg.MQTTPrefix); err != nil {
			log.Error().Err(err).Msg("mqtt unavailable, frames go to the log and content is not live-updated")
			bus = nil
		} else {
			defer bus.Close()
			boardOpts = append(boardOpts, display.WithPublisher(display.MQTTPublisher{Bus: bus}))
		}
	}

	board := display.New(cfg.DisplayName, store, ctl, provider, clock.New(clockwork.NewRealClock()), boardOpts...)
	if bus != nil {
		if err := bus.SubscribeContent(func(ev mqtt.ContentChanged) {
			log.Debug().Str("kind", ev.Kind).Str("op", ev.Op).Msg("content changed")
			board.ContentChanged()
		}); err != nil {
			log.Error().Err(err).Msg("could not subscribe to content changes")
		}
	}

	// first load
	board.ContentChanged()

	log.Info().Str("display", cfg.DisplayName).Str("api", cfg.APIBaseURL).Msg("display running")
	if err := board.Run(ctx); err != nil {
		log.Error().Err(err).Msg("display stopped")
	}
}
