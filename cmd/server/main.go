package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/server"
	"github.com/Nixie-Tech-LLC/masjid/internal/mqtt"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
	"github.com/Nixie-Tech-LLC/masjid/internal/provision"
	"github.com/Nixie-Tech-LLC/masjid/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := InitStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	seed, err := provision.Load(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load seed")
	}
	if cfg.SeedAdminPassword != "" {
		seed.Admin.Password = cfg.SeedAdminPassword
	}
	if res, err := provision.Apply(ctx, store, seed); err != nil {
		log.Fatal().Err(err).Msg("failed to provision")
	} else if res.SiteCreated || res.AdminCreated {
		log.Info().Bool("site", res.SiteCreated).Bool("admin", res.AdminCreated).Msg("provisioned")
	}

	venue, _ := cfg.Venue()
	opts := []prayer.ProviderOption{
		prayer.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
	}
	if cache := InitCache(ctx, cfg); cache != nil {
		defer cache.Close()
		opts = append(opts, prayer.WithCache(cache))
	}
	provider := prayer.NewProvider(cfg.PrayerAPI, prayer.Location{
		City:    cfg.PrayerCity,
		Country: cfg.PrayerCountry,
		Method:  cfg.PrayerMethod,
	}, venue, opts...)

	deps := server.Deps{
		Store:     store,
		SecretKey: cfg.JWTSecret,
		Schedules: provider,
		Clock:     clockwork.NewRealClock(),
	}
	if cfg.MQTTBroker != "" {
		bus, err := mqtt.Connect(cfg.MQTTBroker, "masjid-server", cfg.MQTTPrefix)
		if err != nil {
			log.Error().Err(err).Msg("mqtt unavailable, content changes will not be announced")
		} else {
			defer bus.Close()
			deps.Changes = bus
		}
	}
	if deps.Templates, err = web.Templates(cfg.TemplatesPath); err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Dev() {
		r.Use(gin.Logger())
	}
	server.RegisterRoutes(r, deps)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped")
}
