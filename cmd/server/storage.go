package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/redis"
)

// InitStore opens the configured store: Postgres with pending migrations
// applied, or the in-process store for DATABASE_URL=memory.
func InitStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	if cfg.DatabaseURL == config.MemoryDatabase {
		log.Warn().Msg("using in-memory store; content is lost on restart")
		return db.NewMemoryStore(), nil
	}

	dbx, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db init: %w", err)
	}
	if err := db.RunMigrations(ctx, dbx, cfg.MigrationsPath); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db.NewStore(dbx), nil
}

// InitCache connects to redis when REDIS_ADDRESS is set. Without it, or when
// redis is unreachable, the prayer provider runs on its in-process cache only.
func InitCache(ctx context.Context, cfg *config.Config) *redis.Cache {
	if cfg.RedisAddress == "" {
		return nil
	}
	cache := redis.New(redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword), cfg.RedisPrefix)
	if err := cache.Ping(ctx); err != nil {
		log.Error().Err(err).Str("address", cfg.RedisAddress).Msg("redis unreachable, continuing without it")
		cache.Close()
		return nil
	}
	log.Info().Str("address", cfg.RedisAddress).Msg("connected to redis")
	return cache
}
