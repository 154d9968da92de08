package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const siteID = 1

var siteColumns = []string{
	"id", "brand_name", "brand_subtitle", "brand_est", "brand_address", "brand_email", "brand_phone",
	"logo_url", "hero_headline", "hero_body", "hero_image_url", "hero_image_fallback_url",
	"live_video_url", "fallback_video_url", "broadcast_name", "broadcast_date", "broadcast_time",
	"about_text", "donations_title", "donations_body", "donations_details",
}

// GetSite fetches the singleton row. Returns ErrNotFound before provisioning.
func (s *pgStore) GetSite(ctx context.Context) (model.SiteConfig, error) {
	var cfg model.SiteConfig
	query, args, err := psql.Select(siteColumns...).From("site_config").Where(sq.Eq{"id": siteID}).ToSql()
	if err != nil {
		return cfg, err
	}
	if err := s.db.GetContext(ctx, &cfg, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cfg, ErrNotFound
		}
		log.Error().Err(err).Msg("failed to get site config")
		return cfg, err
	}
	return cfg, nil
}

// EnsureSite inserts defaults as the singleton row unless one exists.
func (s *pgStore) EnsureSite(ctx context.Context, defaults model.SiteConfig) (bool, error) {
	defaults.ID = siteID
	query := fmt.Sprintf(
		"INSERT INTO site_config (%s) VALUES (:%s) ON CONFLICT (id) DO NOTHING",
		strings.Join(siteColumns, ", "), strings.Join(siteColumns, ", :"),
	)
	res, err := s.db.NamedExecContext(ctx, query, defaults)
	if err != nil {
		log.Error().Err(err).Msg("failed to provision site config")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PatchSite updates only the given columns. Callers filter keys against
// model.SiteEditableFields; anything else is rejected here as well.
func (s *pgStore) PatchSite(ctx context.Context, patch map[string]any) (model.SiteConfig, error) {
	clean := model.FilterSitePatch(patch)
	if len(clean) == 0 {
		return s.GetSite(ctx)
	}

	query, args, err := psql.Update("site_config").
		SetMap(clean).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": siteID}).
		Suffix("RETURNING " + strings.Join(siteColumns, ", ")).
		ToSql()
	if err != nil {
		return model.SiteConfig{}, err
	}

	var cfg model.SiteConfig
	if err := s.db.GetContext(ctx, &cfg, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cfg, ErrNotFound
		}
		log.Error().Err(err).Msg("failed to patch site config")
		return cfg, err
	}
	return cfg, nil
}
