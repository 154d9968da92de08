// Package provision seeds a fresh database: the site document and the first
// super admin. It never overwrites existing data.
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

var ErrWeakPassword = errors.New("provision: admin password must be at least 8 characters")

type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

// Seed is the provisioning file. Site fields it omits keep their defaults.
type Seed struct {
	Site  model.SiteConfig `yaml:"site"`
	Admin Admin            `yaml:"admin"`
}

type Result struct {
	SiteCreated  bool
	AdminCreated bool
}

func Parse(data []byte) (Seed, error) {
	seed := Seed{Site: model.DefaultSite()}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}
	seed.Site.ID = 1
	return seed, nil
}

// Load reads the seed at path. A missing file yields the defaults and no admin.
func Load(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("[provision] no seed file, using defaults")
		return Parse(nil)
	}
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply creates the site row if absent and the admin if there are no users.
func Apply(ctx context.Context, store db.Store, seed Seed) (Result, error) {
	var res Result

	created, err := store.EnsureSite(ctx, seed.Site)
	if err != nil {
		return res, fmt.Errorf("failed to provision site: %w", err)
	}
	res.SiteCreated = created

	if strings.TrimSpace(seed.Admin.Email) == "" {
		return res, nil
	}
	n, err := store.CountUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return res, nil
	}
	if len(seed.Admin.Password) < 8 {
		return res, ErrWeakPassword
	}

	hash, err := middleware.HashPassword(seed.Admin.Password)
	if err != nil {
		return res, fmt.Errorf("failed to hash admin password: %w", err)
	}
	user, err := store.CreateUser(ctx, model.User{
		Email:          seed.Admin.Email,
		HashedPassword: hash,
		FullName:       seed.Admin.FullName,
		Role:           model.RoleSuperAdmin,
		IsActive:       true,
	})
	if err != nil {
		return res, fmt.Errorf("failed to create admin: %w", err)
	}
	res.AdminCreated = true
	log.Info().Str("id", user.ID).Str("email", user.Email).Msg("[provision] created super admin")
	return res, nil
}
