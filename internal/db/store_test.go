package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// stores returns the in-memory store and, when TEST_DATABASE_URL is set, a
// freshly migrated Postgres store.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemoryStore()}

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		return out
	}
	ctx := context.Background()
	dbx, err := Connect(ctx, url)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(ctx, dbx, "../../migrations"))
	_, err = dbx.ExecContext(ctx, `TRUNCATE site_config, users, events, programs, contacts, gallery, footer_links`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbx.Close() })
	out["postgres"] = NewStore(dbx)
	return out
}

func TestSite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.GetSite(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			created, err := s.EnsureSite(ctx, model.DefaultSite())
			require.NoError(t, err)
			assert.True(t, created)

			created, err = s.EnsureSite(ctx, model.SiteConfig{BrandName: "other"})
			require.NoError(t, err)
			assert.False(t, created, "provisioning never overwrites")

			cfg, err := s.PatchSite(ctx, map[string]any{
				"brand_name":     "Masjid Al-Noor",
				"broadcast_date": "2024-03-01",
				"id":             42,
			})
			require.NoError(t, err)
			assert.Equal(t, 1, cfg.ID)
			assert.Equal(t, "Masjid Al-Noor", cfg.BrandName)
			assert.Equal(t, "2024-03-01", cfg.BroadcastDate)
			assert.Equal(t, model.DefaultSite().HeroHeadline, cfg.HeroHeadline)
		})
	}
}

func TestCollectionCRUD(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := s.Events()

			a, err := repo.Create(ctx, model.Event{Title: "Eid prayer", Kind: model.EventOneOff})
			require.NoError(t, err)
			assert.NotEmpty(t, a.ID)
			assert.False(t, a.CreatedAt.IsZero())

			b, err := repo.Create(ctx, model.Event{Title: "Halaqa", Kind: model.EventRecurring})
			require.NoError(t, err)

			a.Title = "Eid al-Fitr prayer"
			updated, err := repo.Update(ctx, a)
			require.NoError(t, err)
			assert.Equal(t, "Eid al-Fitr prayer", updated.Title)
			assert.WithinDuration(t, a.CreatedAt, updated.CreatedAt, 0)

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, a.ID, list[0].ID)
			assert.Equal(t, b.ID, list[1].ID)

			require.NoError(t, repo.Delete(ctx, a.ID))
			assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)
			_, err = repo.Get(ctx, a.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Update(ctx, model.Event{ID: "00000000-0000-0000-0000-000000000000", Title: "x", Kind: model.EventOneOff})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFooterLinksOrderedBySortOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, l := range []model.FooterLink{
				{Label: "Donate", URL: "/donate", SortOrder: 2},
				{Label: "Home", URL: "/", SortOrder: 1},
				{Label: "About", URL: "/about", SortOrder: 1},
			} {
				_, err := s.FooterLinks().Create(ctx, l)
				require.NoError(t, err)
			}

			list, err := s.FooterLinks().List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []string{"Home", "About", "Donate"}, []string{list[0].Label, list[1].Label, list[2].Label})
		})
	}
}

func TestUsers(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := s.CountUsers(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			u, err := s.CreateUser(ctx, model.User{
				Email: "imam@example.org", HashedPassword: "hash", FullName: "Imam", Role: "owner", IsActive: true,
			})
			require.NoError(t, err)
			assert.Equal(t, model.RoleAdmin, u.Role, "unknown roles normalise to admin")

			_, err = s.CreateUser(ctx, model.User{Email: "IMAM@example.org", HashedPassword: "hash"})
			assert.ErrorIs(t, err, ErrConflict)

			byEmail, err := s.GetUserByEmail(ctx, " Imam@Example.org ")
			require.NoError(t, err)
			assert.Equal(t, u.ID, byEmail.ID)

			u.FullName = "Imam Yusuf"
			u.Role = model.RoleSuperAdmin
			u.HashedPassword = ""
			updated, err := s.UpdateUser(ctx, u)
			require.NoError(t, err)
			assert.Equal(t, "Imam Yusuf", updated.FullName)
			assert.Equal(t, model.RoleSuperAdmin, updated.Role)
			assert.Equal(t, "hash", updated.HashedPassword, "empty hash keeps the password")

			list, err := s.ListUsers(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			require.NoError(t, s.DeleteUser(ctx, u.ID))
			_, err = s.GetUserByID(ctx, u.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)
		})
	}
}
