// Package db persists the site document, the content collections and the
// admin users.
package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// Repo is CRUD over one content collection. Create assigns the id;
// Update replaces every writable field of the row with the same id.
type Repo[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, row T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Store is everything the API server persists.
type Store interface {
	// site document
	GetSite(ctx context.Context) (model.SiteConfig, error)
	EnsureSite(ctx context.Context, defaults model.SiteConfig) (created bool, err error)
	PatchSite(ctx context.Context, patch map[string]any) (model.SiteConfig, error)

	// content collections
	Events() Repo[model.Event]
	Programs() Repo[model.Program]
	Contacts() Repo[model.Contact]
	Gallery() Repo[model.GalleryItem]
	FooterLinks() Repo[model.FooterLink]

	// users
	ListUsers(ctx context.Context) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	// UpdateUser writes email, full name, role and active flag; the
	// password hash only when u.HashedPassword is set.
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}

// record is a collection row the store can assign identity to.
type record[T any] interface {
	*T
	RecordID() string
	Identify(id string, created time.Time)
}

type pgStore struct {
	db *sqlx.DB

	events      Repo[model.Event]
	programs    Repo[model.Program]
	contacts    Repo[model.Contact]
	gallery     Repo[model.GalleryItem]
	footerLinks Repo[model.FooterLink]
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(dbx *sqlx.DB) Store {
	return &pgStore{
		db:          dbx,
		events:      newPgRepo[model.Event](dbx, eventsTable),
		programs:    newPgRepo[model.Program](dbx, programsTable),
		contacts:    newPgRepo[model.Contact](dbx, contactsTable),
		gallery:     newPgRepo[model.GalleryItem](dbx, galleryTable),
		footerLinks: newPgRepo[model.FooterLink](dbx, footerLinksTable),
	}
}

func (s *pgStore) Events() Repo[model.Event]           { return s.events }
func (s *pgStore) Programs() Repo[model.Program]       { return s.programs }
func (s *pgStore) Contacts() Repo[model.Contact]       { return s.contacts }
func (s *pgStore) Gallery() Repo[model.GalleryItem]    { return s.gallery }
func (s *pgStore) FooterLinks() Repo[model.FooterLink] { return s.footerLinks }

func (s *pgStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *pgStore) Close() error                   { return s.db.Close() }
