// Package content keeps the in-memory copy of the site's content and keeps
// it consistent with the content API.
package content

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// Store is the client-side copy of everything the content API serves.
// The API is the source of truth; Store is only written from confirmed
// responses (and, once at startup, from the site cache).
type Store struct {
	mu        sync.RWMutex
	site      model.SiteConfig
	siteReady bool

	events      *Collection[model.Event]
	programs    *Collection[model.Program]
	contacts    *Collection[model.Contact]
	gallery     *Collection[model.GalleryItem]
	footerLinks *Collection[model.FooterLink]
	users       *Collection[model.User]
}

func NewStore() *Store {
	return &Store{
		site:        model.DefaultSite(),
		events:      NewCollection[model.Event](),
		programs:    NewCollection[model.Program](),
		contacts:    NewCollection[model.Contact](),
		gallery:     NewCollection[model.GalleryItem](),
		footerLinks: NewCollection[model.FooterLink](),
		users:       NewCollection[model.User](),
	}
}

// Site returns the current document and whether it came from the server
// (or the cache) rather than the built-in defaults.
func (s *Store) Site() (model.SiteConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site, s.siteReady
}

func (s *Store) SetSite(cfg model.SiteConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = cfg
	s.siteReady = true
}

func (s *Store) Events() *Collection[model.Event]           { return s.events }
func (s *Store) Programs() *Collection[model.Program]       { return s.programs }
func (s *Store) Contacts() *Collection[model.Contact]       { return s.contacts }
func (s *Store) Gallery() *Collection[model.GalleryItem]    { return s.gallery }
func (s *Store) FooterLinks() *Collection[model.FooterLink] { return s.footerLinks }
func (s *Store) Users() *Collection[model.User]             { return s.users }

// SortedFooterLinks orders footer links by sort_order, ties kept in
// received order.
func (s *Store) SortedFooterLinks() []model.FooterLink {
	links := s.footerLinks.Items()
	sort.SliceStable(links, func(i, j int) bool { return links[i].SortOrder < links[j].SortOrder })
	return links
}

// Warm lays a cached site document over the defaults for first paint. It is
// called once at startup; a missing or unreadable cache leaves the defaults.
func (s *Store) Warm(ctx context.Context, cache SiteCache) {
	if cache == nil {
		return
	}
	raw, err := cache.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[content] could not read site cache")
		return
	}
	if len(raw) == 0 {
		return
	}

	cfg := model.DefaultSite()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Warn().Err(err).Msg("[content] ignoring corrupt site cache")
		return
	}
	s.SetSite(cfg)
}
