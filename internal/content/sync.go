package content

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/masjid/internal/client"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/session"
)

var (
	// ErrSelfDelete is returned, before any request, when the signed-in
	// user tries to delete their own account.
	ErrSelfDelete = errors.New("content: cannot delete the signed-in user")
	// ErrClosed is returned when a response arrives after Close.
	ErrClosed = errors.New("content: controller closed")
	// ErrUnknownRecord is returned when an update targets an id that is not held locally.
	ErrUnknownRecord = errors.New("content: no such record")
)

// API is the content API as seen by the controller. *client.Client implements it.
type API interface {
	Login(ctx context.Context, email, password string) (string, model.AuthUser, error)
	GetSite(ctx context.Context) (model.SiteConfig, bool, error)
	PutSite(ctx context.Context, patch map[string]any) (model.SiteConfig, error)
	List(ctx context.Context, resource string, out any) error
	Create(ctx context.Context, resource string, payload, out any) (bool, error)
	Update(ctx context.Context, resource, id string, payload, out any) (bool, error)
	Delete(ctx context.Context, resource, id string) error
}

var _ API = (*client.Client)(nil)

// Kind names a record kind; it doubles as the API resource path.
type Kind string

const (
	KindSite        Kind = "content/site"
	KindEvents      Kind = "events"
	KindPrograms    Kind = "programs"
	KindContacts    Kind = "contacts"
	KindGallery     Kind = "gallery"
	KindFooterLinks Kind = "footer-links"
	KindUsers       Kind = "users"
)

// Phase is the per-kind mutation state.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Applied
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type ControllerOption func(*Controller)

// WithSiteCache sets where ReloadAll persists the fetched site document.
func WithSiteCache(c SiteCache) ControllerOption { return func(ctl *Controller) { ctl.cache = c } }

func WithNotifier(n *Notifier) ControllerOption { return func(ctl *Controller) { ctl.notices = n } }

// WithTransitionHook observes every phase change.
func WithTransitionHook(fn func(kind Kind, from, to Phase)) ControllerOption {
	return func(ctl *Controller) { ctl.onTransition = fn }
}

// Controller applies admin mutations through the API and reconciles the
// Store from the server's answer. State is only touched after the server
// confirms; a failed request leaves it as it was and shows a notice.
// Concurrent mutations are not ordered: the last response to arrive wins.
type Controller struct {
	api     API
	store   *Store
	session *session.Session
	cache   SiteCache
	notices *Notifier

	// applyMu serialises state writes against Close.
	applyMu sync.Mutex
	closed  bool

	phaseMu      sync.Mutex
	phases       map[Kind]Phase
	onTransition func(kind Kind, from, to Phase)

	events      *Resource[model.Event]
	programs    *Resource[model.Program]
	contacts    *Resource[model.Contact]
	gallery     *Resource[model.GalleryItem]
	footerLinks *Resource[model.FooterLink]
	users       *Resource[model.User]
}

func NewController(api API, store *Store, sess *session.Session, opts ...ControllerOption) *Controller {
	if sess == nil {
		sess = session.New()
	}
	c := &Controller{
		api:     api,
		store:   store,
		session: sess,
		phases:  make(map[Kind]Phase),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notices == nil {
		c.notices = NewNotifier(nil, nil)
	}

	c.events = newResource(c, KindEvents, store.Events(), "Event")
	c.programs = newResource(c, KindPrograms, store.Programs(), "Program")
	c.contacts = newResource(c, KindContacts, store.Contacts(), "Contact")
	c.gallery = newResource(c, KindGallery, store.Gallery(), "Photo")
	c.footerLinks = newResource(c, KindFooterLinks, store.FooterLinks(), "Link")
	c.users = newResource(c, KindUsers, store.Users(), "User")
	return c
}

func (c *Controller) Events() *Resource[model.Event]           { return c.events }
func (c *Controller) Programs() *Resource[model.Program]       { return c.programs }
func (c *Controller) Contacts() *Resource[model.Contact]       { return c.contacts }
func (c *Controller) Gallery() *Resource[model.GalleryItem]    { return c.gallery }
func (c *Controller) FooterLinks() *Resource[model.FooterLink] { return c.footerLinks }
func (c *Controller) Users() *Resource[model.User]             { return c.users }

func (c *Controller) Store() *Store             { return c.store }
func (c *Controller) Notices() *Notifier        { return c.notices }
func (c *Controller) Session() *session.Session { return c.session }

// Phase reports the current phase of kind.
func (c *Controller) Phase(kind Kind) Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phases[kind]
}

// Close tears the controller down: responses still in flight are discarded,
// pending notices are dropped and the session is cleared.
func (c *Controller) Close() {
	c.applyMu.Lock()
	c.closed = true
	c.applyMu.Unlock()
	c.notices.Close()
	c.session.Clear()
}

// apply runs fn unless the controller has been closed.
func (c *Controller) apply(fn func()) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	fn()
	return nil
}

func (c *Controller) transition(kind Kind, to Phase) {
	c.phaseMu.Lock()
	from := c.phases[kind]
	c.phases[kind] = to
	hook := c.onTransition
	c.phaseMu.Unlock()
	if hook != nil && from != to {
		hook(kind, from, to)
	}
}

// finish settles a mutation: Applied or Failed, a notice, then back to Idle.
func (c *Controller) finish(kind Kind, err error, success string) error {
	switch {
	case errors.Is(err, ErrClosed):
		c.transition(kind, Idle)
	case err != nil:
		log.Error().Err(err).Str("kind", string(kind)).Msg("[content] mutation failed")
		c.transition(kind, Failed)
		c.notices.Show(client.Message(err))
		c.transition(kind, Idle)
	default:
		c.transition(kind, Applied)
		c.notices.Show(success)
		c.transition(kind, Idle)
	}
	return err
}

// Login signs in, stores the identity on the session and reloads content.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	token, user, err := c.api.Login(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("[content] login failed")
		c.notices.Show(client.Message(err))
		return err
	}
	if err := c.apply(func() { c.session.Set(token, user) }); err != nil {
		return err
	}
	c.notices.Show("Logged in.")

	if err := c.ReloadAll(ctx); err != nil {
		return err
	}
	return c.RefreshUsers(ctx)
}

func (c *Controller) Logout() {
	c.session.Clear()
	c.store.Users().Replace(nil)
}

// SaveSite sends an allow-listed partial update of the site document. Keys
// outside model.SiteEditableFields are dropped before the request. The
// result replaces the in-memory document but is not written to the cache.
func (c *Controller) SaveSite(ctx context.Context, patch map[string]any) error {
	body := model.FilterSitePatch(patch)

	c.transition(KindSite, Submitting)
	row, err := c.api.PutSite(ctx, body)
	if err == nil {
		err = c.apply(func() { c.store.SetSite(row) })
	}
	return c.finish(KindSite, err, "Saved.")
}

// ReloadAll fetches the site document and the five public collections in
// parallel. Either everything is applied or nothing is. A fetched site
// document is written to the site cache.
func (c *Controller) ReloadAll(ctx context.Context) error {
	var (
		site        model.SiteConfig
		hasSite     bool
		events      []model.Event
		programs    []model.Program
		contacts    []model.Contact
		gallery     []model.GalleryItem
		footerLinks []model.FooterLink
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		site, hasSite, err = c.api.GetSite(gctx)
		return err
	})
	g.Go(func() error { return c.api.List(gctx, string(KindEvents), &events) })
	g.Go(func() error { return c.api.List(gctx, string(KindPrograms), &programs) })
	g.Go(func() error { return c.api.List(gctx, string(KindContacts), &contacts) })
	g.Go(func() error { return c.api.List(gctx, string(KindGallery), &gallery) })
	g.Go(func() error { return c.api.List(gctx, string(KindFooterLinks), &footerLinks) })
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("[content] reload failed")
		c.notices.Show(client.Message(err))
		return err
	}

	err := c.apply(func() {
		if hasSite {
			c.store.SetSite(site)
		}
		c.store.Events().Replace(events)
		c.store.Programs().Replace(programs)
		c.store.Contacts().Replace(contacts)
		c.store.Gallery().Replace(gallery)
		c.store.FooterLinks().Replace(footerLinks)
	})
	if err != nil {
		return err
	}

	if hasSite && c.cache != nil {
		raw, err := json.Marshal(site)
		if err == nil {
			err = c.cache.Save(ctx, raw)
		}
		if err != nil {
			log.Warn().Err(err).Msg("[content] could not write site cache")
		}
	}
	return nil
}

// RefreshUsers reloads the user list. Only super admins may see it; for
// anyone else it is a no-op.
func (c *Controller) RefreshUsers(ctx context.Context) error {
	if !c.session.IsSuperAdmin() {
		return nil
	}
	var users []model.User
	if err := c.api.List(ctx, string(KindUsers), &users); err != nil {
		log.Error().Err(err).Msg("[content] could not list users")
		c.notices.Show(client.Message(err))
		return err
	}
	return c.apply(func() { c.store.Users().Replace(users) })
}
