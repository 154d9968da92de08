package db

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// MemoryStore keeps everything in process. It backs tests and
// DATABASE_URL=memory; data is lost on exit.
type MemoryStore struct {
	now func() time.Time

	mu      sync.RWMutex
	site    *model.SiteConfig
	users   []model.User
	emailIx map[string]string

	events      *memRepo[model.Event, *model.Event]
	programs    *memRepo[model.Program, *model.Program]
	contacts    *memRepo[model.Contact, *model.Contact]
	gallery     *memRepo[model.GalleryItem, *model.GalleryItem]
	footerLinks *memRepo[model.FooterLink, *model.FooterLink]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	now := func() time.Time { return time.Now().UTC() }
	return &MemoryStore{
		now:         now,
		emailIx:     make(map[string]string),
		events:      newMemRepo[model.Event](now, nil),
		programs:    newMemRepo[model.Program](now, nil),
		contacts:    newMemRepo[model.Contact](now, nil),
		gallery:     newMemRepo[model.GalleryItem](now, nil),
		footerLinks: newMemRepo[model.FooterLink](now, func(a, b model.FooterLink) bool { return a.SortOrder < b.SortOrder }),
	}
}

func (m *MemoryStore) Events() Repo[model.Event]           { return m.events }
func (m *MemoryStore) Programs() Repo[model.Program]       { return m.programs }
func (m *MemoryStore) Contacts() Repo[model.Contact]       { return m.contacts }
func (m *MemoryStore) Gallery() Repo[model.GalleryItem]    { return m.gallery }
func (m *MemoryStore) FooterLinks() Repo[model.FooterLink] { return m.footerLinks }

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }

func (m *MemoryStore) GetSite(context.Context) (model.SiteConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.site == nil {
		return model.SiteConfig{}, ErrNotFound
	}
	return *m.site, nil
}

func (m *MemoryStore) EnsureSite(_ context.Context, defaults model.SiteConfig) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.site != nil {
		return false, nil
	}
	defaults.ID = siteID
	m.site = &defaults
	return true, nil
}

// PatchSite applies the allow-listed keys by round-tripping through the
// JSON field names, which double as column names.
func (m *MemoryStore) PatchSite(_ context.Context, patch map[string]any) (model.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.site == nil {
		return model.SiteConfig{}, ErrNotFound
	}
	raw, err := json.Marshal(model.FilterSitePatch(patch))
	if err != nil {
		return model.SiteConfig{}, err
	}
	next := *m.site
	if err := json.Unmarshal(raw, &next); err != nil {
		return model.SiteConfig{}, err
	}
	next.ID = siteID
	m.site = &next
	return next, nil
}

func (m *MemoryStore) ListUsers(context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.User{}, m.users...), nil
}

func (m *MemoryStore) CountUsers(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.userIndex(id); i >= 0 {
		return m.users[i], nil
	}
	return model.User{}, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.RLock()
	id, ok := m.emailIx[emailKey(email)]
	m.mu.RUnlock()
	if !ok {
		return model.User{}, ErrNotFound
	}
	return m.GetUserByID(ctx, id)
}

func (m *MemoryStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := emailKey(u.Email)
	if _, taken := m.emailIx[key]; taken {
		return model.User{}, ErrConflict
	}
	u.Identify(uuid.NewString(), m.now())
	u.Email = strings.TrimSpace(u.Email)
	u.Role = model.NormalizeRole(u.Role)
	u.Password = ""
	m.users = append(m.users, u)
	m.emailIx[key] = u.ID
	return u, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.userIndex(u.ID)
	if i < 0 {
		return model.User{}, ErrNotFound
	}
	cur := m.users[i]
	newKey, oldKey := emailKey(u.Email), emailKey(cur.Email)
	if owner, taken := m.emailIx[newKey]; taken && owner != cur.ID {
		return model.User{}, ErrConflict
	}

	cur.Email = strings.TrimSpace(u.Email)
	cur.FullName = u.FullName
	cur.Role = model.NormalizeRole(u.Role)
	cur.IsActive = u.IsActive
	if u.HashedPassword != "" {
		cur.HashedPassword = u.HashedPassword
	}
	cur.UpdatedAt = m.now()

	delete(m.emailIx, oldKey)
	m.emailIx[newKey] = cur.ID
	m.users[i] = cur
	return cur, nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.userIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	delete(m.emailIx, emailKey(m.users[i].Email))
	m.users = append(m.users[:i], m.users[i+1:]...)
	return nil
}

func (m *MemoryStore) userIndex(id string) int {
	for i, u := range m.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// memRepo keeps rows in creation order; less, when set, gives the list order
// (stable, so ties stay in creation order).
type memRepo[T any, P record[T]] struct {
	now  func() time.Time
	less func(a, b T) bool

	mu      sync.RWMutex
	rows    []T
	created map[string]time.Time
}

func newMemRepo[T any, P record[T]](now func() time.Time, less func(a, b T) bool) *memRepo[T, P] {
	return &memRepo[T, P]{now: now, less: less, created: make(map[string]time.Time)}
}

func (r *memRepo[T, P]) List(context.Context) ([]T, error) {
	r.mu.RLock()
	out := append([]T{}, r.rows...)
	r.mu.RUnlock()
	if r.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return r.less(out[i], out[j]) })
	}
	return out, nil
}

func (r *memRepo[T, P]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.rows[i], nil
	}
	var zero T
	return zero, ErrNotFound
}

func (r *memRepo[T, P]) Create(_ context.Context, row T) (T, error) {
	id, at := uuid.NewString(), r.now()
	P(&row).Identify(id, at)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	r.created[id] = at
	return row, nil
}

func (r *memRepo[T, P]) Update(_ context.Context, row T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := P(&row).RecordID()
	i := r.index(id)
	if i < 0 {
		var zero T
		return zero, ErrNotFound
	}
	P(&row).Identify(id, r.created[id])
	r.rows[i] = row
	return row, nil
}

func (r *memRepo[T, P]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return ErrNotFound
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	delete(r.created, id)
	return nil
}

func (r *memRepo[T, P]) index(id string) int {
	for i := range r.rows {
		if P(&r.rows[i]).RecordID() == id {
			return i
		}
	}
	return -1
}
