package content

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/client"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/session"
)

// fakeAPI serves canned rows and records every call it receives.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	site     model.SiteConfig
	lists    map[string]any
	rows     map[string]any // returned by create/update; absent means no row
	failures map[string]error
	putBody  map[string]any

	// gate, when set, blocks a mutation until it is closed.
	gate chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		site:     model.DefaultSite(),
		lists:    map[string]any{},
		rows:     map[string]any{},
		failures: map[string]error{},
	}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.failures[call]
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func copyJSON(src, dst any) {
	raw, _ := json.Marshal(src)
	_ = json.Unmarshal(raw, dst)
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (string, model.AuthUser, error) {
	if err := f.record("login"); err != nil {
		return "", model.AuthUser{}, err
	}
	return "tok", model.AuthUser{ID: "u1", Email: email, Role: model.RoleSuperAdmin}, nil
}

func (f *fakeAPI) GetSite(context.Context) (model.SiteConfig, bool, error) {
	if err := f.record("GET site"); err != nil {
		return model.SiteConfig{}, false, err
	}
	return f.site, true, nil
}

func (f *fakeAPI) PutSite(_ context.Context, patch map[string]any) (model.SiteConfig, error) {
	if err := f.record("PUT site"); err != nil {
		return model.SiteConfig{}, err
	}
	f.mu.Lock()
	f.putBody = patch
	f.mu.Unlock()
	out := f.site
	copyJSON(patch, &out)
	return out, nil
}

func (f *fakeAPI) List(_ context.Context, resource string, out any) error {
	if err := f.record("GET " + resource); err != nil {
		return err
	}
	f.mu.Lock()
	src := f.lists[resource]
	f.mu.Unlock()
	if src != nil {
		copyJSON(src, out)
	}
	return nil
}

func (f *fakeAPI) Create(_ context.Context, resource string, _, out any) (bool, error) {
	if err := f.record("POST " + resource); err != nil {
		return false, err
	}
	f.mu.Lock()
	row, ok := f.rows[resource]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	copyJSON(row, out)
	return true, nil
}

func (f *fakeAPI) Update(_ context.Context, resource, id string, _, out any) (bool, error) {
	if err := f.record("PUT " + resource + "/" + id); err != nil {
		return false, err
	}
	f.mu.Lock()
	row, ok := f.rows[resource]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	copyJSON(row, out)
	return true, nil
}

func (f *fakeAPI) Delete(_ context.Context, resource, id string) error {
	return f.record("DELETE " + resource + "/" + id)
}

func newTestController(t *testing.T, api *fakeAPI, opts ...ControllerOption) *Controller {
	t.Helper()
	opts = append([]ControllerOption{WithNotifier(NewNotifier(clockwork.NewFakeClock(), nil))}, opts...)
	ctl := NewController(api, NewStore(), session.New(), opts...)
	t.Cleanup(ctl.Close)
	return ctl
}

func TestUpdateSplicesReturnedRowInPlace(t *testing.T) {
	api := newFakeAPI()
	api.rows["events"] = model.Event{ID: "a", Title: "Z"}
	ctl := newTestController(t, api)
	ctl.Store().Events().Replace([]model.Event{{ID: "a", Title: "X"}, {ID: "b", Title: "Y"}})

	err := ctl.Events().Update(context.Background(), "a", func(e *model.Event) { e.Title = "Z" })
	require.NoError(t, err)

	assert.Equal(t, []string{"a:Z", "b:Y"}, titles(ctl.Events().Items()))
	assert.Equal(t, []string{"PUT events/a"}, api.Calls())
	assert.Equal(t, "Event updated.", ctl.Notices().Current())
}

func TestUpdateWithoutReturnedRowRefetches(t *testing.T) {
	api := newFakeAPI()
	api.lists["programs"] = []model.Program{{ID: "p1", Title: "Quran"}, {ID: "p2", Title: "Arabic"}}
	ctl := newTestController(t, api)
	ctl.Store().Programs().Replace([]model.Program{{ID: "p1", Title: "Old"}})

	err := ctl.Programs().Update(context.Background(), "p1", func(p *model.Program) { p.Title = "Quran" })
	require.NoError(t, err)

	assert.Equal(t, []string{"PUT programs/p1", "GET programs"}, api.Calls())
	assert.Len(t, ctl.Programs().Items(), 2)
}

func TestUpdateUnknownRecordIssuesNoRequest(t *testing.T) {
	api := newFakeAPI()
	ctl := newTestController(t, api)

	err := ctl.Contacts().Update(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownRecord)
	assert.Empty(t, api.Calls())
}

func TestCreateTakesServerRow(t *testing.T) {
	api := newFakeAPI()
	api.rows["gallery"] = model.GalleryItem{ID: "srv-1", Title: "Eid"}
	ctl := newTestController(t, api)

	require.NoError(t, ctl.Gallery().Create(context.Background(), model.GalleryItem{Title: "Eid"}))

	items := ctl.Gallery().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "srv-1", items[0].ID)
	assert.Equal(t, []string{"POST gallery"}, api.Calls())
}

func TestCreateWithoutRowRefetches(t *testing.T) {
	api := newFakeAPI()
	api.lists["footer-links"] = []model.FooterLink{{ID: "f1", Label: "Home"}}
	ctl := newTestController(t, api)

	require.NoError(t, ctl.FooterLinks().Create(context.Background(), model.FooterLink{Label: "Home"}))

	assert.Equal(t, []string{"POST footer-links", "GET footer-links"}, api.Calls())
	require.Len(t, ctl.FooterLinks().Items(), 1)
	assert.Equal(t, "f1", ctl.FooterLinks().Items()[0].ID)
}

func TestFailedMutationLeavesStateUnchanged(t *testing.T) {
	api := newFakeAPI()
	api.failures["PUT events/a"] = &client.Error{Status: 500, Message: "Database error"}
	api.failures["DELETE events/b"] = &client.Error{Status: 500, Message: "Database error"}
	var transitions []Phase
	ctl := newTestController(t, api, WithTransitionHook(func(kind Kind, _, to Phase) {
		if kind == KindEvents {
			transitions = append(transitions, to)
		}
	}))
	before := []model.Event{{ID: "a", Title: "X"}, {ID: "b", Title: "Y"}}
	ctl.Store().Events().Replace(before)

	err := ctl.Events().Update(context.Background(), "a", func(e *model.Event) { e.Title = "Z" })
	assert.ErrorIs(t, err, client.ErrNotOK)
	err = ctl.Events().Delete(context.Background(), "b")
	assert.Error(t, err)

	assert.Equal(t, before, ctl.Events().Items())
	assert.Equal(t, "Database error", ctl.Notices().Current())
	assert.Equal(t, []Phase{Submitting, Failed, Idle, Submitting, Failed, Idle}, transitions)
	assert.Equal(t, Idle, ctl.Phase(KindEvents))
}

func TestDeleteRemovesLocally(t *testing.T) {
	api := newFakeAPI()
	ctl := newTestController(t, api)
	ctl.Store().Events().Replace([]model.Event{{ID: "a"}, {ID: "b"}})

	require.NoError(t, ctl.Events().Delete(context.Background(), "a"))

	assert.Equal(t, []string{"b:"}, titles(ctl.Events().Items()))
	assert.Equal(t, []string{"DELETE events/a"}, api.Calls())
}

func TestSelfDeleteIssuesNoRequest(t *testing.T) {
	api := newFakeAPI()
	ctl := newTestController(t, api)
	ctl.Session().Set("tok", model.AuthUser{ID: "me", Role: model.RoleSuperAdmin})
	users := []model.User{{ID: "me", Email: "me@example.org"}, {ID: "other"}}
	ctl.Store().Users().Replace(users)

	err := ctl.Users().Delete(context.Background(), "me")
	assert.ErrorIs(t, err, ErrSelfDelete)
	assert.Empty(t, api.Calls())
	assert.Equal(t, users, ctl.Users().Items())

	require.NoError(t, ctl.Users().Delete(context.Background(), "other"))
	assert.Equal(t, []string{"DELETE users/other"}, api.Calls())
}

func TestSaveSiteSendsOnlyAllowListedKeys(t *testing.T) {
	api := newFakeAPI()
	cache := &memSiteCache{}
	ctl := newTestController(t, api, WithSiteCache(cache))

	err := ctl.SaveSite(context.Background(), map[string]any{
		"brand_name": "Masjid Al-Noor",
		"id":         99,
		"is_admin":   true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"brand_name": "Masjid Al-Noor"}, api.putBody)
	site, ready := ctl.Store().Site()
	assert.True(t, ready)
	assert.Equal(t, "Masjid Al-Noor", site.BrandName)
	assert.Zero(t, cache.saves, "partial saves never write the cache")
}

func TestReloadAllAppliesEverythingAndWritesCache(t *testing.T) {
	api := newFakeAPI()
	api.site.BrandName = "From server"
	api.lists["events"] = []model.Event{{ID: "e1"}}
	api.lists["contacts"] = []model.Contact{{ID: "c1"}, {ID: "c2"}}
	cache := &memSiteCache{}
	ctl := newTestController(t, api, WithSiteCache(cache))

	require.NoError(t, ctl.ReloadAll(context.Background()))

	site, _ := ctl.Store().Site()
	assert.Equal(t, "From server", site.BrandName)
	assert.Len(t, ctl.Events().Items(), 1)
	assert.Len(t, ctl.Contacts().Items(), 2)
	assert.Equal(t, 1, cache.saves)
	assert.Contains(t, string(cache.raw), "From server")
	assert.ElementsMatch(t, []string{
		"GET site", "GET events", "GET programs", "GET contacts", "GET gallery", "GET footer-links",
	}, api.Calls())
}

func TestReloadAllIsAllOrNothing(t *testing.T) {
	api := newFakeAPI()
	api.site.BrandName = "From server"
	api.lists["events"] = []model.Event{{ID: "e1"}}
	api.failures["GET gallery"] = errors.New("boom")
	cache := &memSiteCache{}
	ctl := newTestController(t, api, WithSiteCache(cache))

	require.Error(t, ctl.ReloadAll(context.Background()))

	_, ready := ctl.Store().Site()
	assert.False(t, ready)
	assert.Empty(t, ctl.Events().Items())
	assert.Zero(t, cache.saves)
	assert.Equal(t, "Request failed", ctl.Notices().Current())
}

func TestLoginReloadsAndLoadsUsersForSuperAdmin(t *testing.T) {
	api := newFakeAPI()
	api.lists["users"] = []model.User{{ID: "u1"}, {ID: "u2"}}
	ctl := newTestController(t, api)

	require.NoError(t, ctl.Login(context.Background(), "admin@example.org", "secret"))

	assert.True(t, ctl.Session().IsSuperAdmin())
	assert.Len(t, ctl.Users().Items(), 2)
	assert.Contains(t, api.Calls(), "GET users")

	ctl.Logout()
	assert.False(t, ctl.Session().Authenticated())
	assert.Empty(t, ctl.Users().Items())
}

func TestRefreshUsersSkippedForAdmins(t *testing.T) {
	api := newFakeAPI()
	ctl := newTestController(t, api)
	ctl.Session().Set("tok", model.AuthUser{ID: "u9", Role: model.RoleAdmin})

	require.NoError(t, ctl.RefreshUsers(context.Background()))
	assert.Empty(t, api.Calls())
}

func TestLateCompletionAfterCloseIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.rows["events"] = model.Event{ID: "a", Title: "late"}
	api.gate = make(chan struct{})
	ctl := NewController(api, NewStore(), session.New(), WithNotifier(NewNotifier(clockwork.NewFakeClock(), nil)))
	ctl.Store().Events().Replace([]model.Event{{ID: "a", Title: "X"}})

	done := make(chan error, 1)
	go func() {
		done <- ctl.Events().Update(context.Background(), "a", func(e *model.Event) { e.Title = "late" })
	}()

	require.Eventually(t, func() bool { return len(api.Calls()) == 1 }, time.Second, time.Millisecond)
	ctl.Close()
	close(api.gate)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, []string{"a:X"}, titles(ctl.Store().Events().Items()))
	assert.Equal(t, "", ctl.Notices().Current())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "applied", Applied.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Phase(4).String())
	assert.Equal(t, "unknown", Phase(-1).String())
}
