package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/mqtt"
)

const secret = "test-secret"

type users map[string]model.User

func (u users) GetUserByID(_ context.Context, id string) (model.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return model.User{}, errors.New("no such user")
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func init() { gin.SetMode(gin.TestMode) }

func newRouter(store users, roles ...model.Role) *gin.Engine {
	r := gin.New()
	g := r.Group("/", JWTMiddleware(secret, store, abort))
	if len(roles) > 0 {
		g.Use(RequireRole(abort, roles...))
	}
	g.GET("/me", func(c *gin.Context) {
		u, ok := GetCurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, u.ID)
	})
	return r
}

func get(t *testing.T, r http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestJWTMiddleware(t *testing.T) {
	admin := model.User{ID: "u1", Role: model.RoleAdmin, IsActive: true}
	disabled := model.User{ID: "u2", Role: model.RoleAdmin}
	r := newRouter(users{"u1": admin, "u2": disabled})

	token, err := GenerateJWT(admin, secret)
	require.NoError(t, err)
	w := get(t, r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "garbage").Code)

	forged, err := GenerateJWT(admin, "other-secret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, forged).Code)

	ghost, err := GenerateJWT(model.User{ID: "nobody"}, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, ghost).Code)

	off, err := GenerateJWT(disabled, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(t, r, off).Code)
}

func TestRequireRole(t *testing.T) {
	admin := model.User{ID: "u1", Role: model.RoleAdmin, IsActive: true}
	super := model.User{ID: "u2", Role: model.RoleSuperAdmin, IsActive: true}
	r := newRouter(users{"u1": admin, "u2": super}, model.RoleSuperAdmin)

	tok, _ := GenerateJWT(admin, secret)
	assert.Equal(t, http.StatusForbidden, get(t, r, tok).Code)

	tok, _ = GenerateJWT(super, secret)
	assert.Equal(t, http.StatusOK, get(t, r, tok).Code)
}

type recordingNotifier struct{ events []mqtt.ContentChanged }

func (n *recordingNotifier) NotifyContentChanged(_ context.Context, ev mqtt.ContentChanged) {
	n.events = append(n.events, ev)
}

func TestNotifyChanges(t *testing.T) {
	n := &recordingNotifier{}
	r := gin.New()
	g := r.Group("/api", NotifyChanges(n, "/api"))
	g.POST("/events", func(c *gin.Context) {
		c.Set(RecordIDKey, "new-id")
		c.Status(http.StatusOK)
	})
	g.PUT("/events/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	g.DELETE("/footer-links/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.PUT("/content/site", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, rq := range []struct{ method, path string }{
		{http.MethodPost, "/api/events"},
		{http.MethodPut, "/api/events/x"},
		{http.MethodDelete, "/api/footer-links/f1"},
		{http.MethodPut, "/api/content/site"},
		{http.MethodGet, "/api/events"},
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(rq.method, rq.path, strings.NewReader("")))
	}

	require.Len(t, n.events, 3)
	assert.Equal(t, mqtt.ContentChanged{Kind: "events", ID: "new-id", Op: "create"}, n.events[0])
	assert.Equal(t, mqtt.ContentChanged{Kind: "footer-links", ID: "f1", Op: "delete"}, n.events[1])
	assert.Equal(t, "site", n.events[2].Kind)
}
