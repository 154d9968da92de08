package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/session"
)

func TestClient_BearerAndEnvelope(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/events", r.URL.Path)
		w.Write([]byte(`{"ok":true,"data":[{"id":"a","title":"X"}]}`))
	}))
	defer srv.Close()

	sess := session.New()
	sess.Set("tok", model.AuthUser{ID: "u1"})
	c := New(srv.URL+"/api/", sess)

	var events []model.Event
	require.NoError(t, c.List(context.Background(), "events", &events))
	assert.Equal(t, "Bearer tok", auth)
	require.Len(t, events, 1)
	assert.Equal(t, "X", events[0].Title)
}

func TestClient_NotOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"title is required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Create(context.Background(), "events", map[string]string{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotOK)
	assert.Equal(t, "title is required", Message(err))
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"error":"forbidden"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, nil).Delete(context.Background(), "users", "u1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "forbidden", Message(err))
}

func TestClient_TimeoutIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	c.SetTimeout(20 * time.Millisecond)
	err := c.List(context.Background(), "events", nil)
	assert.ErrorIs(t, err, ErrNotOK)
	assert.Equal(t, "Request failed", Message(err))
}

func TestClient_CreateWithoutRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jumuah", body["title"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out model.Event
	got, err := New(srv.URL, nil).Create(context.Background(), "events", model.Event{Title: "Jumuah"}, &out)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"ok":true,"data":{"token":"t","user":{"id":"u1","email":"a@b.c","name":"A","role":"super_admin"}}}`))
	}))
	defer srv.Close()

	token, user, err := New(srv.URL, nil).Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t", token)
	assert.Equal(t, model.RoleSuperAdmin, user.Role)
}
