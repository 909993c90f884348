package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testManager() *Manager {
	return NewManager(ManagerConfig{Secret: testSecret, TTL: time.Hour, CookieName: "sess"})
}

var admin = User{ID: "u1", Email: "admin@crefinex.com", Name: "Admin", Roles: []string{"ADMIN"}, Active: true}

func TestManager_IssueParse(t *testing.T) {
	m := testManager()

	token, expires, err := m.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@crefinex.com", claims.Email)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)
}

func TestManager_ParseRejects(t *testing.T) {
	m := testManager()
	other := NewManager(ManagerConfig{Secret: "another-secret-another-secret-xx"})
	forged, _, err := other.Issue(admin)
	require.NoError(t, err)

	expired := testManager()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue(admin)
	require.NoError(t, err)

	_, err = m.Parse("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.Parse(forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.Parse(stale)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "AUTH002", core.MapError(err).Code)
}

func TestManager_Cookies(t *testing.T) {
	m := testManager()
	token, expires, err := m.Issue(admin)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetCookie(rec, token, expires)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sess", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	claims, err := m.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, claims.Email)

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

type memStore map[string]*User

func (s memStore) UserByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, ErrInvalidCredentials
}

func TestAuthenticator(t *testing.T) {
	hash, err := HashPassword("s3creta")
	require.NoError(t, err)

	active := admin
	active.PasswordHash = hash
	inactive := active
	inactive.Email = "old@crefinex.com"
	inactive.Active = false

	a := NewAuthenticator(memStore{active.Email: &active, inactive.Email: &inactive})

	u, err := a.Authenticate(context.Background(), " admin@crefinex.com ", "s3creta")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	tests := map[string][2]string{
		"wrong password": {"admin@crefinex.com", "nope"},
		"unknown email":  {"who@crefinex.com", "s3creta"},
		"inactive":       {"old@crefinex.com", "s3creta"},
		"blank":          {"", ""},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), in[0], in[1])
			assert.True(t, errors.Is(err, ErrInvalidCredentials), "got %v", err)
		})
	}
}

func TestRoutes_Decide(t *testing.T) {
	rt := DefaultRoutes()

	tests := []struct {
		name     string
		path     string
		query    string
		loggedIn bool
		want     string
	}{
		{"api auth passes anonymous", "/api/auth/session", "", false, ""},
		{"login page anonymous", "/auth/login", "", false, ""},
		{"login page signed in", "/auth/login", "", true, "/dashboard"},
		{"public anonymous", "/healthz", "", false, ""},
		{"private signed in", "/dashboard/courses", "", true, ""},
		{"private anonymous", "/dashboard/courses", "", false, "/auth/login?callbackUrl=%2Fdashboard%2Fcourses"},
		{"private anonymous with query", "/dashboard/books", "page=2&q=a b", false,
			"/auth/login?callbackUrl=%2Fdashboard%2Fbooks%3Fpage%3D2%26q%3Da+b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rt.Decide(tt.path, tt.query, tt.loggedIn).Redirect)
		})
	}
}

func TestSafeCallback(t *testing.T) {
	assert.Equal(t, "/dashboard/books?page=2", SafeCallback("/dashboard/books?page=2", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeCallback("https://evil.example", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeCallback("//evil.example", "/dashboard"))
	assert.Equal(t, "/dashboard", SafeCallback("", "/dashboard"))
}

func TestGuard(t *testing.T) {
	m := testManager()
	token, expires, err := m.Issue(admin)
	require.NoError(t, err)

	var seenUser string
	h := Guard(m, DefaultRoutes())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = core.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous page redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/courses?page=2", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login?callbackUrl=%2Fdashboard%2Fcourses%3Fpage%3D2", rec.Header().Get("Location"))
	})

	t.Run("anonymous htmx request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/courses", nil)
		req.Header.Set("HX-Request", "true")
		h.ServeHTTP(rec, req)
		assert.Equal(t, "/auth/login?callbackUrl=%2Fdashboard%2Fcourses", rec.Header().Get("HX-Redirect"))
	})

	t.Run("anonymous api is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resources/courses/delete", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "AUTH003")
	})

	t.Run("signed in passes with user in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/courses", nil)
		m.SetCookie(rec, token, expires)
		req.AddCookie(rec.Result().Cookies()[0])

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "admin@crefinex.com", seenUser)
	})
}
