package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/config"
	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coursesInfo = core.ResourceInfo{Key: "courses", Group: "Educación", Label: "Cursos", Path: "/dashboard/courses"}

// fakeData serves one in-memory resource.
type fakeData struct {
	mu      sync.Mutex
	deleted [][]string
	audits  []core.AuditLogParams
}

func (f *fakeData) ListResources() []core.ResourceInfo { return []core.ResourceInfo{coursesInfo} }

func (f *fakeData) ListResourcesByGroup() map[string][]core.ResourceInfo {
	return map[string][]core.ResourceInfo{coursesInfo.Group: {coursesInfo}}
}

func (f *fakeData) Counts(context.Context) []core.ResourceCount {
	return []core.ResourceCount{{Info: coursesInfo, Count: 3}}
}

func (f *fakeData) Rows(_ context.Context, key string) (*core.RowSet, error) {
	if key != "courses" {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownResource, key)
	}
	return &core.RowSet{
		Resource: coursesInfo,
		Columns: []datatable.Column[datatable.Record]{
			{ID: "id", Header: "ID", DisableFilter: true},
			{ID: "title", Header: "Título"},
			{ID: "price", Header: "Precio", Kind: datatable.KindNumber},
		},
		Rows: []datatable.Record{
			{"id": "1", "title": "Inglés básico", "price": 120.0},
			{"id": "2", "title": "Francés", "price": 80.0},
			{"id": "3", "title": "Inglés avanzado", "price": 200.0},
		},
		FetchedAt: time.Now(),
	}, nil
}

func (f *fakeData) DeleteMany(_ context.Context, key string, ids []string) (core.DeleteResult, error) {
	if key != "courses" {
		return core.DeleteResult{}, fmt.Errorf("%w: %s", core.ErrUnknownResource, key)
	}
	if len(ids) == 0 {
		return core.DeleteResult{Error: "No se seleccionó ningún registro"}, nil
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, ids)
	f.mu.Unlock()
	if len(ids) == 1 {
		return core.DeleteResult{Success: "Se eliminó 1 registro", Deleted: 1}, nil
	}
	return core.DeleteResult{Success: fmt.Sprintf("Se eliminaron %d registros", len(ids)), Deleted: int64(len(ids))}, nil
}

func (f *fakeData) LogAudit(_ context.Context, p core.AuditLogParams) (*core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, p)
	return &core.AuditEntry{Action: p.Action}, nil
}

func (f *fakeData) ListAudit(context.Context, core.AuditLogFilter) ([]core.AuditEntry, error) {
	return []core.AuditEntry{{Action: core.ActionRowDelete, ResourceKey: "courses", RowsAffected: 2, CreatedAt: time.Now()}}, nil
}

type fakeAuthn map[string]string

func (f fakeAuthn) Authenticate(_ context.Context, email, password string) (*auth.User, error) {
	if pw, ok := f[email]; ok && pw == password {
		return &auth.User{ID: "u1", Email: email, Active: true}, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Table:  config.TableConfig{PageSize: 10, MaxPageSize: 50, SuggestionLimit: 100},
		Auth: config.AuthConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			SessionTTL:      time.Hour,
			CookieName:      "sess",
			LoginPath:       "/auth/login",
			DefaultRedirect: "/dashboard",
		},
	}
}

type testEnv struct {
	srv    *Server
	data   *fakeData
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	data := &fakeData{}
	srv := NewServer(ctx, testConfig(), data, fakeAuthn{"admin@crefinex.com": "s3creta"})

	token, expires, err := srv.sessions.Issue(auth.User{ID: "u1", Email: "admin@crefinex.com"})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.sessions.SetCookie(rec, token, expires)

	return &testEnv{srv: srv, data: data, cookie: rec.Result().Cookies()[0]}
}

func (e *testEnv) do(req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	if signedIn {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestGuard_RedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/courses?page=2", nil), false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?callbackUrl=%2Fdashboard%2Fcourses%3Fpage%3D2", rec.Header().Get("Location"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/resources/courses/rows", nil), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKey_WithoutSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}
	env := &testEnv{srv: NewServer(ctx, cfg, &fakeData{}, fakeAuthn{}), data: &fakeData{}}

	req := httptest.NewRequest(http.MethodGet, "/api/resources/courses/rows", nil)
	req.Header.Set("X-API-Key", "k1")
	rec := env.do(req, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body RowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.TotalCount)

	req = httptest.NewRequest(http.MethodGet, "/api/resources/courses/rows", nil)
	req.Header.Set("X-API-Key", "bad")
	rec = env.do(req, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A key never opens the HTML pages.
	req = httptest.NewRequest(http.MethodGet, "/dashboard/courses", nil)
	req.Header.Set("X-API-Key", "k1")
	rec = env.do(req, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "3 registros")
	assert.Contains(t, body, "Educación")
	assert.Contains(t, body, "admin@crefinex.com")
}

func TestTableView_SortAndFilter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/courses?sort=price&dir=desc", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	grid := body[strings.Index(body, "<tbody>"):]
	adv, basic, fr := strings.Index(grid, "Inglés avanzado"), strings.Index(grid, "Inglés básico"), strings.Index(grid, "Francés")
	assert.True(t, adv < basic && basic < fr, "rows not in price desc order")
	assert.Contains(t, body, `aria-sort="descending"`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/dashboard/courses?min%5Bprice%5D=100", nil), true)
	body = rec.Body.String()
	assert.NotContains(t, body, `data-id="2"`)
	assert.Contains(t, body, "2 de 3 registros")
}

func TestTableView_HTMXPartial(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/courses?q=franc", nil)
	req.Header.Set("HX-Request", "true")
	rec := env.do(req, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `data-id="2"`)
	assert.NotContains(t, body, `data-id="1"`)
}

func TestTableView_UnknownResource(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/teachers", nil), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TBL001")
}

func TestRowsAPI(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/resources/courses/rows?size=2&sort=title", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 2, resp.PageCount)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "2", resp.Rows[0].ID, "Francés sorts first")
	assert.Equal(t, "Francés", resp.Rows[0].Cells["title"])

	require.Contains(t, resp.Facets, "price")
	require.NotNil(t, resp.Facets["price"].Min)
	assert.Equal(t, 80.0, *resp.Facets["price"].Min)
	assert.NotContains(t, resp.Facets, "id")
	assert.Len(t, resp.Facets["title"].Suggestions, 3)
}

func TestDeleteAPI(t *testing.T) {
	env := newTestEnv(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/resources/courses/delete", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return env.do(req, true)
	}

	rec := post(`{"ids":["1","3"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res core.DeleteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Se eliminaron 2 registros", res.Success)
	assert.Empty(t, res.Error)

	rec = post(`{"ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = core.DeleteResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "No se seleccionó ningún registro", res.Error)

	rec = post(`{"ids":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/resources/teachers/delete", strings.NewReader(`{"ids":["1"]}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusNotFound, env.do(req, true).Code)

	assert.Equal(t, [][]string{{"1", "3"}}, env.data.deleted)
}

func TestDeleteHTMX_DropsMissingIDs(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"ids": {"1", "99"}}
	req := httptest.NewRequest(http.MethodPost, "/api/resources/courses/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := env.do(req, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "table-refresh", rec.Header().Get("HX-Trigger"))
	assert.Contains(t, rec.Body.String(), "Se eliminó 1 registro")
	assert.Contains(t, rec.Body.String(), `data-variant="success"`)
	assert.Equal(t, [][]string{{"1"}}, env.data.deleted)

	form = url.Values{"ids": {"99"}}
	req = httptest.NewRequest(http.MethodPost, "/api/resources/courses/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec = env.do(req, true)
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
	assert.Contains(t, rec.Body.String(), "No se seleccionó ningún registro")
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/resources/courses/export?filter%5Bprice%5D=100..&sort=price&hide=id", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "courses_")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Título", "Precio"}, records[0])
	assert.Equal(t, "Inglés básico", records[1][0])
	assert.Equal(t, "Inglés avanzado", records[2][0])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	login := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return env.do(req, false)
	}

	t.Run("success sets cookie and follows callback", func(t *testing.T) {
		rec := login(url.Values{"email": {"admin@crefinex.com"}, "password": {"s3creta"}, "callbackUrl": {"/dashboard/courses"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/courses", rec.Header().Get("Location"))
		require.NotEmpty(t, rec.Result().Cookies())
		assert.Equal(t, "sess", rec.Result().Cookies()[0].Name)
	})

	t.Run("external callback is ignored", func(t *testing.T) {
		rec := login(url.Values{"email": {"admin@crefinex.com"}, "password": {"s3creta"}, "callbackUrl": {"https://evil.example"}})
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := login(url.Values{"email": {"admin@crefinex.com"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), core.MapError(auth.ErrInvalidCredentials).Message)
	})

	t.Run("field validation", func(t *testing.T) {
		rec := login(url.Values{"email": {"nope"}, "password": {"  "}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Contraseña requerida")
		assert.Contains(t, rec.Body.String(), "Correo electrónico inválido")
	})

	var actions []core.AuditAction
	for _, a := range env.data.audits {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, core.ActionLogin)
	assert.Contains(t, actions, core.ActionLoginFailed)
}

func TestLogin_SignedInRedirectsAway(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/login", nil), true)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), true)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
	require.Len(t, env.data.audits, 1)
	assert.Equal(t, core.ActionLogout, env.data.audits[0].Action)
}

func TestAuditLogPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/audit-log?resource=courses", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Eliminación")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/audit", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"row_delete"`)
}
