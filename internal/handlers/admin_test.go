package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linkface/linkface/internal/models"
	"github.com/linkface/linkface/internal/repo"
	"github.com/linkface/linkface/internal/session"
	"github.com/linkface/linkface/internal/storage"
)

func newAdminHandler(t *testing.T, provider storage.Provider) (*AdminHandler, *gorm.DB) {
	t.Helper()
	db := InitTestDB(t)

	sessions := session.NewStore(time.Hour)
	t.Cleanup(sessions.Close)

	if provider == nil {
		provider = &fakeProvider{}
	}

	return &AdminHandler{
		Store:    repo.New(db),
		Sessions: sessions,
		Creds:    session.Credentials{Password: "test_password"},
		Storage:  provider,
		AppURL:   "http://localhost:8080",
	}, db
}

func adminContext(t *testing.T, method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	e := echo.New()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginWithPassword(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodPost, "/api/admin/auth", map[string]string{"password": "test_password"})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.NotEmpty(t, resp.Token)
	require.True(t, h.Sessions.Valid(resp.Token))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "admin_session", cookies[0].Name)
	require.Equal(t, resp.Token, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodPost, "/api/admin/auth", map[string]string{"password": "wrong"})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingCredentials(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodPost, "/api/admin/auth", map[string]string{})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWithStaticToken(t *testing.T) {
	h, _ := newAdminHandler(t, nil)
	h.Creds.Token = "static-admin-token"

	c, rec := adminContext(t, http.MethodPost, "/api/admin/auth", map[string]string{"token": "static-admin-token"})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	token, err := h.Sessions.Issue()
	require.NoError(t, err)

	c, rec := adminContext(t, http.MethodDelete, "/api/admin/auth", nil)
	c.Request().Header.Set("X-Session-Token", token)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, h.Sessions.Valid(token))
}

func TestRequireSession(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	next := func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"ok": true}) }
	gated := h.RequireSession(next)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/submissions", nil)
	require.NoError(t, gated(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = adminContext(t, http.MethodGet, "/api/admin/submissions", nil)
	c.Request().Header.Set("X-Session-Token", "forged")
	require.NoError(t, gated(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := h.Sessions.Issue()
	require.NoError(t, err)
	c, rec = adminContext(t, http.MethodGet, "/api/admin/submissions", nil)
	c.Request().AddCookie(&http.Cookie{Name: "admin_session", Value: token})
	require.NoError(t, gated(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListEmployees(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodPost, "/api/admin/employees", map[string]string{
		"name": "Referrer", "cpf": "52998224725", "email": "ref@example.com",
	})
	require.NoError(t, h.CreateEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool `json:"ok"`
		Data struct {
			Token string `json:"token"`
			Link  string `json:"link"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.NotEmpty(t, resp.Data.Token)
	require.Equal(t, "http://localhost:8080/l/"+resp.Data.Token, resp.Data.Link)

	c, rec = adminContext(t, http.MethodGet, "/api/admin/employees", nil)
	require.NoError(t, h.ListEmployees(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data []models.Employee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, resp.Data.Token, list.Data[0].Token)
}

func TestCreateEmployeeMissingFields(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodPost, "/api/admin/employees", map[string]string{"name": "No CPF"})
	require.NoError(t, h.CreateEmployee(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedSubmissions(t *testing.T, db *gorm.DB) {
	t.Helper()
	subs := []models.Submission{
		{Name: "Carlos Souza", CPF: "52998224725", PhotoPath: "/a.jpg", EmployeeToken: "tok-1", ConsentGiven: true},
		{Name: "Ana Lima", CPF: "11144477735", PhotoPath: "/b.jpg", EmployeeToken: "tok-1", ConsentGiven: true},
		{Name: "Pedro Santos", CPF: "52998224725", PhotoPath: "/c.jpg", ConsentGiven: true},
	}
	for i := range subs {
		require.NoError(t, db.Create(&subs[i]).Error)
	}
}

func TestListSubmissionsWithStats(t *testing.T) {
	h, db := newAdminHandler(t, nil)
	seedSubmissions(t, db)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/submissions", nil)
	require.NoError(t, h.ListSubmissions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK    bool                `json:"ok"`
		Data  []models.Submission `json:"data"`
		Count int                 `json:"count"`
		Stats repo.Stats          `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, 3, resp.Count)
	require.Equal(t, int64(3), resp.Stats.Total)
	require.Len(t, resp.Stats.ByEmployee, 1)
	require.Equal(t, int64(2), resp.Stats.ByEmployee[0].Count)
}

func TestListSubmissionsFilteredByToken(t *testing.T) {
	h, db := newAdminHandler(t, nil)
	seedSubmissions(t, db)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/submissions?employee_token=tok-1", nil)
	require.NoError(t, h.ListSubmissions(c))

	var resp struct {
		Data []models.Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
}

func TestSearchSubmissionsViaSQL(t *testing.T) {
	h, db := newAdminHandler(t, nil)
	seedSubmissions(t, db)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/submissions?search=111444", nil)
	require.NoError(t, h.ListSubmissions(c))

	var resp struct {
		Data []models.Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Ana Lima", resp.Data[0].Name)
}

func TestExportCSV(t *testing.T) {
	h, db := newAdminHandler(t, nil)
	seedSubmissions(t, db)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/export?format=csv", nil)
	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "CPF")
	require.Contains(t, rec.Body.String(), "Carlos Souza")
}

func TestExportJSON(t *testing.T) {
	h, db := newAdminHandler(t, nil)
	seedSubmissions(t, db)

	c, rec := adminContext(t, http.MethodGet, "/api/admin/export", nil)
	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK    bool                `json:"ok"`
		Data  []models.Submission `json:"data"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, 3, resp.Count)
}

func TestPhotoStreamsLocalFile(t *testing.T) {
	h, db := newAdminHandler(t, nil)

	path := filepath.Join(t.TempDir(), "photo.png")
	content := []byte("png bytes")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sub := models.Submission{Name: "x", CPF: "52998224725", PhotoPath: path, ConsentGiven: true}
	require.NoError(t, db.Create(&sub).Error)

	c, rec := adminContext(t, http.MethodGet, "/api/photos/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Photo(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, content, rec.Body.Bytes())
	require.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}

func TestPhotoRedirectsForURLBackedStorage(t *testing.T) {
	provider := &fakeProvider{url: "https://cdn.example.com/photo.jpg"}
	h, db := newAdminHandler(t, provider)

	sub := models.Submission{
		Name: "x", CPF: "52998224725",
		PhotoPath:     "https://cdn.example.com/photo.jpg",
		StorageFileID: "photos/photo.jpg",
		ConsentGiven:  true,
	}
	require.NoError(t, db.Create(&sub).Error)

	c, rec := adminContext(t, http.MethodGet, "/api/photos/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Photo(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://cdn.example.com/photo.jpg", rec.Header().Get(echo.HeaderLocation))
}

func TestPhotoNotFound(t *testing.T) {
	h, _ := newAdminHandler(t, nil)

	c, rec := adminContext(t, http.MethodGet, "/api/photos/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Photo(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = adminContext(t, http.MethodGet, "/api/photos/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Photo(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
