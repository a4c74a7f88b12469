package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/linkface/linkface/internal/models"
	"github.com/linkface/linkface/internal/repo"
	"github.com/linkface/linkface/internal/search"
	"github.com/linkface/linkface/internal/session"
	"github.com/linkface/linkface/internal/storage"
	"github.com/linkface/linkface/internal/util"
)

const sessionCookie = "admin_session"

type AdminHandler struct {
	Store    *repo.Store
	Sessions *session.Store
	Creds    session.Credentials
	Storage  storage.Provider
	AppURL   string
	ES       *elasticsearch.Client
	ESIndex  string
	Log      *slog.Logger
}

func (h *AdminHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func newSessionCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req struct {
		Password string `json:"password"`
		Token    string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "malformed request body"})
	}

	if req.Password == "" && req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "password or token is required"})
	}

	if !h.Creds.Verify(req.Password, req.Token) {
		h.logger().Warn("invalid admin login attempt",
			"has_password", req.Password != "",
			"has_token", req.Token != "")
		return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "invalid credentials"})
	}

	token, err := h.Sessions.Issue()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not create session"})
	}

	c.SetCookie(newSessionCookie(token, h.Sessions.TTL()))
	h.logger().Info("admin login")

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "token": token})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	if token := sessionToken(c); token != "" {
		h.Sessions.Revoke(token)
	}
	c.SetCookie(newSessionCookie("", -time.Second))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func sessionToken(c echo.Context) string {
	if header := c.Request().Header.Get("X-Session-Token"); header != "" {
		return header
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireSession gates admin routes on a valid session credential supplied
// via cookie or explicit header.
func (h *AdminHandler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := sessionToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "not authenticated"})
		}
		if !h.Sessions.Valid(token) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "invalid or expired session"})
		}
		return next(c)
	}
}

func (h *AdminHandler) ListEmployees(c echo.Context) error {
	employees, err := h.Store.ListEmployees()
	if err != nil {
		h.logger().Error("employee list error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not list employees"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": employees})
}

func (h *AdminHandler) CreateEmployee(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		CPF   string `json:"cpf"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "malformed request body"})
	}
	if req.Name == "" || req.CPF == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "name and cpf are required"})
	}

	employee := &models.Employee{
		Name:  req.Name,
		CPF:   req.CPF,
		Phone: req.Phone,
		Email: req.Email,
		Token: uuid.NewString(),
	}
	if err := h.Store.CreateEmployee(employee); err != nil {
		h.logger().Error("employee create error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not create employee"})
	}

	h.logger().Info("employee created", "employee_id", employee.ID, "token_prefix", employee.Token[:8])

	return c.JSON(http.StatusOK, echo.Map{
		"ok": true,
		"data": echo.Map{
			"id":    employee.ID,
			"name":  employee.Name,
			"cpf":   employee.CPF,
			"phone": employee.Phone,
			"email": employee.Email,
			"token": employee.Token,
			"link":  h.AppURL + "/l/" + employee.Token,
		},
	})
}

func (h *AdminHandler) ListSubmissions(c echo.Context) error {
	limit, offset := util.Calculate(
		parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	if term := c.QueryParam("search"); term != "" {
		if h.ES != nil {
			total, results, err := search.Search(c.Request().Context(), h.ES, h.ESIndex, term, offset, limit)
			if err == nil {
				return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": results, "count": total})
			}
			h.logger().Error("elasticsearch search error, falling back to sql", "error", err)
		}
		results, err := h.Store.SearchSubmissions(term, limit)
		if err != nil {
			h.logger().Error("submission search error", "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not search submissions"})
		}
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "data": results, "count": len(results)})
	}

	submissions, err := h.Store.ListSubmissions(limit, offset, c.QueryParam("employee_token"))
	if err != nil {
		h.logger().Error("submission list error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not list submissions"})
	}

	stats, err := h.Store.SubmissionStats()
	if err != nil {
		h.logger().Error("submission stats error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not compute stats"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":    true,
		"data":  submissions,
		"count": len(submissions),
		"stats": stats,
	})
}

const exportLimit = 10000

func (h *AdminHandler) Export(c echo.Context) error {
	submissions, err := h.Store.ListSubmissions(exportLimit, 0, c.QueryParam("employee_token"))
	if err != nil {
		h.logger().Error("export query error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "could not export submissions"})
	}

	if c.QueryParam("format") != "csv" {
		return c.JSON(http.StatusOK, echo.Map{
			"ok":          true,
			"data":        submissions,
			"count":       len(submissions),
			"exported_at": time.Now().UTC().Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="submissions-%d.csv"`, time.Now().UnixMilli()))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"ID", "Name", "CPF", "Employee Token", "Photo Path", "Consent", "Created At"}); err != nil {
		return err
	}
	for _, s := range submissions {
		consent := "no"
		if s.ConsentGiven {
			consent = "yes"
		}
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.Name,
			s.CPF,
			s.EmployeeToken,
			s.PhotoPath,
			consent,
			s.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Photo redirects to the public URL for URL-backed storage and streams the
// file for path-backed storage.
func (h *AdminHandler) Photo(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid id"})
	}

	sub, err := h.Store.GetSubmissionByID(uint(id))
	if err != nil {
		h.logger().Error("submission lookup error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "internal error"})
	}
	if sub == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "submission not found"})
	}

	if url := h.Storage.PhotoURL(sub.StorageFileID, sub.PhotoPath); url != "" {
		return c.Redirect(http.StatusFound, url)
	}

	if sub.PhotoPath != "" {
		if _, statErr := os.Stat(sub.PhotoPath); statErr == nil {
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			c.Response().Header().Set(echo.HeaderContentType, mimeByExtension(sub.PhotoPath))
			return c.File(sub.PhotoPath)
		}
	}

	return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "photo not found"})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func mimeByExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
