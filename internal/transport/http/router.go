package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/linkface/linkface/internal/handlers"
)

type Deps struct {
	SubmissionHandler *handlers.SubmissionHandler
	AdminHandler      *handlers.AdminHandler
	HealthHandler     *handlers.HealthHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/api/health", d.HealthHandler.Health)

	e.POST("/api/submissions", d.SubmissionHandler.Submit)

	admin := e.Group("/api/admin")
	admin.POST("/auth", d.AdminHandler.Login)
	admin.DELETE("/auth", d.AdminHandler.Logout)

	gated := admin.Group("", d.AdminHandler.RequireSession)
	gated.GET("/employees", d.AdminHandler.ListEmployees)
	gated.POST("/employees", d.AdminHandler.CreateEmployee)
	gated.GET("/submissions", d.AdminHandler.ListSubmissions)
	gated.GET("/export", d.AdminHandler.Export)

	e.GET("/api/photos/:id", d.AdminHandler.Photo, d.AdminHandler.RequireSession)
}
