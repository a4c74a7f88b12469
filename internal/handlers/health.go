package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB          *gorm.DB
	StorageKind string
	Version     string
}

func (h *HealthHandler) Health(c echo.Context) error {
	database := "connected"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.Ping() != nil {
		database = "unreachable"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
		"storage":   h.StorageKind,
		"version":   h.Version,
	})
}
