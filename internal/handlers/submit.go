package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/linkface/linkface/internal/cpf"
	"github.com/linkface/linkface/internal/imaging"
	"github.com/linkface/linkface/internal/models"
	"github.com/linkface/linkface/internal/notify"
	"github.com/linkface/linkface/internal/ratelimit"
	"github.com/linkface/linkface/internal/repo"
	"github.com/linkface/linkface/internal/search"
	"github.com/linkface/linkface/internal/storage"
	"github.com/linkface/linkface/internal/util"
)

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

type SubmissionHandler struct {
	Store      *repo.Store
	Limiter    *ratelimit.Limiter
	Storage    storage.Provider
	Validator  *imaging.Validator
	Compressor *imaging.Compressor
	Notifier   *notify.Notifier
	ES         *elasticsearch.Client
	ESIndex    string
	Log        *slog.Logger
}

type submitRequest struct {
	Token           string `json:"token"`
	Name            string `json:"name"`
	CPF             string `json:"cpf"`
	PhotoDataURL    string `json:"photoDataUrl"`
	ConsentAccepted bool   `json:"consentAccepted"`
}

func (h *SubmissionHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// Submit runs the whole intake pipeline in order: rate limit, cheap field
// checks, referral token resolution, photo decode, image validation,
// best-effort compression, upload, persist, async notification. Nothing is
// persisted before a successful upload.
func (h *SubmissionHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "malformed request body"})
	}

	identifier := req.Token
	if identifier == "" {
		identifier = c.RealIP()
	}

	decision := h.Limiter.Allow(identifier)
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(h.Limiter.Max()))
	c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetTime.Unix(), 10))
	if !decision.Allowed {
		retryAfter := int(time.Until(decision.ResetTime).Seconds()) + 1
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"ok":         false,
			"error":      "too many requests, try again later",
			"retryAfter": retryAfter,
		})
	}

	if req.Name == "" || req.CPF == "" || req.PhotoDataURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "missing required fields"})
	}
	if !req.ConsentAccepted {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "consent is required"})
	}
	if !cpf.Valid(req.CPF) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"ok": false, "error": "invalid CPF"})
	}

	var employee *models.Employee
	if req.Token != "" {
		var err error
		employee, err = h.Store.FindEmployeeByToken(req.Token)
		if err != nil {
			h.logger().Error("employee lookup error", "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "internal error"})
		}
		if employee == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "token not found"})
		}
	}

	match := dataURLPattern.FindStringSubmatch(req.PhotoDataURL)
	if match == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid photo payload"})
	}
	mimeType := match[1]
	encoded := match[2]

	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid photo payload"})
	}

	if res := h.Validator.Validate(len(encoded), mimeType, buf); !res.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": res.Error})
	}

	compressed := h.Compressor.Compress(buf, mimeType)
	if compressed.Ratio < 1 {
		h.logger().Info("photo compressed",
			"original_size", compressed.OriginalSize,
			"compressed_size", compressed.CompressedSize)
	}

	fileName := fmt.Sprintf("%s_%s_%d%s",
		uuid.NewString(),
		util.SanitizeFileName(req.Name),
		time.Now().UnixMilli(),
		extensionFor(mimeType))

	result := h.Storage.Upload(c.Request().Context(), compressed.Buffer, fileName, mimeType)
	if !result.Success {
		h.logger().Error("photo upload failed", "error", result.Error)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "photo upload failed"})
	}

	photoPath := firstNonEmpty(result.Path, result.URL, result.FileID, fileName)
	fileID := firstNonEmpty(result.FileID, result.URL)

	sub := &models.Submission{
		EmployeeToken: req.Token,
		Name:          req.Name,
		CPF:           cpf.Normalize(req.CPF),
		PhotoPath:     photoPath,
		StorageFileID: fileID,
		ConsentGiven:  true,
	}
	if err := h.Store.InsertSubmission(sub); err != nil {
		h.logger().Error("submission insert error", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "internal error"})
	}

	go h.afterPersist(sub, employee)

	return c.JSON(http.StatusOK, echo.Map{
		"ok":           true,
		"fileId":       fileID,
		"url":          result.URL,
		"submissionId": sub.ID,
	})
}

// afterPersist runs the fire-and-forget tail of the pipeline; the response
// has already been written when this executes.
func (h *SubmissionHandler) afterPersist(sub *models.Submission, employee *models.Employee) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h.Notifier != nil {
		h.Notifier.SubmissionReceived(ctx, sub, employee)
	}

	if h.ES != nil {
		if err := search.Index(ctx, h.ES, h.ESIndex, sub); err != nil {
			h.logger().Error("submission index error", "error", err, "submission_id", sub.ID)
		}
	}
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "png"):
		return ".png"
	case strings.Contains(mimeType, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
