package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/vjinviraj/pwalib-backend/ai/metrics"
	"github.com/vjinviraj/pwalib-backend/internal/profile"
	"github.com/vjinviraj/pwalib-backend/store"
)

// Content types accepted for upload. The gateway stores book files and
// artwork only; everything else is rejected before it reaches storage.
var allowedContentTypes = map[string]bool{
	"application/pdf":      true,
	"application/epub+zip": true,
	"image/jpeg":           true,
	"image/png":            true,
	"image/webp":           true,
}

type FileService struct {
	Store   *store.Store
	Profile *profile.Profile

	exporter        *metrics.Exporter
	uploadSemaphore *semaphore.Weighted
}

type deleteFileRequest struct {
	URL string `json:"url"`
}

type deleteFileResponse struct {
	Key string `json:"key"`
}

// Upload buffers the incoming multipart file and writes it to object storage
// under a namespaced key. Responds with the stored object's location.
func (s *FileService) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	if !s.Profile.IsStorageEnabled() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "object storage is not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field").SetInternal(err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		s.exporter.RecordUpload("rejected", 0)
		return echo.NewHTTPError(http.StatusUnsupportedMediaType,
			"unsupported content type "+contentType)
	}

	if err := s.uploadSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upload canceled").SetInternal(err)
	}
	defer s.uploadSemaphore.Release(1)

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file").SetInternal(err)
	}
	defer src.Close()

	folder := c.FormValue("folder")
	object, err := s.Store.Upload(ctx, folder, fileHeader.Filename, src, fileHeader.Size, contentType)
	if err != nil {
		if store.IsValidationError(err) {
			s.exporter.RecordUpload("rejected", 0)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.exporter.RecordUpload("error", 0)
		slog.Error("upload failed",
			"filename", fileHeader.Filename,
			"size", fileHeader.Size,
			"error", err,
		)
		return echo.NewHTTPError(http.StatusBadGateway, "failed to store file").SetInternal(err)
	}

	s.exporter.RecordUpload("ok", object.Size)
	slog.Info("file uploaded", "key", object.Key, "size", object.Size)

	return c.JSON(http.StatusCreated, object)
}

// Delete parses a stored object's location into a storage key and removes it.
func (s *FileService) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if !s.Profile.IsStorageEnabled() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "object storage is not configured")
	}

	var req deleteFileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	key, err := s.Store.Delete(ctx, req.URL)
	if err != nil {
		if store.IsValidationError(err) {
			s.exporter.RecordDelete("rejected")
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.exporter.RecordDelete("error")
		slog.Error("delete failed", "url", req.URL, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "failed to delete file").SetInternal(err)
	}

	s.exporter.RecordDelete("ok")
	slog.Info("file deleted", "key", key)

	return c.JSON(http.StatusOK, deleteFileResponse{Key: key})
}
