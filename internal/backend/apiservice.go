package backend

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/jo-hoe/gogallery/internal/backend/database"
	"github.com/jo-hoe/gogallery/internal/core"
	"github.com/labstack/echo/v4"
)

// APIService exposes the JSON API: upload, list/search, delete, indirect
// file serving, and the health probe.
type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

func (service *APIService) SetRoutes(e *echo.Echo) {
	e.POST("/api/upload", service.uploadHandler)
	e.GET("/api/images", service.listImagesHandler)
	e.DELETE("/api/images/:id", service.deleteImageHandler)
	e.GET("/api/file/:name", service.fileHandler)
	e.GET("/api/health", service.healthHandler)
}

func (service *APIService) uploadHandler(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		slog.Warn("uploadHandler: failed to parse multipart form",
			"status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No files provided.")
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		slog.Warn("uploadHandler: empty upload batch", "status", http.StatusBadRequest)
		return echo.NewHTTPError(http.StatusBadRequest, "No files provided.")
	}

	files := make([]core.FileUpload, 0, len(parts))
	for _, part := range parts {
		data, err := readPart(part)
		if err != nil {
			// Unreadable parts follow the same policy as undecodable images:
			// skip and continue with the rest of the batch.
			slog.Warn("uploadHandler: failed to read uploaded part",
				"filename", part.Filename, "error", err)
			continue
		}
		files = append(files, core.FileUpload{Name: part.Filename, Data: data})
	}

	records := []*database.ImageRecord{}
	if len(files) > 0 {
		records, err = service.coreService.UploadImages(files)
		if err != nil {
			slog.Error("uploadHandler: failed to process upload batch",
				"status", http.StatusInternalServerError, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process upload")
		}
	}
	return ctx.JSON(http.StatusOK, records)
}

type listImagesRequest struct {
	Search string `query:"search" validate:"omitempty,max=256"`
}

func (service *APIService) listImagesHandler(ctx echo.Context) error {
	request := new(listImagesRequest)
	if err := ctx.Bind(request); err != nil {
		slog.Warn("listImagesHandler: failed to bind query parameters",
			"status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctx.Validate(request); err != nil {
		return err
	}

	records, err := service.coreService.ListImages(request.Search)
	if err != nil {
		slog.Error("listImagesHandler: failed to list images",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list images")
	}
	if records == nil {
		records = []*database.ImageRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (service *APIService) deleteImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := service.coreService.DeleteImage(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			slog.Warn("deleteImageHandler: unknown image id",
				"status", http.StatusNotFound, "image_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		slog.Error("deleteImageHandler: failed to delete image",
			"status", http.StatusInternalServerError, "image_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete image")
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// fileHandler serves canonical files by bare name. Only used when the
// storage root is not under the publicly served static tree.
func (service *APIService) fileHandler(ctx echo.Context) error {
	name := ctx.Param("name")
	// Canonical files are always .png; other names under the storage root
	// (such as the sqlite database, which may live there) are not servable.
	if !strings.HasSuffix(name, ".png") {
		slog.Warn("fileHandler: rejected non-canonical file name",
			"status", http.StatusNotFound, "name", name)
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	filePath, err := service.coreService.ResolveFile(name)
	if err != nil {
		slog.Warn("fileHandler: rejected file name",
			"status", http.StatusNotFound, "name", name, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	if _, err := os.Stat(filePath); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return ctx.File(filePath)
}

func (service *APIService) healthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func readPart(part *multipart.FileHeader) ([]byte, error) {
	src, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("readPart: failed to close uploaded file reader",
				"error", cerr, "filename", part.Filename)
		}
	}()
	return io.ReadAll(src)
}
