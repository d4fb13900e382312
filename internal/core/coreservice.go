package core

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/jo-hoe/gogallery/internal/backend/codec"
	"github.com/jo-hoe/gogallery/internal/backend/database"
	"github.com/jo-hoe/gogallery/internal/backend/storage"
)

// ErrNoFiles is returned when an upload batch contains no files at all.
var ErrNoFiles = errors.New("no files provided")

// timestampLayout is fixed-width (microsecond precision, always 'Z') so the
// textual created_at ordering in the store is chronological.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FileUpload is one submitted file: the client-supplied name and raw bytes.
type FileUpload struct {
	Name string
	Data []byte
}

// skipReason classifies why a submitted file produced no record. Skipping is
// deliberate policy: the caller only ever sees the accepted records, never a
// per-file error.
type skipReason string

const (
	skipUnsupportedExtension skipReason = "unsupported extension"
	skipUndecodable          skipReason = "undecodable image data"
	skipIdentifierFault      skipReason = "identifier generation failed"
	skipStorageFault         skipReason = "storage fault"
	skipMetadataFault        skipReason = "metadata fault"
)

// uploadOutcome is the explicit per-file result of the pipeline: either a
// stored record or a skip reason.
type uploadOutcome struct {
	record *database.ImageRecord
	skip   skipReason
}

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	storageManager  *storage.Manager
}

func NewCoreService(config *ServiceConfig) *CoreService {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		slog.Error("failed to initialize database service", "error", err)
		panic(err)
	}
	storageManager, err := storage.NewManager(
		config.Storage.Root, config.Storage.StaticRoot, config.Storage.StaticURLPrefix)
	if err != nil {
		slog.Error("failed to initialize storage manager", "error", err)
		panic(err)
	}
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		storageManager:  storageManager,
	}
}

// UploadImages runs the upload pipeline over a batch of submitted files in
// submission order. Files that fail classification, decoding, or persistence
// are skipped silently; the returned slice holds only the accepted records
// and may be shorter than the input, or empty.
func (service *CoreService) UploadImages(files []FileUpload) ([]*database.ImageRecord, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	records := make([]*database.ImageRecord, 0, len(files))
	for _, file := range files {
		outcome := service.processUpload(file)
		if outcome.skip != "" {
			slog.Info("upload: skipping file", "filename", file.Name, "reason", outcome.skip)
			continue
		}
		records = append(records, outcome.record)
	}
	return records, nil
}

// processUpload handles a single file: classify, normalize, persist. Each
// step exits early with a skip reason on failure; there are no retries.
func (service *CoreService) processUpload(file FileUpload) uploadOutcome {
	name := baseName(file.Name)
	if !codec.IsSupported(name) {
		return uploadOutcome{skip: skipUnsupportedExtension}
	}

	result, err := codec.Normalize(file.Data)
	if err != nil {
		slog.Warn("upload: failed to normalize image", "filename", name, "error", err)
		return uploadOutcome{skip: skipUndecodable}
	}

	id, err := database.GenerateID()
	if err != nil {
		slog.Warn("upload: failed to generate identifier", "filename", name, "error", err)
		return uploadOutcome{skip: skipIdentifierFault}
	}

	filePath, err := service.storageManager.Write(id, result.PNG)
	if err != nil {
		slog.Warn("upload: failed to write image file", "filename", name, "error", err)
		return uploadOutcome{skip: skipStorageFault}
	}

	record := &database.ImageRecord{
		ID:        id,
		Name:      name,
		Width:     result.Width,
		Height:    result.Height,
		URL:       service.storageManager.URLFor(filePath),
		CreatedAt: time.Now().UTC().Format(timestampLayout),
	}
	// File write and metadata insert are not atomic together; a fault here
	// leaves an orphaned file that is never reclaimed.
	if err := service.databaseService.InsertImage(record); err != nil {
		slog.Warn("upload: failed to insert image record", "filename", name, "id", id, "error", err)
		return uploadOutcome{skip: skipMetadataFault}
	}
	return uploadOutcome{record: record}
}

// ListImages returns records newest first, optionally filtered by a
// case-insensitive substring of the original filename.
func (service *CoreService) ListImages(search string) ([]*database.ImageRecord, error) {
	return service.databaseService.ListImages(search)
}

func (service *CoreService) GetImageByID(id string) (*database.ImageRecord, error) {
	return service.databaseService.GetImageByID(id)
}

// DeleteImage removes the metadata row first, then makes a best-effort
// attempt to remove the backing file. File removal faults are absorbed.
func (service *CoreService) DeleteImage(id string) error {
	record, err := service.databaseService.DeleteImage(id)
	if err != nil {
		return err
	}
	service.storageManager.Remove(record.URL)
	return nil
}

// ResolveFile maps a bare file name from the indirect file endpoint to its
// on-disk path under the storage root.
func (service *CoreService) ResolveFile(name string) (string, error) {
	return service.storageManager.Resolve(name)
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// baseName strips any path components a client may have smuggled into the
// filename, handling both separator conventions.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
