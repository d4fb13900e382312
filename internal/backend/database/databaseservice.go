package database

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("image record not found")

type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// InsertImage stores a new metadata row. Identifiers are generated fresh
	// per upload, so a duplicate id fails the insert instead of upserting.
	InsertImage(record *ImageRecord) error
	// ListImages returns records newest first. A non-empty search narrows the
	// result to records whose name contains the substring, case-insensitively.
	ListImages(search string) ([]*ImageRecord, error)
	// GetImageByID returns ErrNotFound when the id is unknown.
	GetImageByID(id string) (*ImageRecord, error)
	// DeleteImage removes the row and returns the removed record, or
	// ErrNotFound when the id is unknown.
	DeleteImage(id string) (*ImageRecord, error)
}
