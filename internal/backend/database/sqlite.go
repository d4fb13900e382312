package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const imageColumns = "id, name, width, height, url, created_at"

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		url TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return nil, err
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) InsertImage(record *ImageRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO images ("+imageColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		record.ID, record.Name, record.Width, record.Height, record.URL, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image record %s: %w", record.ID, err)
	}
	return nil
}

func (s *SQLiteDatabase) ListImages(search string) ([]*ImageRecord, error) {
	var rows *sql.Rows
	var err error
	if search == "" {
		rows, err = s.db.Query(
			"SELECT " + imageColumns + " FROM images ORDER BY created_at DESC")
	} else {
		rows, err = s.db.Query(
			"SELECT "+imageColumns+" FROM images WHERE LOWER(name) LIKE ? ORDER BY created_at DESC",
			"%"+strings.ToLower(search)+"%")
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var records []*ImageRecord
	for rows.Next() {
		record, err := scanImageRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteDatabase) GetImageByID(id string) (*ImageRecord, error) {
	row := s.db.QueryRow("SELECT "+imageColumns+" FROM images WHERE id = ?", id)
	record, err := scanImageRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SQLiteDatabase) DeleteImage(id string) (*ImageRecord, error) {
	// Read-then-delete without a surrounding transaction; per-statement
	// atomicity is all this store guarantees.
	record, err := s.GetImageByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec("DELETE FROM images WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to delete image record %s: %w", id, err)
	}
	return record, nil
}
