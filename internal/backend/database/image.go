package database

// ImageRecord is one row of the images table, mirrored verbatim in API
// responses. CreatedAt is stored as a fixed-width UTC timestamp string so
// the textual ORDER BY in sqlite matches chronological order.
type ImageRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanImageRecord maps a result row onto an ImageRecord. The column order
// must match the SELECT lists in sqlite.go.
func scanImageRecord(row rowScanner) (*ImageRecord, error) {
	var record ImageRecord
	if err := row.Scan(&record.ID, &record.Name, &record.Width, &record.Height, &record.URL, &record.CreatedAt); err != nil {
		return nil, err
	}
	return &record, nil
}
