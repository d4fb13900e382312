package core

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/jo-hoe/gogallery/internal/backend/database"
)

// newTestCoreService builds a service with an in-memory store and a storage
// root outside the static tree, so records carry indirect URLs.
func newTestCoreService(t *testing.T) *CoreService {
	t.Helper()

	base := t.TempDir()
	config := &ServiceConfig{
		Port: 8080,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: ":memory:",
		},
		Storage: Storage{
			Root:            filepath.Join(base, "data", "images"),
			StaticRoot:      filepath.Join(base, "static"),
			StaticURLPrefix: "/static",
		},
	}
	service := NewCoreService(config)
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func makeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: 42, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestUploadImages_EmptyBatch(t *testing.T) {
	service := newTestCoreService(t)

	_, err := service.UploadImages(nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("UploadImages(nil) error = %v, want ErrNoFiles", err)
	}

	_, err = service.UploadImages([]FileUpload{})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("UploadImages(empty) error = %v, want ErrNoFiles", err)
	}
}

func TestUploadImages_ValidFile(t *testing.T) {
	service := newTestCoreService(t)
	idPattern := regexp.MustCompile(`^[0-9a-f]{32}$`)

	records, err := service.UploadImages([]FileUpload{
		{Name: "photo.png", Data: makeTestPNG(t, 20, 10)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if !idPattern.MatchString(record.ID) {
		t.Errorf("record.ID = %q, want 32 hex chars", record.ID)
	}
	if record.Name != "photo.png" {
		t.Errorf("record.Name = %q, want photo.png", record.Name)
	}
	if record.Width != 20 || record.Height != 10 {
		t.Errorf("dimensions = %dx%d, want 20x10", record.Width, record.Height)
	}
	if want := "/api/file/" + record.ID + ".png"; record.URL != want {
		t.Errorf("record.URL = %q, want %q", record.URL, want)
	}
	if record.CreatedAt == "" {
		t.Error("record.CreatedAt is empty")
	}

	// The backing file must exist and the metadata row must be queryable
	if _, err := os.Stat(filepath.Join(service.config.Storage.Root, record.ID+".png")); err != nil {
		t.Errorf("expected canonical file on disk: %v", err)
	}
	stored, err := service.GetImageByID(record.ID)
	if err != nil {
		t.Fatalf("GetImageByID error: %v", err)
	}
	if stored.Name != record.Name || stored.URL != record.URL {
		t.Errorf("stored record %+v differs from returned record %+v", stored, record)
	}
}

func TestUploadImages_SkipsUnsupportedExtension(t *testing.T) {
	service := newTestCoreService(t)

	// Valid image bytes, but the filename fails classification
	records, err := service.UploadImages([]FileUpload{
		{Name: "photo.txt", Data: makeTestPNG(t, 4, 4)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}

	all, err := service.ListImages("")
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no metadata rows, got %d", len(all))
	}
}

func TestUploadImages_SkipsUndecodableData(t *testing.T) {
	service := newTestCoreService(t)

	records, err := service.UploadImages([]FileUpload{
		{Name: "broken.png", Data: []byte("definitely not an image")},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}

	all, err := service.ListImages("")
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no metadata rows, got %d", len(all))
	}
}

func TestUploadImages_MixedBatchKeepsOrder(t *testing.T) {
	service := newTestCoreService(t)

	records, err := service.UploadImages([]FileUpload{
		{Name: "first.png", Data: makeTestPNG(t, 2, 2)},
		{Name: "skipped.dat", Data: makeTestPNG(t, 2, 2)},
		{Name: "garbage.png", Data: []byte("garbage")},
		{Name: "second.png", Data: makeTestPNG(t, 3, 3)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "first.png" || records[1].Name != "second.png" {
		t.Errorf("record order = [%q, %q], want [first.png, second.png]",
			records[0].Name, records[1].Name)
	}
}

func TestUploadImages_StripsPathComponents(t *testing.T) {
	service := newTestCoreService(t)

	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "unix path", input: "uploads/photos/cat.png", wantName: "cat.png"},
		{name: "windows path", input: `C:\Users\me\dog.png`, wantName: "dog.png"},
		{name: "mixed separators", input: `a/b\c.png`, wantName: "c.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := service.UploadImages([]FileUpload{
				{Name: tt.input, Data: makeTestPNG(t, 2, 2)},
			})
			if err != nil {
				t.Fatalf("UploadImages error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if records[0].Name != tt.wantName {
				t.Errorf("record.Name = %q, want %q", records[0].Name, tt.wantName)
			}
		})
	}
}

func TestUploadImages_RoundTripDimensions(t *testing.T) {
	service := newTestCoreService(t)

	records, err := service.UploadImages([]FileUpload{
		{Name: "roundtrip.png", Data: makeTestPNG(t, 31, 17)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]

	// Resolve the stored file the way the indirect endpoint would
	name := strings.TrimPrefix(record.URL, "/api/file/")
	filePath, err := service.ResolveFile(name)
	if err != nil {
		t.Fatalf("ResolveFile error: %v", err)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stored file is not valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != record.Width || bounds.Dy() != record.Height {
		t.Errorf("stored dimensions = %dx%d, recorded %dx%d",
			bounds.Dx(), bounds.Dy(), record.Width, record.Height)
	}
}

func TestListImages_NewestFirst(t *testing.T) {
	service := newTestCoreService(t)

	names := []string{"one.png", "two.png", "three.png"}
	for _, name := range names {
		if _, err := service.UploadImages([]FileUpload{
			{Name: name, Data: makeTestPNG(t, 2, 2)},
		}); err != nil {
			t.Fatalf("UploadImages(%s) error: %v", name, err)
		}
	}

	records, err := service.ListImages("")
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Newest first: reverse of upload order
	wantOrder := []string{"three.png", "two.png", "one.png"}
	for i, want := range wantOrder {
		if records[i].Name != want {
			t.Errorf("records[%d].Name = %q, want %q", i, records[i].Name, want)
		}
	}
}

func TestListImages_Search(t *testing.T) {
	service := newTestCoreService(t)

	for _, name := range []string{"Sunset.png", "sunrise.png", "moon.png"} {
		if _, err := service.UploadImages([]FileUpload{
			{Name: name, Data: makeTestPNG(t, 2, 2)},
		}); err != nil {
			t.Fatalf("UploadImages(%s) error: %v", name, err)
		}
	}

	records, err := service.ListImages("sun")
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for search 'sun', got %d", len(records))
	}
	for _, record := range records {
		if !strings.Contains(strings.ToLower(record.Name), "sun") {
			t.Errorf("record %q does not match search", record.Name)
		}
	}
}

func TestDeleteImage(t *testing.T) {
	service := newTestCoreService(t)

	records, err := service.UploadImages([]FileUpload{
		{Name: "doomed.png", Data: makeTestPNG(t, 2, 2)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	record := records[0]
	filePath := filepath.Join(service.config.Storage.Root, record.ID+".png")

	if err := service.DeleteImage(record.ID); err != nil {
		t.Fatalf("DeleteImage error: %v", err)
	}

	if _, err := service.GetImageByID(record.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("GetImageByID after delete error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Errorf("expected backing file removed, stat err = %v", err)
	}

	// Second delete of the same id reports not found
	if err := service.DeleteImage(record.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("second DeleteImage error = %v, want ErrNotFound", err)
	}
}

func TestDeleteImage_Unknown(t *testing.T) {
	service := newTestCoreService(t)

	if err := service.DeleteImage("unknown-id"); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("DeleteImage(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestUploadImages_StaticRootStorage(t *testing.T) {
	// When the storage root lies inside the static tree, records carry
	// direct static URLs instead of indirect ones.
	base := t.TempDir()
	config := &ServiceConfig{
		Port: 8080,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: ":memory:",
		},
		Storage: Storage{
			Root:            filepath.Join(base, "static", "images"),
			StaticRoot:      filepath.Join(base, "static"),
			StaticURLPrefix: "/static",
		},
	}
	service := NewCoreService(config)
	t.Cleanup(func() { _ = service.Close() })

	records, err := service.UploadImages([]FileUpload{
		{Name: "direct.png", Data: makeTestPNG(t, 2, 2)},
	})
	if err != nil {
		t.Fatalf("UploadImages error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := "/static/images/" + records[0].ID + ".png"
	if records[0].URL != want {
		t.Errorf("record.URL = %q, want %q", records[0].URL, want)
	}
}
