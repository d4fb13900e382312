package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Manager writes canonical image files under a root directory and derives
// the public URL a stored file is reachable at. The root may or may not lie
// inside the publicly served static tree; the URL scheme follows from that.
type Manager struct {
	root         string
	staticRoot   string
	staticPrefix string
}

func NewManager(root, staticRoot, staticPrefix string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Manager{
		root:         root,
		staticRoot:   staticRoot,
		staticPrefix: strings.TrimSuffix(staticPrefix, "/"),
	}, nil
}

// Root returns the storage root directory.
func (m *Manager) Root() string {
	return m.root
}

// Write stores the canonical bytes for the given identifier and returns the
// file path. Identifiers are fresh per upload, so an existing path is not
// guarded against.
func (m *Manager) Write(id string, data []byte) (string, error) {
	path := filepath.Join(m.root, id+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file %s: %w", path, err)
	}
	return path, nil
}

// URLFor maps a stored file path to its public URL. Files below the static
// root get a direct static URL; anything else is served indirectly through
// the file endpoint, so the storage root can be relocated to a separate
// persistent volume without losing the ability to serve images.
func (m *Manager) URLFor(path string) string {
	rel, err := filepath.Rel(m.staticRoot, path)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return m.staticPrefix + "/" + filepath.ToSlash(rel)
	}
	return "/api/file/" + filepath.Base(path)
}

// Remove deletes the file behind a public URL. Best effort: an absent file
// or a filesystem fault is logged and never fails the caller.
func (m *Manager) Remove(url string) {
	path := m.pathForURL(url)
	if path == "" {
		slog.Debug("storage: cannot derive file path from url", "url", url)
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("storage: failed to remove image file", "path", path, "error", err)
	}
}

// pathForURL inverts URLFor. Returns "" for URLs this manager did not issue.
func (m *Manager) pathForURL(url string) string {
	if strings.HasPrefix(url, m.staticPrefix+"/") {
		return filepath.Join(m.staticRoot, filepath.FromSlash(strings.TrimPrefix(url, m.staticPrefix+"/")))
	}
	if strings.HasPrefix(url, "/api/file/") {
		return filepath.Join(m.root, strings.TrimPrefix(url, "/api/file/"))
	}
	return ""
}

// Resolve maps a bare file name from the indirect file endpoint back to a
// path under the storage root. Names carrying path components are rejected.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(m.root, name), nil
}
