// Package storage persists uploaded images on the local filesystem and
// serves them back under a public URL prefix.  Keys are namespaced per
// user and writes are exclusive: an existing object is never replaced.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrKeyExists is returned when a write targets a key that is already
// occupied.
var ErrKeyExists = fmt.Errorf("storage: key already exists")

// Local stores objects under Dir and resolves them publicly below
// BaseURL (e.g. http://host/uploads).
type Local struct {
	Dir     string
	BaseURL string
}

// NewLocal creates the root directory if needed and returns the store.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the object under key, creating parent directories as
// needed.  The file is opened with O_EXCL so a colliding key fails with
// ErrKeyExists instead of overwriting.  Keys are sanitized against path
// traversal before touching the filesystem.
func (l *Local) Save(key string, r io.Reader) (string, error) {
	clean := filepath.Clean("/" + key) // forces the key under the root
	path := filepath.Join(l.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", ErrKeyExists
		}
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}
	return l.URL(clean), nil
}

// URL returns the public URL for a stored key.
func (l *Local) URL(key string) string {
	return l.BaseURL + "/" + strings.TrimLeft(filepath.ToSlash(key), "/")
}
