// Package media stores user uploaded files under the media directory and
// builds the URLs they are served from.
package media

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/config"
)

// Storage manages files below a root directory. Every name it takes is a
// slash-separated path relative to that root, e.g. "avatars/default.png".
type Storage struct {
	dir     string
	urlPath string
	mu      sync.RWMutex
}

// NewStorage creates the root directory if needed. urlPath is the prefix the
// files are served under, e.g. "/media".
func NewStorage(dir, urlPath string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("media dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create media dir %s", dir)
	}

	return &Storage{
		dir:     dir,
		urlPath: "/" + strings.Trim(urlPath, "/"),
	}, nil
}

func NewStorageFromConfig(cfg *config.Config) (*Storage, error) {
	return NewStorage(cfg.MediaDir, cfg.MediaURL)
}

// Dir returns the root directory.
func (s *Storage) Dir() string {
	return s.dir
}

// URLPath returns the prefix files are served under.
func (s *Storage) URLPath() string {
	return s.urlPath
}

// Path returns the filesystem path for name. Names can't escape the root.
func (s *Storage) Path(name string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		return "", errors.New("media name cannot be empty")
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// Save writes data to name. The file is written next to its destination and
// renamed into place so readers never see a partial file.
func (s *Storage) Save(name string, data []byte) error {
	if len(data) == 0 {
		return errors.New("media data cannot be empty")
	}
	dst, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.WithStack(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.Rename(tmp.Name(), dst))
}

// Exists reports whether name is a regular file.
func (s *Storage) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes name. A missing file is not an error.
func (s *Storage) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

// URL returns the absolute URL name is served from for the current request.
func (s *Storage) URL(c echo.Context, name string) string {
	return BaseURL(c) + s.urlPath + "/" + strings.TrimPrefix(name, "/")
}

// BaseURL returns scheme://host for the current request, honoring the
// forwarding headers set by a reverse proxy.
func BaseURL(c echo.Context) string {
	req := c.Request()

	scheme := "http"
	if req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}

	return scheme + "://" + host
}
