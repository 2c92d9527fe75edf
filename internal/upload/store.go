// Package upload stores client-uploaded files (avatars, blog images, comment
// attachments) on local disk and maps them to public /uploads/ URLs.
//
// Files are renamed to a generated ID plus the original extension — nothing
// the client sends is ever used as a path component.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/nencyajudiya/blogstream/internal/apperror"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads/"

// allowedExtensions is the upload allow-list. Anything else is rejected as a
// validation error before touching disk.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Store is a disk-backed upload store.
type Store struct {
	dir     string
	baseURL string // e.g. "http://localhost:8080", no trailing slash
	logger  *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
// baseURL is the public origin prepended to stored file URLs.
func New(dir, baseURL string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", dir, err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Dir returns the directory files are stored in, for static file serving.
func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded content to disk under a generated name and
// returns the public URL to reference it by. filename is only consulted for
// its extension.
func (s *Store) Save(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("unsupported file type %q", ext))
	}

	name := xid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("upload: creating %s: %w", dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("upload: writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("upload: closing %s: %w", dst, err)
	}

	s.logger.Debug("stored upload", slog.String("file", name))

	return s.baseURL + URLPrefix + name, nil
}

// Remove deletes a previously stored file given its public URL. URLs that
// don't point into this store are ignored, as are files already gone —
// removal is best-effort cleanup, not bookkeeping.
func (s *Store) Remove(url string) error {
	if url == "" || !strings.HasPrefix(url, s.baseURL+URLPrefix) {
		return nil
	}

	// path.Base strips any directory parts, so a crafted URL can't reach
	// outside the upload dir.
	name := path.Base(strings.TrimPrefix(url, s.baseURL+URLPrefix))
	if name == "" || name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("upload: removing %s: %w", name, err)
	}
	return nil
}
