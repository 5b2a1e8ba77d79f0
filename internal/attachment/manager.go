package attachment

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/logging"
	"github.com/limbo/moodkit/internal/worker"
)

const (
	MaxPathLength   = 500
	maxExtLength    = 10
	defaultExt      = ".bin"
	tempPattern     = ".staging-*.tmp"
	dirPermissions  = 0o700
	filePermissions = 0o600
)

var ErrForeignPath = errors.New("path is outside the attachments directory")

type FileInfo struct {
	Path    string
	ModTime time.Time
}

// Manager owns the private directory holding attachment files. It never touches
// database rows: callers decide when a file may be released.
type Manager struct {
	dir  string
	pool *worker.Pool
}

func NewManager(dir string, pool *worker.Pool) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("attachments directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errorvalues.AttachmentError("resolving attachments directory", err)
	}
	if err = os.MkdirAll(abs, dirPermissions); err != nil {
		return nil, errorvalues.AttachmentError("creating attachments directory", err)
	}
	if pool == nil {
		pool = worker.New(worker.DefaultSize)
	}
	return &Manager{dir: abs, pool: pool}, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

// Stage copies src into a new file named by a random token plus ext and returns its path.
// The file appears under its final name only once fully written and synced.
func (m *Manager) Stage(ctx context.Context, src io.Reader, ext string) (string, error) {
	if src == nil {
		return "", errorvalues.AttachmentError("staging attachment", errors.New("source is nil"))
	}
	path := filepath.Join(m.dir, uuid.NewString()+NormalizeExt(ext))
	if len(path) > MaxPathLength {
		return "", errorvalues.AttachmentError("staging attachment", errors.New("path exceeds 500 characters"))
	}
	err := m.pool.Do(ctx, func() error {
		return m.writeAtomically(src, path)
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrAttachment) {
			return "", err
		}
		return "", errorvalues.AttachmentError("staging attachment", err)
	}
	logging.FromContext(ctx).Debug("attachment staged", slog.String("path", path))
	return path, nil
}

func (m *Manager) writeAtomically(src io.Reader, path string) error {
	tmp, err := os.CreateTemp(m.dir, tempPattern)
	if err != nil {
		return errorvalues.AttachmentError("creating temp file", err)
	}
	tmpName := tmp.Name()
	fail := func(msg string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return errorvalues.AttachmentError(msg, err)
	}
	if _, err = io.Copy(tmp, src); err != nil {
		return fail("copying attachment", err)
	}
	if err = tmp.Chmod(filePermissions); err != nil {
		return fail("setting attachment permissions", err)
	}
	if err = tmp.Sync(); err != nil {
		return fail("syncing attachment", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errorvalues.AttachmentError("closing attachment", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errorvalues.AttachmentError("publishing attachment", err)
	}
	return nil
}

// Remove deletes a file inside the directory. A file that is already gone is not an error.
func (m *Manager) Remove(ctx context.Context, path string) error {
	if !m.Owns(path) {
		return errorvalues.AttachmentError("removing attachment", ErrForeignPath)
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errorvalues.AttachmentError("removing attachment", err)
	}
	logging.FromContext(ctx).Debug("attachment removed", slog.String("path", path))
	return nil
}

// Owns reports whether path names a file directly inside the directory.
func (m *Manager) Owns(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	clean := filepath.Clean(path)
	return filepath.Dir(clean) == m.dir && !strings.HasPrefix(filepath.Base(clean), ".")
}

// Exists reports whether path names a regular file, wherever it lives.
func (m *Manager) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// List returns the published attachment files, skipping staging leftovers.
func (m *Manager) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, errorvalues.AttachmentError("listing attachments", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Path: filepath.Join(m.dir, e.Name()), ModTime: info.ModTime()})
	}
	return files, nil
}

// SweepTemp removes staging files left behind by an interrupted Stage.
func (m *Manager) SweepTemp(ctx context.Context) (int, error) {
	matches, err := filepath.Glob(filepath.Join(m.dir, tempPattern))
	if err != nil {
		return 0, errorvalues.AttachmentError("sweeping staging files", err)
	}
	removed := 0
	for _, p := range matches {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.FromContext(ctx).Warn("removing staging file failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	return removed, nil
}

// NormalizeExt lower-cases ext, keeps letters and digits only and adds the leading dot.
func NormalizeExt(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	var b strings.Builder
	for _, r := range ext {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		b.WriteRune(r)
		if b.Len() == maxExtLength {
			break
		}
	}
	if b.Len() == 0 {
		return defaultExt
	}
	return "." + b.String()
}
