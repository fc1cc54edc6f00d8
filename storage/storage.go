// Package storage is the local-disk replacement for the hosted bucket the
// old frontend uploaded into. Names are sanitized and timestamp-prefixed
// before they touch the disk; callers keep the returned relative path and
// never build paths themselves.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

var ErrInvalidPath = errors.New("storage: path escapes the store root")

type Store struct {
	Root    string
	BaseURL string
}

func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save streams r into the store under a sanitized, timestamp-prefixed
// name and returns the relative path and byte count. A collision (two
// uploads of the same name in the same second) gets a uuid suffix; the
// O_EXCL create keeps the check race-free under concurrent uploads.
func (s *Store) Save(originalName string, r io.Reader) (string, int64, error) {
	name := utils.TimestampedName(originalName, time.Now())

	full := filepath.Join(s.Root, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:8] + ext
		full = filepath.Join(s.Root, name)
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		// a partial upload is useless, the user restarts wholesale
		os.Remove(full)
		return "", 0, fmt.Errorf("storage: write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", 0, fmt.Errorf("storage: close file: %w", err)
	}

	return name, written, nil
}

func (s *Store) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *Store) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// PublicURL maps a stored path to the URL the API serves it from.
func (s *Store) PublicURL(path string) string {
	return s.BaseURL + "/files/" + path
}

func (s *Store) resolve(path string) (string, error) {
	full := filepath.Join(s.Root, filepath.Clean("/"+path))
	rel, err := filepath.Rel(s.Root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidPath
	}
	return full, nil
}
