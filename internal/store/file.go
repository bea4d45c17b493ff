package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/juju/errors"

	"attendkiosk/internal/attendance"
)

// File stores the blob in a single file, replaced atomically by rename.
type File struct {
	path  string
	quota int
}

// NewFile creates the parent directory of path if needed.
func NewFile(path string, quota int) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Annotatef(err, "creating %s", dir)
		}
	}
	return &File{path: path, quota: quota}, nil
}

func (f *File) Name() string { return "file" }

func (f *File) Get(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, errors.Trace(err)
}

func (f *File) Put(_ context.Context, value []byte) error {
	if f.quota > 0 && len(value) > f.quota {
		return errors.Annotatef(attendance.ErrWriteFailed, "value of %d bytes exceeds quota of %d", len(value), f.quota)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Trace(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Trace(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Trace(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp.Name(), f.path))
}
