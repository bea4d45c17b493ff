// Package store persists the attendance record collection as a single
// opaque value under a fixed key.
package store

import (
	"context"

	"github.com/juju/errors"

	"attendkiosk/internal/attendance"
)

// DefaultKey is the storage identifier of the record collection.
const DefaultKey = "student_attendance_data"

// ErrNotFound is returned by a Backend that holds no value yet.
const ErrNotFound = errors.ConstError("no stored value")

// Backend reads and overwrites one blob. Put must either store the whole
// value or leave the previous one readable.
type Backend interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, value []byte) error
	Name() string
}

// Records adapts a Backend to attendance.RecordStore.
type Records struct {
	backend Backend
}

// NewRecords wraps backend.
func NewRecords(backend Backend) *Records {
	return &Records{backend: backend}
}

// Load returns the stored collection, an empty one when nothing was
// stored, or an error matching attendance.ErrCorrupt when the value
// does not parse.
func (r *Records) Load(ctx context.Context) ([]attendance.Record, error) {
	data, err := r.backend.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "%s: reading records", r.backend.Name())
	}
	records, err := attendance.DecodeRecords(data)
	if err != nil {
		return nil, errors.Annotatef(attendance.ErrCorrupt, "%s: %v", r.backend.Name(), err)
	}
	return records, nil
}

// Save overwrites the stored collection.
func (r *Records) Save(ctx context.Context, records []attendance.Record) error {
	data, err := attendance.EncodeRecords(records, false)
	if err != nil {
		return errors.Annotatef(attendance.ErrWriteFailed, "encoding records: %v", err)
	}
	if err := r.backend.Put(ctx, data); err != nil {
		if errors.Is(err, attendance.ErrWriteFailed) {
			return errors.Annotate(err, r.backend.Name())
		}
		return errors.Annotatef(attendance.ErrWriteFailed, "%s: %v", r.backend.Name(), err)
	}
	return nil
}
