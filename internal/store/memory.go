package store

import (
	"context"
	"sync"

	"github.com/juju/errors"

	"attendkiosk/internal/attendance"
)

// Memory keeps the blob in process memory. A positive quota rejects
// values larger than quota bytes.
type Memory struct {
	mu    sync.Mutex
	value []byte
	set   bool
	quota int
}

// NewMemory creates an empty in-memory backend.
func NewMemory(quota int) *Memory {
	return &Memory{quota: quota}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.value))
	copy(out, m.value)
	return out, nil
}

func (m *Memory) Put(_ context.Context, value []byte) error {
	if m.quota > 0 && len(value) > m.quota {
		return errors.Annotatef(attendance.ErrWriteFailed, "value of %d bytes exceeds quota of %d", len(value), m.quota)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = append(m.value[:0:0], value...)
	m.set = true
	return nil
}
