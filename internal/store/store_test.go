package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"attendkiosk/internal/attendance"
)

func strp(s string) *string { return &s }

func sampleRecords() []attendance.Record {
	return []attendance.Record{{
		NIC:         "200012345678",
		Date:        "2026-10-17",
		InTime:      strp("08:01"),
		OutTime:     strp("16:30"),
		CreatedAt:   "2026-10-17T08:01:12.345Z",
		LastUpdated: "2026-10-17T16:30:00.000Z",
	}, {
		NIC:         "199912345678",
		Date:        "2026-10-17",
		InTime:      strp("08:15"),
		CreatedAt:   "2026-10-17T08:15:00.000Z",
		LastUpdated: "2026-10-17T08:15:00.000Z",
	}}
}

func backends(c *qt.C) map[string]Backend {
	file, err := NewFile(filepath.Join(c.TempDir(), "data", "attendance.json"), 0)
	c.Assert(err, qt.IsNil)
	return map[string]Backend{
		"memory": NewMemory(0),
		"file":   file,
	}
}

func TestLoadEmpty(t *testing.T) {
	c := qt.New(t)
	for name, b := range backends(c) {
		c.Run(name, func(c *qt.C) {
			records, err := NewRecords(b).Load(context.Background())
			c.Assert(err, qt.IsNil)
			c.Assert(records, qt.HasLen, 0)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	for name, b := range backends(c) {
		c.Run(name, func(c *qt.C) {
			rs := NewRecords(b)
			c.Assert(rs.Save(ctx, sampleRecords()), qt.IsNil)

			first, err := b.Get(ctx)
			c.Assert(err, qt.IsNil)

			loaded, err := rs.Load(ctx)
			c.Assert(err, qt.IsNil)
			c.Assert(loaded, qt.DeepEquals, sampleRecords())

			c.Assert(rs.Save(ctx, loaded), qt.IsNil)
			second, err := b.Get(ctx)
			c.Assert(err, qt.IsNil)
			c.Assert(string(second), qt.Equals, string(first))
		})
	}
}

func TestLoadCorrupt(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	for name, b := range backends(c) {
		c.Run(name, func(c *qt.C) {
			c.Assert(b.Put(ctx, []byte(`{"nic":`)), qt.IsNil)
			records, err := NewRecords(b).Load(ctx)
			c.Assert(err, qt.ErrorIs, attendance.ErrCorrupt)
			c.Assert(records, qt.IsNil)
		})
	}
}

func TestSaveOverQuotaKeepsPrevious(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	file, err := NewFile(filepath.Join(c.TempDir(), "attendance.json"), 64)
	c.Assert(err, qt.IsNil)

	for name, b := range map[string]Backend{"memory": NewMemory(64), "file": file} {
		c.Run(name, func(c *qt.C) {
			rs := NewRecords(b)
			c.Assert(rs.Save(ctx, nil), qt.IsNil)

			err := rs.Save(ctx, sampleRecords())
			c.Assert(err, qt.ErrorIs, attendance.ErrWriteFailed)

			records, err := rs.Load(ctx)
			c.Assert(err, qt.IsNil)
			c.Assert(records, qt.HasLen, 0)
		})
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	f, err := NewFile(filepath.Join(dir, "attendance.json"), 0)
	c.Assert(err, qt.IsNil)

	c.Assert(NewRecords(f).Save(context.Background(), sampleRecords()), qt.IsNil)

	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].Name(), qt.Equals, "attendance.json")
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	m := NewMemory(0)

	c.Assert(NewRecords(m).Save(ctx, nil), qt.IsNil)
	data, err := m.Get(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "[]")
}

func TestOpen(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	h, err := Open(ctx, Options{Kind: "memory"})
	c.Assert(err, qt.IsNil)
	c.Assert(h.Backend.Name(), qt.Equals, "memory")
	c.Assert(h.Healthy(ctx), qt.IsTrue)
	c.Assert(h.Close(), qt.IsNil)

	h, err = Open(ctx, Options{Kind: "file", Path: filepath.Join(c.TempDir(), "a.json")})
	c.Assert(err, qt.IsNil)
	c.Assert(h.Backend.Name(), qt.Equals, "file")

	_, err = Open(ctx, Options{Kind: "floppy"})
	c.Assert(err, qt.ErrorMatches, `store backend "floppy" not supported`)
}
