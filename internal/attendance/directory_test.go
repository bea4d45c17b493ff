package attendance

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/juju/errors"
)

func TestLoadDirectory(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "students.json")
	err := os.WriteFile(path, []byte(`[
		{"nic":"200012345678","fullName":"Alice Perera","profilePicture":"https://example.com/a.png"},
		{"nic":"199912345678","fullName":"Bob Silva","profilePicture":""}
	]`), 0o644)
	c.Assert(err, qt.IsNil)

	dir, err := LoadDirectory(path)
	c.Assert(err, qt.IsNil)
	c.Assert(dir.Len(), qt.Equals, 2)

	st, ok := dir.Lookup("200012345678")
	c.Assert(ok, qt.IsTrue)
	c.Assert(st.FullName, qt.Equals, "Alice Perera")

	_, ok = dir.Lookup("20001234567")
	c.Assert(ok, qt.IsFalse)
	c.Assert(dir.Students()[1].NIC, qt.Equals, "199912345678")
}

func TestDirectoryRejectsBadEntries(t *testing.T) {
	c := qt.New(t)
	_, err := NewDirectory([]Student{
		{NIC: "200012345678", FullName: "Alice"},
		{NIC: "200012345678", FullName: "Alice again"},
	})
	c.Assert(errors.Is(err, errors.AlreadyExists), qt.IsTrue)

	_, err = NewDirectory([]Student{{NIC: "12345", FullName: "Short"}})
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := LoadDirectory(filepath.Join(c.TempDir(), "missing.json"))
	c.Assert(err, qt.ErrorMatches, "reading student directory: .*")
}

func TestNilDirectory(t *testing.T) {
	c := qt.New(t)
	var dir *Directory
	_, ok := dir.Lookup("200012345678")
	c.Assert(ok, qt.IsFalse)
	c.Assert(dir.Len(), qt.Equals, 0)
}
