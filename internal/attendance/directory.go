package attendance

import (
	"os"

	"github.com/juju/errors"
)

// Directory is the read-only student list, loaded once at start-up.
type Directory struct {
	students []Student
	byNIC    map[string]Student
}

// NewDirectory indexes students by NIC. Duplicate or malformed NICs are rejected.
func NewDirectory(students []Student) (*Directory, error) {
	d := &Directory{
		students: make([]Student, 0, len(students)),
		byNIC:    make(map[string]Student, len(students)),
	}
	for i, st := range students {
		if err := validate.Struct(st); err != nil {
			return nil, errors.NotValidf("student %d (%v)", i, err)
		}
		if _, dup := d.byNIC[st.NIC]; dup {
			return nil, errors.AlreadyExistsf("student with nic %s", st.NIC)
		}
		d.byNIC[st.NIC] = st
		d.students = append(d.students, st)
	}
	return d, nil
}

// LoadDirectory reads a JSON array of students from path.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading student directory")
	}
	var students []Student
	if err := codec.Unmarshal(data, &students); err != nil {
		return nil, errors.Annotatef(err, "parsing student directory %s", path)
	}
	return NewDirectory(students)
}

// Lookup finds a student by exact NIC.
func (d *Directory) Lookup(nic string) (Student, bool) {
	if d == nil {
		return Student{}, false
	}
	st, ok := d.byNIC[nic]
	return st, ok
}

// Students returns the directory in load order.
func (d *Directory) Students() []Student {
	if d == nil {
		return nil
	}
	out := make([]Student, len(d.students))
	copy(out, d.students)
	return out
}

// Len is the number of known students.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.students)
}
