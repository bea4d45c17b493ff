package attendance

import (
	"context"
	"strings"

	"github.com/juju/errors"
)

// UnknownStudentName is shown for records whose NIC is not in the directory.
const UnknownStudentName = "Unknown Student"

// Summary counts today's records for the dashboard.
type Summary struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// SummaryToday counts today's records, those with an in time and those
// with an out time.
func (s *Service) SummaryToday(ctx context.Context) (Summary, error) {
	today := s.Today()
	records, err := s.ListToday(ctx)
	if err != nil {
		return Summary{}, errors.Trace(err)
	}
	sum := Summary{Date: today, Total: len(records)}
	for _, r := range records {
		if r.InTime != nil {
			sum.In++
		}
		if r.OutTime != nil {
			sum.Out++
		}
	}
	return sum, nil
}

// Search returns records whose NIC contains term or whose student's name
// contains it, ignoring case. An empty term matches everything.
func (s *Service) Search(ctx context.Context, term string) ([]Record, error) {
	term = strings.TrimSpace(term)
	needle := strings.ToLower(term)
	return s.filter(ctx, func(r Record) bool {
		if term == "" || strings.Contains(r.NIC, term) {
			return true
		}
		st, ok := s.directory.Lookup(r.NIC)
		return ok && strings.Contains(strings.ToLower(st.FullName), needle)
	})
}

// RecordView is a record joined with its student for display.
type RecordView struct {
	Record
	StudentName    string `json:"studentName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	State          State  `json:"state"`
	Label          string `json:"label"`
}

// StateLabel is the dashboard wording for a record state.
func StateLabel(state State) string {
	switch state {
	case Completed:
		return "Completed"
	case In:
		return "Present"
	default:
		return "Absent"
	}
}

// MarshalJSON flattens the record next to the display fields.
func (v RecordView) MarshalJSON() ([]byte, error) {
	return codec.Marshal(struct {
		recordFields
		StudentName    string `json:"studentName"`
		ProfilePicture string `json:"profilePicture,omitempty"`
		State          State  `json:"state"`
		Label          string `json:"label"`
	}{recordFields(v.Record), v.StudentName, v.ProfilePicture, v.State, v.Label})
}

// Views joins records with the directory.
func (s *Service) Views(records []Record) []RecordView {
	views := make([]RecordView, 0, len(records))
	for i := range records {
		views = append(views, s.view(records[i]))
	}
	return views
}

func (s *Service) view(r Record) RecordView {
	state := StateOf(&r)
	v := RecordView{
		Record:      r,
		StudentName: UnknownStudentName,
		State:       state,
		Label:       StateLabel(state),
	}
	if st, ok := s.directory.Lookup(r.NIC); ok {
		v.StudentName = st.FullName
		v.ProfilePicture = st.ProfilePicture
	}
	return v
}

// StudentGroup holds one student's records.
type StudentGroup struct {
	NIC     string       `json:"nic"`
	Student *Student     `json:"student,omitempty"`
	Records []RecordView `json:"records"`
}

// GroupByStudent groups records per NIC, ordered by first appearance.
func (s *Service) GroupByStudent(records []Record) []StudentGroup {
	var groups []StudentGroup
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.NIC]
		if !ok {
			g := StudentGroup{NIC: r.NIC}
			if st, found := s.directory.Lookup(r.NIC); found {
				g.Student = &st
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[r.NIC] = i
		}
		groups[i].Records = append(groups[i].Records, s.view(r))
	}
	return groups
}
