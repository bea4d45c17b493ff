package attendance

import (
	"time"

	"github.com/juju/errors"
)

const (
	// DateLayout is the calendar-day granularity of a record.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock precision of an in/out mark.
	TimeLayout = "15:04"
	// TimestampLayout matches the ISO-8601 audit stamps kept on records.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Student is a directory entry. Students are reference data and never mutated here.
type Student struct {
	NIC            string `json:"nic" validate:"required,len=12,number"`
	FullName       string `json:"fullName" validate:"required"`
	ProfilePicture string `json:"profilePicture"`
}

// Record is one student's attendance for one calendar day.
type Record struct {
	NIC         string  `json:"nic" validate:"required,len=12,number"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	InTime      *string `json:"inTime" validate:"omitempty,len=5,datetime=15:04"`
	OutTime     *string `json:"outTime" validate:"omitempty,len=5,datetime=15:04"`
	CreatedAt   string  `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LastUpdated string  `json:"lastUpdated,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	// LegacyCreatedAt is set when the record was read with the "createdAt"
	// key; it is written back under the same key.
	LegacyCreatedAt bool `json:"-"`
}

// recordFields has Record's layout without its JSON methods.
type recordFields Record

type legacyRecord struct {
	NIC             string  `json:"nic"`
	Date            string  `json:"date"`
	InTime          *string `json:"inTime"`
	OutTime         *string `json:"outTime"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	LastUpdated     string  `json:"lastUpdated,omitempty"`
	LegacyCreatedAt bool    `json:"-"`
}

// MarshalJSON writes the creation stamp under the key it was read with.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.LegacyCreatedAt {
		return codec.Marshal(legacyRecord(r))
	}
	return codec.Marshal(recordFields(r))
}

// UnmarshalJSON accepts "createdAt" as an alias of "timestamp".
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux struct {
		recordFields
		CreatedAtAlias string `json:"createdAt"`
	}
	if err := codec.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record(aux.recordFields)
	r.LegacyCreatedAt = false
	if r.CreatedAt == "" && aux.CreatedAtAlias != "" {
		r.CreatedAt = aux.CreatedAtAlias
		r.LegacyCreatedAt = true
	}
	return nil
}

// State is the per-student, per-day attendance state.
type State string

const (
	NotMarked State = "NOT_MARKED"
	In        State = "IN"
	Completed State = "COMPLETED"
)

// Direction is the kind of mark requested at the kiosk.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ParseDirection validates a direction supplied by a caller.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionIn, DirectionOut:
		return d, nil
	}
	return "", errors.Annotatef(ErrInvalidDirection, "%q", s)
}

// Status is the derived view of today's record for one student.
type Status struct {
	Date       string  `json:"date,omitempty"`
	State      State   `json:"state"`
	InTime     *string `json:"inTime"`
	OutTime    *string `json:"outTime"`
	CanMarkIn  bool    `json:"canMarkIn"`
	CanMarkOut bool    `json:"canMarkOut"`

	// At is the clock reading a mark was applied with. Zero for lookups.
	At time.Time `json:"-"`
}

// StateOf derives the state of a record. A nil record means nothing was
// marked today. A record without an in time is treated as not marked.
func StateOf(r *Record) State {
	switch {
	case r == nil || r.InTime == nil:
		return NotMarked
	case r.OutTime == nil:
		return In
	default:
		return Completed
	}
}

// StatusOf derives the full status for a record, which may be nil.
func StatusOf(r *Record) Status {
	state := StateOf(r)
	st := Status{
		State:      state,
		CanMarkIn:  state == NotMarked,
		CanMarkOut: state == In,
	}
	if state != NotMarked {
		st.InTime = r.InTime
		st.OutTime = r.OutTime
	}
	return st
}

// FormatTimestamp renders an audit timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
