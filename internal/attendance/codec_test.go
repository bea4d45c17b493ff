package attendance

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDecodeKeepsNullsAndTimestamps(t *testing.T) {
	c := qt.New(t)
	in := `[{"nic":"200012345678","date":"2026-10-17","inTime":"08:01","outTime":null,"timestamp":"2026-10-17T08:01:12.345Z","lastUpdated":"2026-10-17T08:01:12.345Z"}]`

	records, err := DecodeRecords([]byte(in))
	c.Assert(err, qt.IsNil)
	c.Assert(records, qt.HasLen, 1)
	c.Assert(records[0].OutTime, qt.IsNil)
	c.Assert(records[0].CreatedAt, qt.Equals, "2026-10-17T08:01:12.345Z")

	out, err := EncodeRecords(records, false)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, in)
}

func TestDecodeAcceptsCreatedAt(t *testing.T) {
	c := qt.New(t)
	in := `[{"nic":"200012345678","date":"2026-10-17","inTime":"08:01","outTime":null,"createdAt":"2026-10-17T08:01:00.000Z","lastUpdated":"2026-10-17T08:01:00.000Z"}]`
	records, err := DecodeRecords([]byte(in))
	c.Assert(err, qt.IsNil)
	c.Assert(records[0].CreatedAt, qt.Equals, "2026-10-17T08:01:00.000Z")
	c.Assert(records[0].LegacyCreatedAt, qt.IsTrue)

	out, err := EncodeRecords(records, false)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, in)

	again, err := DecodeRecords(out)
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.DeepEquals, records)
}

func TestRecordViewFlattensRecord(t *testing.T) {
	c := qt.New(t)
	in := "08:00"
	out, err := codec.Marshal(RecordView{
		Record:      Record{NIC: "200012345678", Date: "2026-10-17", InTime: &in},
		StudentName: "Alice Perera",
		State:       In,
		Label:       "Present",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, `{"nic":"200012345678","date":"2026-10-17","inTime":"08:00","outTime":null,"studentName":"Alice Perera","state":"IN","label":"Present"}`)
}

func TestParseImportChecksFieldFormats(t *testing.T) {
	c := qt.New(t)
	for _, text := range []string{
		`[{"nic":"200012345678","date":"2026-10-17","inTime":"9:05"}]`,
		`[{"nic":"200012345678","date":"2026-10-17","inTime":"09:05","outTime":"5:00"}]`,
		`[{"nic":"200012345678","date":"2026-10-17","inTime":"09:05","timestamp":"garbage"}]`,
		`[{"nic":"200012345678","date":"2026-10-17","inTime":"09:05","lastUpdated":"2026-10-17 09:05"}]`,
		`[{"nic":"200012345678","date":"2026-10-17","inTime":"09:05","createdAt":"yesterday"}]`,
	} {
		_, err := ParseImport(text)
		c.Check(err, qt.ErrorIs, ErrMalformedInput, qt.Commentf("input %s", text))
	}

	records, err := ParseImport(`[{"nic":"200012345678","date":"2026-10-17","inTime":"09:05","outTime":"17:00","timestamp":"2026-10-17T03:35:00.123Z","lastUpdated":"2026-10-17T11:30:00+05:30"}]`)
	c.Assert(err, qt.IsNil)
	c.Assert(records, qt.HasLen, 1)
}

func TestEncodeIndented(t *testing.T) {
	c := qt.New(t)
	out, err := EncodeRecords(nil, true)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, "[]")

	in := "08:00"
	out, err = EncodeRecords([]Record{{NIC: "200012345678", Date: "2026-10-17", InTime: &in}}, true)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, `[
  {
    "nic": "200012345678",
    "date": "2026-10-17",
    "inTime": "08:00",
    "outTime": null
  }
]`)
}

func TestStatusDerivation(t *testing.T) {
	c := qt.New(t)
	in, out := "08:00", "16:00"

	c.Assert(StatusOf(nil), qt.DeepEquals, Status{State: NotMarked, CanMarkIn: true})
	c.Assert(StatusOf(&Record{}), qt.DeepEquals, Status{State: NotMarked, CanMarkIn: true})
	c.Assert(StatusOf(&Record{InTime: &in}), qt.DeepEquals, Status{State: In, InTime: &in, CanMarkOut: true})
	c.Assert(StatusOf(&Record{InTime: &in, OutTime: &out}), qt.DeepEquals, Status{State: Completed, InTime: &in, OutTime: &out})
}

func TestParseDirection(t *testing.T) {
	c := qt.New(t)
	d, err := ParseDirection("out")
	c.Assert(err, qt.IsNil)
	c.Assert(d, qt.Equals, DirectionOut)

	_, err = ParseDirection("IN")
	c.Assert(err, qt.ErrorIs, ErrInvalidDirection)
}
