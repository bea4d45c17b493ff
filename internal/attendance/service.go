package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Store     RecordStore
	Directory *Directory
	Clock     clock.Clock
	Location  *time.Location
	Logger    logrus.FieldLogger
	Observer  Observer
}

// Validate reports missing mandatory collaborators.
func (c ServiceConfig) Validate() error {
	if c.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if c.Directory == nil {
		return errors.NotValidf("nil Directory")
	}
	return nil
}

// Service owns the daily attendance state machine and is the only writer
// to the record store. Calls are processed one at a time.
type Service struct {
	store     RecordStore
	directory *Directory
	clock     clock.Clock
	loc       *time.Location
	log       logrus.FieldLogger
	observer  Observer

	mu sync.Mutex
}

// NewService creates a service. Clock, Location, Logger and Observer
// default to the wall clock, time.Local, the standard logrus logger and a
// no-op observer.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	s := &Service{
		store:     cfg.Store,
		directory: cfg.Directory,
		clock:     cfg.Clock,
		loc:       cfg.Location,
		log:       cfg.Logger,
		observer:  cfg.Observer,
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s, nil
}

// LookupStudent finds a student in the directory by exact NIC.
func (s *Service) LookupStudent(nic string) (Student, bool) {
	return s.directory.Lookup(nic)
}

// Today is the current calendar date in the service's location.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// GetStatus derives today's status for nic. Unknown students simply
// have no record and report NotMarked.
func (s *Service) GetStatus(ctx context.Context, nic string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return Status{}, errors.Trace(err)
	}
	today := s.Today()
	var current *Record
	if i := findRecord(records, nic, today); i >= 0 {
		current = &records[i]
	}
	st := StatusOf(current)
	st.Date = today
	return st, nil
}

// Mark applies an in or out mark for today. On any error the persisted
// collection is left as it was. Once the transition is accepted the write
// ignores cancellation of ctx.
func (s *Service) Mark(ctx context.Context, nic string, direction Direction) (Status, error) {
	if _, err := ParseDirection(string(direction)); err != nil {
		return Status{}, errors.Trace(err)
	}
	if _, ok := s.directory.Lookup(nic); !ok {
		return Status{}, errors.Annotatef(ErrStudentNotFound, "nic %s", nic)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return Status{}, errors.Trace(err)
	}

	now := s.now()
	today := now.Format(DateLayout)
	idx := findRecord(records, nic, today)

	var current *Record
	if idx >= 0 {
		current = &records[idx]
	}
	if err := checkTransition(StateOf(current), direction); err != nil {
		s.observer.MarkRejected(direction, err.Error())
		s.log.WithFields(logrus.Fields{
			"nic":       nic,
			"direction": direction,
		}).Info(err.Error())
		return Status{}, err
	}

	stamp := now.Format(TimeLayout)
	audit := FormatTimestamp(now)

	next := make([]Record, len(records), len(records)+1)
	copy(next, records)
	switch {
	case idx < 0:
		next = append(next, Record{
			NIC:         nic,
			Date:        today,
			InTime:      &stamp,
			CreatedAt:   audit,
			LastUpdated: audit,
		})
		idx = len(next) - 1
	case direction == DirectionIn:
		next[idx].InTime = &stamp
		next[idx].LastUpdated = audit
	default:
		next[idx].OutTime = &stamp
		next[idx].LastUpdated = audit
	}

	if err := s.store.Save(context.WithoutCancel(ctx), next); err != nil {
		if errors.Is(err, ErrWriteFailed) {
			s.observer.WriteFailed()
		}
		s.log.WithError(err).WithField("nic", nic).Error("saving attendance mark")
		return Status{}, errors.Annotatef(err, "marking %s for %s", direction, nic)
	}

	s.observer.MarkAccepted(direction)
	s.log.WithFields(logrus.Fields{
		"nic":       nic,
		"direction": direction,
		"time":      stamp,
	}).Info("attendance marked")
	st := StatusOf(&next[idx])
	st.Date = today
	st.At = now
	return st, nil
}

// ListToday returns today's records in collection order.
func (s *Service) ListToday(ctx context.Context) ([]Record, error) {
	today := s.Today()
	return s.filter(ctx, func(r Record) bool { return r.Date == today })
}

// ListAll returns every stored record.
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	return s.filter(ctx, func(Record) bool { return true })
}

// ListForStudent returns every record for nic.
func (s *Service) ListForStudent(ctx context.Context, nic string) ([]Record, error) {
	return s.filter(ctx, func(r Record) bool { return r.NIC == nic })
}

// ExportText serialises the full collection for backup.
func (s *Service) ExportText(ctx context.Context) (string, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return "", errors.Trace(err)
	}
	data, err := EncodeRecords(records, true)
	if err != nil {
		return "", errors.Annotate(err, "encoding export")
	}
	return string(data), nil
}

// ImportText replaces the whole collection with the records in text.
// Nothing is replaced unless the text parses and validates.
func (s *Service) ImportText(ctx context.Context, text string) (int, error) {
	records, err := ParseImport(text)
	if err != nil {
		return 0, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(context.WithoutCancel(ctx), records); err != nil {
		if errors.Is(err, ErrWriteFailed) {
			s.observer.WriteFailed()
		}
		return 0, errors.Annotate(err, "importing attendance data")
	}
	s.log.WithField("records", len(records)).Info("attendance data imported")
	return len(records), nil
}

func (s *Service) filter(ctx context.Context, keep func(Record) bool) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// load reads the collection. Corrupt data is logged and read as empty so
// the kiosk stays usable.
func (s *Service) load(ctx context.Context) ([]Record, error) {
	records, err := s.store.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.observer.CorruptLoad()
		s.log.WithError(err).Warn("attendance data unreadable, continuing with an empty collection")
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotate(err, "loading attendance records")
	}
	return records, nil
}

func findRecord(records []Record, nic, date string) int {
	for i := range records {
		if records[i].NIC == nic && records[i].Date == date {
			return i
		}
	}
	return -1
}
