// Package backup writes export snapshots of the attendance collection.
package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"attendkiosk/internal/queue"
)

// Exporter produces the textual export of the collection.
type Exporter interface {
	ExportText(ctx context.Context) (string, error)
}

// Snapshotter keeps one snapshot file per day in dir, rewritten after
// every mark event for that day.
type Snapshotter struct {
	dir      string
	exporter Exporter
	log      logrus.FieldLogger
}

// NewSnapshotter creates dir if needed.
func NewSnapshotter(dir string, exporter Exporter, logger logrus.FieldLogger) (*Snapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Annotatef(err, "creating backup dir %s", dir)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Snapshotter{dir: dir, exporter: exporter, log: logger}, nil
}

// Path is the snapshot file for date.
func (s *Snapshotter) Path(date string) string {
	return filepath.Join(s.dir, "attendance-"+date+".json")
}

// Handle writes a snapshot for mark events and ignores everything else.
func (s *Snapshotter) Handle(ctx context.Context, evt queue.Event) error {
	if evt.Type != queue.TypeMarked {
		return nil
	}
	if evt.Date == "" {
		return errors.NotValidf("mark event %s without date", evt.ID)
	}
	text, err := s.exporter.ExportText(ctx)
	if err != nil {
		return errors.Annotate(err, "exporting attendance")
	}
	path := s.Path(evt.Date)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return errors.Trace(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Trace(err)
	}
	s.log.WithFields(logrus.Fields{"path": path, "event": evt.ID}).Debug("snapshot written")
	return nil
}

// Run consumes events until the channel closes or ctx is done. Handler
// errors are logged and do not stop the loop.
func (s *Snapshotter) Run(ctx context.Context, events <-chan queue.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := s.Handle(ctx, evt); err != nil {
				s.log.WithError(err).WithField("event", evt.ID).Error("snapshot failed")
			}
		}
	}
}
