// Package metrics exposes prometheus collectors for the kiosk.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"attendkiosk/internal/attendance"
)

// Collector counts mark outcomes and store health events. It implements
// attendance.Observer.
type Collector struct {
	marks        *prometheus.CounterVec
	writeFailed  prometheus.Counter
	corruptLoads prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		marks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "marks_total",
			Help:      "Attendance marks by direction and outcome.",
		}, []string{"direction", "outcome"}),
		writeFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "store_write_failures_total",
			Help:      "Writes rejected by the record store.",
		}),
		corruptLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "store_corrupt_loads_total",
			Help:      "Loads that found unparseable attendance data.",
		}),
	}
	reg.MustRegister(c.marks, c.writeFailed, c.corruptLoads)
	return c
}

var _ attendance.Observer = (*Collector)(nil)

func (c *Collector) MarkAccepted(direction attendance.Direction) {
	c.marks.WithLabelValues(string(direction), "accepted").Inc()
}

func (c *Collector) MarkRejected(direction attendance.Direction, reason string) {
	c.marks.WithLabelValues(string(direction), reason).Inc()
}

func (c *Collector) WriteFailed() { c.writeFailed.Inc() }

func (c *Collector) CorruptLoad() { c.corruptLoads.Inc() }
