package attendance

import "context"

// RecordStore persists the whole record collection as one value.
// Load returns an error matching ErrCorrupt when the stored value cannot
// be parsed, and Save returns one matching ErrWriteFailed when the
// medium rejects the write.
type RecordStore interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Observer is notified about mark outcomes and store health.
type Observer interface {
	MarkAccepted(direction Direction)
	MarkRejected(direction Direction, reason string)
	WriteFailed()
	CorruptLoad()
}

type nopObserver struct{}

func (nopObserver) MarkAccepted(Direction)         {}
func (nopObserver) MarkRejected(Direction, string) {}
func (nopObserver) WriteFailed()                   {}
func (nopObserver) CorruptLoad()                   {}
