package queue

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestInMemoryPublishConsume(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	evt := Event{ID: "1", Type: TypeMarked, NIC: "200012345678", Direction: "in", Date: "2026-10-17"}
	c.Assert(q.Publish(ctx, evt), qt.IsNil)

	ch, err := q.Consume(ctx)
	c.Assert(err, qt.IsNil)
	select {
	case got := <-ch:
		c.Assert(got, qt.DeepEquals, evt)
	case <-time.After(time.Second):
		c.Fatal("timed out waiting for event")
	}

	cancel()
	for range ch {
	}
}

func TestPublishHonoursContext(t *testing.T) {
	c := qt.New(t)
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Assert(q.Publish(ctx, Event{Type: TypeMarked}), qt.ErrorIs, context.Canceled)
}

func TestEncodeDecode(t *testing.T) {
	c := qt.New(t)
	at := time.Date(2026, 10, 17, 8, 5, 0, 0, time.UTC)
	data, err := Encode(Event{ID: "x", Type: TypeMarked, NIC: "200012345678", Direction: "out", Date: "2026-10-17", At: at})
	c.Assert(err, qt.IsNil)

	evt, err := Decode(data)
	c.Assert(err, qt.IsNil)
	c.Assert(evt.Direction, qt.Equals, "out")
	c.Assert(evt.At.Equal(at), qt.IsTrue)

	_, err = Decode([]byte(`{"nic":"200012345678"}`))
	c.Assert(err, qt.ErrorMatches, "event without type not valid")
	_, err = Decode([]byte(`nope`))
	c.Assert(err, qt.ErrorMatches, "decoding event: .*")
}
