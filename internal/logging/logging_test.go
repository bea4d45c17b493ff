package logging

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
)

func TestNewLevel(t *testing.T) {
	c := qt.New(t)
	c.Assert(New("debug").GetLevel(), qt.Equals, logrus.DebugLevel)
	c.Assert(New("loud").GetLevel(), qt.Equals, logrus.InfoLevel)

	_, ok := New("info").Formatter.(*logrus.JSONFormatter)
	c.Assert(ok, qt.IsTrue)
}
