package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gin-gonic/gin"
)

func TestAllowPerClient(t *testing.T) {
	c := qt.New(t)
	l := NewClientLimiter(2)
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	c.Assert(l.Allow("a", now), qt.IsTrue)
	c.Assert(l.Allow("a", now), qt.IsTrue)
	c.Assert(l.Allow("a", now), qt.IsFalse)
	c.Assert(l.Allow("b", now), qt.IsTrue)

	c.Assert(l.Allow("a", now.Add(30*time.Second)), qt.IsTrue)
}

func TestIdleClientsDropped(t *testing.T) {
	c := qt.New(t)
	l := NewClientLimiter(1)
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	l.Allow("a", now)
	l.Allow("b", now.Add(11*time.Minute))
	c.Assert(l.clients, qt.HasLen, 1)
}

func TestGinMiddleware(t *testing.T) {
	c := qt.New(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewClientLimiter(1).GinMiddleware())
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	c.Assert(codes, qt.DeepEquals, []int{http.StatusNoContent, http.StatusTooManyRequests})
}
