// Package api exposes the attendance service over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"attendkiosk/internal/attendance"
	"attendkiosk/internal/auth"
	"attendkiosk/internal/queue"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Handler serves the kiosk and admin HTTP endpoints.
type Handler struct {
	svc    *attendance.Service
	gate   *auth.Gate
	events queue.Queue // nil disables mark events
	checks map[string]HealthCheck
	log    logrus.FieldLogger
}

// New builds a Handler. A nil events queue disables mark events.
func New(svc *attendance.Service, gate *auth.Gate, events queue.Queue, checks map[string]HealthCheck, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{svc: svc, gate: gate, events: events, checks: checks, log: logger}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.checks {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- Kiosk ----------

type nicURI struct {
	NIC string `uri:"nic" binding:"required,len=12,number"`
}

type markRequest struct {
	Direction string `json:"direction" binding:"required,oneof=in out"`
}

func bindNIC(c *gin.Context) (string, bool) {
	var uri nicURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nic must be 12 digits"})
		return "", false
	}
	return uri.NIC, true
}

func (h *Handler) GetStudent(c *gin.Context) {
	nic, ok := bindNIC(c)
	if !ok {
		return
	}
	student, found := h.svc.LookupStudent(nic)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) GetStatus(c *gin.Context) {
	nic, ok := bindNIC(c)
	if !ok {
		return
	}
	status, err := h.svc.GetStatus(c.Request.Context(), nic)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"nic": nic, "status": status}
	if student, found := h.svc.LookupStudent(nic); found {
		resp["student"] = student
	}
	c.JSON(http.StatusOK, resp)
}

// Mark records an in or out mark and publishes an event on success.
func (h *Handler) Mark(c *gin.Context) {
	nic, ok := bindNIC(c)
	if !ok {
		return
	}
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be \"in\" or \"out\""})
		return
	}
	direction := attendance.Direction(req.Direction)

	status, err := h.svc.Mark(c.Request.Context(), nic, direction)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c.Request.Context(), nic, direction, status)

	student, _ := h.svc.LookupStudent(nic)
	c.JSON(http.StatusOK, gin.H{
		"message": markMessage(direction),
		"student": student,
		"status":  status,
	})
}

func markMessage(d attendance.Direction) string {
	if d == attendance.DirectionIn {
		return "Marked in successfully"
	}
	return "Marked out successfully"
}

func (h *Handler) publish(ctx context.Context, nic string, d attendance.Direction, st attendance.Status) {
	if h.events == nil {
		return
	}
	evt := queue.Event{
		ID:        uuid.NewString(),
		Type:      queue.TypeMarked,
		NIC:       nic,
		Direction: string(d),
		Date:      st.Date,
		At:        st.At.UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := h.events.Publish(ctx, evt); err != nil {
		h.log.WithError(err).WithField("nic", nic).Warn("queue publish failed")
	}
}

// ---------- Admin ----------

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.gate.Login(req.Email, req.Password)
	if err != nil {
		h.log.WithField("email", req.Email).Warn("admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	resp := gin.H{"token": sess.Token}
	if !sess.ExpiresAt.IsZero() {
		resp["expires_at"] = sess.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	claims := c.MustGet(auth.ClaimsKey).(auth.Claims)
	h.gate.Logout(claims.ID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Today(c *gin.Context) {
	records, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": h.svc.Today(), "records": h.svc.Views(records)})
}

func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.svc.SummaryToday(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.svc.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": h.svc.Views(records)})
}

func (h *Handler) Grouped(c *gin.Context) {
	records, err := h.svc.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	groups := h.svc.GroupByStudent(records)
	if groups == nil {
		groups = []attendance.StudentGroup{}
	}
	c.JSON(http.StatusOK, gin.H{"students": groups})
}

func (h *Handler) StudentRecords(c *gin.Context) {
	nic, ok := bindNIC(c)
	if !ok {
		return
	}
	records, err := h.svc.ListForStudent(c.Request.Context(), nic)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"nic": nic, "records": h.svc.Views(records)}
	if student, found := h.svc.LookupStudent(nic); found {
		resp["student"] = student
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Export(c *gin.Context) {
	text, err := h.svc.ExportText(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(text))
}

func (h *Handler) Import(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	n, err := h.svc.ImportText(c.Request.Context(), string(body))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// fail maps service errors onto HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	var terr *attendance.TransitionError
	switch {
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, gin.H{"error": terr.Reason, "state": terr.State})
	case errors.Is(err, attendance.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
	case errors.Is(err, attendance.ErrMalformedInput), errors.Is(err, attendance.ErrInvalidDirection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrWriteFailed):
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": "attendance could not be saved"})
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
