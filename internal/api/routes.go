package api

import (
	"github.com/gin-gonic/gin"

	"attendkiosk/internal/auth"
)

// Register mounts the kiosk and admin routes on r. Middleware applied to
// the kiosk group only is passed in kioskMW.
func (h *Handler) Register(r gin.IRouter, kioskMW ...gin.HandlerFunc) {
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		kiosk := api.Group("", kioskMW...)
		kiosk.GET("/students/:nic", h.GetStudent)
		kiosk.GET("/attendance/:nic/status", h.GetStatus)
		kiosk.POST("/attendance/:nic/mark", h.Mark)

		api.POST("/admin/login", h.Login)

		admin := api.Group("/admin", auth.AdminAuth(h.gate))
		admin.POST("/logout", h.Logout)
		admin.GET("/attendance", h.ListRecords)
		admin.GET("/attendance/today", h.Today)
		admin.GET("/attendance/summary", h.Summary)
		admin.GET("/attendance/grouped", h.Grouped)
		admin.GET("/attendance/students/:nic", h.StudentRecords)
		admin.GET("/export", h.Export)
		admin.POST("/import", h.Import)
	}
}
