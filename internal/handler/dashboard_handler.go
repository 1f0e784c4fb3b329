package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// WeeklyCount returns how many appointments the caller can see in the
// current Monday-anchored week.
func (h *Handler) WeeklyCount(c *gin.Context) {
	u, ok := h.viewer(c)
	if !ok {
		return
	}
	n, err := h.svc.WeeklyCount(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Upcoming returns the caller's next appointments from today onward.
func (h *Handler) Upcoming(c *gin.Context) {
	u, ok := h.viewer(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	appts, err := h.svc.Upcoming(c.Request.Context(), u, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": toAppointmentList(appts)})
}
