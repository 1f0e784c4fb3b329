package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"agendagov/internal/agenda"
	"agendagov/internal/middleware"
	"agendagov/internal/model"
)

var timeOfDay = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// viewer loads the full roster record of the authenticated caller; the
// token only carries id and role, visibility grants live in the store.
func (h *Handler) viewer(c *gin.Context) (*model.User, bool) {
	u, err := h.svc.User(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	return u, true
}

// ListAppointments serves the calendar pages:
// GET /appointments?view=day|week|month&date=YYYY-MM-DD
func (h *Handler) ListAppointments(c *gin.Context) {
	u, ok := h.viewer(c)
	if !ok {
		return
	}

	kind, ok := agenda.ParseWindowKind(c.DefaultQuery("view", "month"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be day, week, month or upcoming"})
		return
	}

	ref := time.Now()
	if ds := c.Query("date"); ds != "" {
		var err error
		if ref, err = time.Parse(dateLayout, ds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	appts, err := h.svc.CalendarView(c.Request.Context(), u, ref, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": toAppointmentList(appts)})
}

type createAppointmentRequest struct {
	Title         string `json:"title" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	AssignedTo    string `json:"assignedTo"`
	Location      string `json:"location"`
	Notes         string `json:"notes"`
	ContactPerson string `json:"contactPerson"`
	Participants  string `json:"participants"`
	IsShared      bool   `json:"isShared"`
	IsCompleted   bool   `json:"isCompleted"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	if middleware.Role(c) == model.RoleViewer {
		c.JSON(http.StatusForbidden, gin.H{"error": "viewers cannot create appointments"})
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, date and time required"})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if !timeOfDay.MatchString(req.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM"})
		return
	}

	callerID := middleware.UserID(c)
	assignedTo := req.AssignedTo
	if assignedTo == "" || middleware.Role(c) != model.RoleAdmin {
		// executives book on their own calendar; only admins assign
		assignedTo = callerID
	}
	if _, err := h.svc.User(c.Request.Context(), assignedTo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo must reference an existing user"})
		return
	}

	a, err := h.svc.Create(c.Request.Context(), agenda.AppointmentDraft{
		Title:         req.Title,
		Date:          date,
		Time:          req.Time,
		AssignedTo:    assignedTo,
		Location:      req.Location,
		Notes:         req.Notes,
		ContactPerson: req.ContactPerson,
		Participants:  req.Participants,
		IsShared:      req.IsShared,
		IsCompleted:   req.IsCompleted,
	}, callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": toAppointmentResponse(a)})
}

type updateAppointmentRequest struct {
	Title         *string `json:"title"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	AssignedTo    *string `json:"assignedTo"`
	Location      *string `json:"location"`
	Notes         *string `json:"notes"`
	ContactPerson *string `json:"contactPerson"`
	Participants  *string `json:"participants"`
	IsShared      *bool   `json:"isShared"`
	IsCompleted   *bool   `json:"isCompleted"`
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	if middleware.Role(c) == model.RoleViewer {
		c.JSON(http.StatusForbidden, gin.H{"error": "viewers cannot edit appointments"})
		return
	}

	id := c.Param("id")
	existing, err := h.svc.Appointment(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	// ownership — 404 not 403 to hide existence
	if middleware.Role(c) != model.RoleAdmin && existing.AssignedTo != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	changes := agenda.AppointmentChanges{
		Title:         req.Title,
		Time:          req.Time,
		Location:      req.Location,
		Notes:         req.Notes,
		ContactPerson: req.ContactPerson,
		Participants:  req.Participants,
		IsShared:      req.IsShared,
		IsCompleted:   req.IsCompleted,
	}
	if req.Date != nil {
		d, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		changes.Date = &d
	}
	if req.Time != nil && !timeOfDay.MatchString(*req.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM"})
		return
	}
	if req.AssignedTo != nil {
		if middleware.Role(c) != model.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only admins reassign appointments"})
			return
		}
		if _, err := h.svc.User(c.Request.Context(), *req.AssignedTo); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo must reference an existing user"})
			return
		}
		changes.AssignedTo = req.AssignedTo
	}

	a, err := h.svc.Update(c.Request.Context(), id, changes, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, agenda.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": toAppointmentResponse(a)})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if middleware.Role(c) == model.RoleViewer {
		c.JSON(http.StatusForbidden, gin.H{"error": "viewers cannot delete appointments"})
		return
	}

	id := c.Param("id")
	existing, err := h.svc.Appointment(c.Request.Context(), id)
	if err == nil {
		if middleware.Role(c) != model.RoleAdmin && existing.AssignedTo != middleware.UserID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
	}
	// deleting an id that's already gone is fine

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
