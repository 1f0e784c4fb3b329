package handler

import (
	"context"
	"time"

	"agendagov/internal/agenda"
	"agendagov/internal/model"
	"agendagov/internal/store"
)

const dateLayout = "2006-01-02"

// RefreshTokens is the persistence the auth endpoints need for the
// refresh-token rotation scheme.
type RefreshTokens interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	Rotate(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAll(ctx context.Context, userID string) error
}

type Handler struct {
	svc    *agenda.Service
	tokens RefreshTokens
	secret string
}

func New(svc *agenda.Service, tokens RefreshTokens, secret string) *Handler {
	return &Handler{svc: svc, tokens: tokens, secret: secret}
}

type userResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Name               string     `json:"name"`
	Role               model.Role `json:"role"`
	CanViewCalendarsOf []string   `json:"canViewCalendarsOf,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// password hash never leaves the server
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Role:               u.Role,
		CanViewCalendarsOf: u.CanViewCalendarsOf,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type appointmentResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	AssignedTo    string     `json:"assignedTo"`
	Location      string     `json:"location,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ContactPerson string     `json:"contactPerson,omitempty"`
	Participants  string     `json:"participants,omitempty"`
	IsShared      bool       `json:"isShared"`
	IsCompleted   bool       `json:"isCompleted"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy     string     `json:"updatedBy,omitempty"`
}

func toAppointmentResponse(a *model.Appointment) appointmentResponse {
	r := appointmentResponse{
		ID:            a.ID,
		Title:         a.Title,
		Date:          a.Date.Format(dateLayout),
		Time:          a.Time,
		AssignedTo:    a.AssignedTo,
		Location:      a.Location,
		Notes:         a.Notes,
		ContactPerson: a.ContactPerson,
		Participants:  a.Participants,
		IsShared:      a.IsShared,
		IsCompleted:   a.IsCompleted,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		UpdatedBy:     a.UpdatedBy,
	}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}

func toAppointmentList(appts []model.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, len(appts))
	for i := range appts {
		out[i] = toAppointmentResponse(&appts[i])
	}
	return out
}
