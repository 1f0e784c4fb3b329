package model

import "time"

// Role is the closed set of user roles. The resolver switches on it
// exhaustively; adding a role means touching every switch.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMayor  Role = "mayor"
	RoleDeputy Role = "deputy_mayor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMayor, RoleDeputy, RoleViewer:
		return true
	}
	return false
}

// Executive reports whether r is one of the two paired leadership
// roles whose appointments can be mutually shared.
func (r Role) Executive() bool {
	return r == RoleMayor || r == RoleDeputy
}

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	Role         Role
	// CanViewCalendarsOf lists the users whose calendars a viewer has
	// been granted access to. Empty for every other role.
	CanViewCalendarsOf []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Appointment struct {
	ID            string
	Title         string
	Date          time.Time // civil date, midnight UTC
	Time          string    // zero-padded "HH:MM"
	AssignedTo    string    // owning user; visibility anchor
	Location      string
	Notes         string
	ContactPerson string
	Participants  string
	IsShared      bool // visible to the counterpart executive
	IsCompleted   bool
	CreatedAt     time.Time
	CreatedBy     string
	UpdatedAt     time.Time
	UpdatedBy     string
}

// Day strips the clock from t, keeping the civil date at midnight UTC.
// All date comparisons in the engine operate on Day-normalized values.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
