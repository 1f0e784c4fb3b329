package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agendagov/internal/model"
)

var (
	ErrNotFound     = errors.New("appointment not found")
	ErrUserNotFound = errors.New("user not found")
)

// UserRepo is the roster as the engine needs it. Implementations must
// return agenda.ErrUserNotFound from Get/GetByUsername on a miss.
type UserRepo interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Add(ctx context.Context, u *model.User) error
	Put(ctx context.Context, u *model.User) error
	Remove(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

// AppointmentRepo is the appointment store. Get returns
// agenda.ErrNotFound on a miss; Remove of a missing id is a no-op.
type AppointmentRepo interface {
	List(ctx context.Context) ([]model.Appointment, error)
	Get(ctx context.Context, id string) (*model.Appointment, error)
	Add(ctx context.Context, a *model.Appointment) error
	Put(ctx context.Context, a *model.Appointment) error
	Remove(ctx context.Context, id string) error
}

type Clock func() time.Time

// FlagPolicy decides what an update does to IsShared/IsCompleted when
// the caller omits them. Earlier revisions of this system reset both
// flags to false on every partial update; preserving is the default.
type FlagPolicy int

const (
	FlagsPreserveOmitted FlagPolicy = iota
	FlagsResetOmitted
)

// Service wires the pure resolution functions to the repositories and
// owns the mutation operations with their audit stamping.
type Service struct {
	users UserRepo
	appts AppointmentRepo
	now   Clock
	flags FlagPolicy
}

func NewService(users UserRepo, appts AppointmentRepo, now Clock, flags FlagPolicy) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, appts: appts, now: now, flags: flags}
}

// VisibleFor resolves everything the viewer may see, unwindowed.
func (s *Service) VisibleFor(ctx context.Context, viewer *model.User) ([]model.Appointment, error) {
	appointments, err := s.appts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ResolveVisible(viewer.ID, viewer.Role, viewer.CanViewCalendarsOf, appointments, users), nil
}

// CalendarView is the list behind the day/week/month calendar pages:
// resolve, window at ref, canonical sort.
func (s *Service) CalendarView(ctx context.Context, viewer *model.User, ref time.Time, kind WindowKind) ([]model.Appointment, error) {
	visible, err := s.VisibleFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return Sort(Window(visible, ref, kind)), nil
}

// WeeklyCount counts the viewer's visible appointments in the current
// Monday-anchored week.
func (s *Service) WeeklyCount(ctx context.Context, viewer *model.User) (int, error) {
	visible, err := s.VisibleFor(ctx, viewer)
	if err != nil {
		return 0, err
	}
	return len(Window(visible, s.now(), WindowWeek)), nil
}

// Upcoming returns the viewer's next appointments from today onward,
// sorted, truncated to limit (5 if limit <= 0).
func (s *Service) Upcoming(ctx context.Context, viewer *model.User, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 5
	}
	visible, err := s.VisibleFor(ctx, viewer)
	if err != nil {
		return nil, err
	}
	out := Sort(Window(visible, s.now(), WindowUpcoming))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppointmentDraft carries the caller-supplied fields for Create.
type AppointmentDraft struct {
	Title         string
	Date          time.Time
	Time          string
	AssignedTo    string
	Location      string
	Notes         string
	ContactPerson string
	Participants  string
	IsShared      bool
	IsCompleted   bool
}

// AppointmentChanges is a partial update; nil fields are left alone.
// Nil IsShared/IsCompleted follow the service's FlagPolicy.
type AppointmentChanges struct {
	Title         *string
	Date          *time.Time
	Time          *string
	AssignedTo    *string
	Location      *string
	Notes         *string
	ContactPerson *string
	Participants  *string
	IsShared      *bool
	IsCompleted   *bool
}

// Appointment fetches one record by id, ErrNotFound on a miss.
func (s *Service) Appointment(ctx context.Context, id string) (*model.Appointment, error) {
	return s.appts.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, draft AppointmentDraft, createdBy string) (*model.Appointment, error) {
	a := &model.Appointment{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Date:          model.Day(draft.Date),
		Time:          draft.Time,
		AssignedTo:    draft.AssignedTo,
		Location:      draft.Location,
		Notes:         draft.Notes,
		ContactPerson: draft.ContactPerson,
		Participants:  draft.Participants,
		IsShared:      draft.IsShared,
		IsCompleted:   draft.IsCompleted,
		CreatedAt:     s.now(),
		CreatedBy:     createdBy,
	}
	if err := s.appts.Add(ctx, a); err != nil {
		return nil, fmt.Errorf("add appointment: %w", err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id string, changes AppointmentChanges, updatedBy string) (*model.Appointment, error) {
	a, err := s.appts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil {
		a.Title = *changes.Title
	}
	if changes.Date != nil {
		a.Date = model.Day(*changes.Date)
	}
	if changes.Time != nil {
		a.Time = *changes.Time
	}
	if changes.AssignedTo != nil {
		a.AssignedTo = *changes.AssignedTo
	}
	if changes.Location != nil {
		a.Location = *changes.Location
	}
	if changes.Notes != nil {
		a.Notes = *changes.Notes
	}
	if changes.ContactPerson != nil {
		a.ContactPerson = *changes.ContactPerson
	}
	if changes.Participants != nil {
		a.Participants = *changes.Participants
	}

	switch {
	case changes.IsShared != nil:
		a.IsShared = *changes.IsShared
	case s.flags == FlagsResetOmitted:
		a.IsShared = false
	}
	switch {
	case changes.IsCompleted != nil:
		a.IsCompleted = *changes.IsCompleted
	case s.flags == FlagsResetOmitted:
		a.IsCompleted = false
	}

	a.UpdatedAt = s.now()
	a.UpdatedBy = updatedBy

	if err := s.appts.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("put appointment: %w", err)
	}
	return a, nil
}

// Delete removes the appointment if present. Deleting a missing id is
// deliberately not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.appts.Remove(ctx, id)
}
