package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agendagov/internal/agenda"
	"agendagov/internal/model"
)

type AppointmentStore struct {
	pool *pgxpool.Pool
}

const apptCols = `id, title, date, time, assigned_to, location, notes, contact_person,
	participants, is_shared, is_completed, created_at, created_by, updated_at, updated_by`

func scanAppointment(scan func(dest ...any) error) (*model.Appointment, error) {
	a := &model.Appointment{}
	var updatedAt *time.Time
	var updatedBy *string
	err := scan(&a.ID, &a.Title, &a.Date, &a.Time, &a.AssignedTo, &a.Location, &a.Notes,
		&a.ContactPerson, &a.Participants, &a.IsShared, &a.IsCompleted,
		&a.CreatedAt, &a.CreatedBy, &updatedAt, &updatedBy)
	if err != nil {
		return nil, err
	}
	if updatedAt != nil {
		a.UpdatedAt = *updatedAt
	}
	if updatedBy != nil {
		a.UpdatedBy = *updatedBy
	}
	// date column is DATE; normalize to midnight UTC regardless of the
	// session time zone pgx decoded with
	a.Date = model.Day(a.Date)
	return a, nil
}

func (s *AppointmentStore) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *AppointmentStore) Get(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, agenda.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentStore) Add(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments
		   (id, title, date, time, assigned_to, location, notes, contact_person,
		    participants, is_shared, is_completed, created_at, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.Title, a.Date, a.Time, a.AssignedTo, a.Location, a.Notes, a.ContactPerson,
		a.Participants, a.IsShared, a.IsCompleted, a.CreatedAt, a.CreatedBy,
	)
	return err
}

func (s *AppointmentStore) Put(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET title=$1, date=$2, time=$3, assigned_to=$4, location=$5, notes=$6,
		     contact_person=$7, participants=$8, is_shared=$9, is_completed=$10,
		     updated_at=$11, updated_by=$12
		 WHERE id=$13`,
		a.Title, a.Date, a.Time, a.AssignedTo, a.Location, a.Notes,
		a.ContactPerson, a.Participants, a.IsShared, a.IsCompleted,
		a.UpdatedAt, a.UpdatedBy, a.ID,
	)
	return err
}

// Remove deletes the row if it exists; a missing id is not an error.
func (s *AppointmentStore) Remove(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}
