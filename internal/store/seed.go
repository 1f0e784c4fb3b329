package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendagov/internal/auth"
	"agendagov/internal/model"
)

// SeedDemo loads the demo roster and a few appointments into the
// in-memory store for database-less runs. Same fixtures as the
// project's original seed: one user per role, viewer granted the
// mayor's calendar.
func SeedDemo(ctx context.Context, m *Memory) error {
	hash, err := auth.HashPassword("crm123")
	if err != nil {
		return err
	}
	now := time.Now()

	newUser := func(username, name string, role model.Role) *model.User {
		return &model.User{
			ID:           uuid.New().String(),
			Username:     username,
			Name:         name,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	admin := newUser("admin", "Administrador", model.RoleAdmin)
	mayor := newUser("prefeito", "Prefeito João Silva", model.RoleMayor)
	deputy := newUser("vice", "Vice-Prefeita Maria Costa", model.RoleDeputy)
	viewer := newUser("viewer", "Assessor de Gabinete", model.RoleViewer)
	viewer.CanViewCalendarsOf = []string{mayor.ID}

	users := m.Users()
	for _, u := range []*model.User{admin, mayor, deputy, viewer} {
		if err := users.Add(ctx, u); err != nil {
			return err
		}
	}

	appts := m.Appointments()
	day := model.Day(now)
	demo := []model.Appointment{
		{Title: "Reunião de alinhamento com os secretários", Date: day, Time: "08:00",
			AssignedTo: mayor.ID, Location: "Gabinete", Participants: "Todos os secretários"},
		{Title: "Posse do núcleo do bairro São João", Date: day.AddDate(0, 0, 1), Time: "14:00",
			AssignedTo: mayor.ID, Location: "Bairro São João", IsShared: true},
		{Title: "Visita à escola municipal", Date: day.AddDate(0, 0, 2), Time: "09:30",
			AssignedTo: deputy.ID, Location: "Escola Municipal Centro", IsShared: true},
	}
	for i := range demo {
		demo[i].ID = uuid.New().String()
		demo[i].CreatedAt = now
		demo[i].CreatedBy = admin.ID
		if err := appts.Add(ctx, &demo[i]); err != nil {
			return err
		}
	}
	return nil
}
