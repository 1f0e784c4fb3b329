package agenda

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"agendagov/internal/model"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrLastAdmin   = errors.New("cannot delete the last admin")
	ErrSelfDelete  = errors.New("cannot delete yourself")
)

// UserDraft carries the fields an admin supplies when creating or
// editing a roster entry. PasswordHash is already hashed by the caller.
type UserDraft struct {
	Username           string
	Name               string
	PasswordHash       string
	Role               model.Role
	CanViewCalendarsOf []string
}

func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *Service) User(ctx context.Context, id string) (*model.User, error) {
	return s.users.Get(ctx, id)
}

func (s *Service) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *Service) CreateUser(ctx context.Context, draft UserDraft) (*model.User, error) {
	if !draft.Role.Valid() {
		return nil, ErrInvalidRole
	}
	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     draft.Username,
		Name:         draft.Name,
		PasswordHash: draft.PasswordHash,
		Role:         draft.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// grants only mean something for viewers
	if draft.Role == model.RoleViewer {
		u.CanViewCalendarsOf = draft.CanViewCalendarsOf
	}
	if err := s.users.Add(ctx, u); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, draft UserDraft) (*model.User, error) {
	if !draft.Role.Valid() {
		return nil, ErrInvalidRole
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Username = draft.Username
	u.Name = draft.Name
	u.Role = draft.Role
	if draft.PasswordHash != "" {
		u.PasswordHash = draft.PasswordHash
	}
	if draft.Role == model.RoleViewer {
		u.CanViewCalendarsOf = draft.CanViewCalendarsOf
	} else {
		u.CanViewCalendarsOf = nil
	}
	u.UpdatedAt = s.now()
	if err := s.users.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("put user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a roster entry. The acting admin cannot delete
// themselves, and the roster must keep at least one admin.
func (s *Service) DeleteUser(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrSelfDelete
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == model.RoleAdmin {
		n, err := s.users.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}
	return s.users.Remove(ctx, id)
}
