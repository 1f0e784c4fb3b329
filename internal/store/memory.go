package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"agendagov/internal/agenda"
	"agendagov/internal/model"
)

// Memory is a mutex-guarded in-memory implementation of the same
// repositories. It backs the tests and the database-less dev mode; the
// ordered id slices keep List output deterministic across calls.
type Memory struct {
	mu sync.RWMutex

	users     map[string]model.User
	userOrder []string

	appts     map[string]model.Appointment
	apptOrder []string

	tokens map[string]RefreshToken // keyed by token hash
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]model.User),
		appts:  make(map[string]model.Appointment),
		tokens: make(map[string]RefreshToken),
	}
}

func (m *Memory) Users() *MemUsers               { return &MemUsers{m} }
func (m *Memory) Appointments() *MemAppointments { return &MemAppointments{m} }
func (m *Memory) RefreshTokens() *MemTokens      { return &MemTokens{m} }

type MemUsers struct{ m *Memory }

func (s *MemUsers) List(ctx context.Context) ([]model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]model.User, 0, len(s.m.userOrder))
	for _, id := range s.m.userOrder {
		out = append(out, s.m.users[id])
	}
	return out, nil
}

func (s *MemUsers) Get(ctx context.Context, id string) (*model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, agenda.ErrUserNotFound
	}
	return &u, nil
}

func (s *MemUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, id := range s.m.userOrder {
		if u := s.m.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, agenda.ErrUserNotFound
}

func (s *MemUsers) Add(ctx context.Context, u *model.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[u.ID]; !ok {
		s.m.userOrder = append(s.m.userOrder, u.ID)
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s *MemUsers) Put(ctx context.Context, u *model.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[u.ID]; !ok {
		return agenda.ErrUserNotFound
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s *MemUsers) Remove(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[id]; !ok {
		return nil
	}
	delete(s.m.users, id)
	for i, oid := range s.m.userOrder {
		if oid == id {
			s.m.userOrder = append(s.m.userOrder[:i], s.m.userOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemUsers) CountByRole(ctx context.Context, role model.Role) (int, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	n := 0
	for _, u := range s.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type MemAppointments struct{ m *Memory }

func (s *MemAppointments) List(ctx context.Context) ([]model.Appointment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]model.Appointment, 0, len(s.m.apptOrder))
	for _, id := range s.m.apptOrder {
		out = append(out, s.m.appts[id])
	}
	return out, nil
}

func (s *MemAppointments) Get(ctx context.Context, id string) (*model.Appointment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.appts[id]
	if !ok {
		return nil, agenda.ErrNotFound
	}
	return &a, nil
}

func (s *MemAppointments) Add(ctx context.Context, a *model.Appointment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.appts[a.ID]; !ok {
		s.m.apptOrder = append(s.m.apptOrder, a.ID)
	}
	s.m.appts[a.ID] = *a
	return nil
}

func (s *MemAppointments) Put(ctx context.Context, a *model.Appointment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.appts[a.ID]; !ok {
		return agenda.ErrNotFound
	}
	s.m.appts[a.ID] = *a
	return nil
}

func (s *MemAppointments) Remove(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.appts[id]; !ok {
		return nil
	}
	delete(s.m.appts, id)
	for i, oid := range s.m.apptOrder {
		if oid == id {
			s.m.apptOrder = append(s.m.apptOrder[:i], s.m.apptOrder[i+1:]...)
			break
		}
	}
	return nil
}

type MemTokens struct{ m *Memory }

func (s *MemTokens) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	id := uuid.New().String()
	s.m.tokens[tokenHash] = RefreshToken{
		ID: id, UserID: userID, TokenHash: tokenHash,
		ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *MemTokens) GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	rt, ok := s.m.tokens[tokenHash]
	if !ok {
		return nil, agenda.ErrNotFound
	}
	return &rt, nil
}

func (s *MemTokens) Rotate(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for hash, rt := range s.m.tokens {
		if rt.ID == oldID {
			rt.Revoked = true
			rt.ReplacedBy = &newID
			s.m.tokens[hash] = rt
		}
	}
	s.m.tokens[newHash] = RefreshToken{
		ID: newID, UserID: userID, TokenHash: newHash,
		ExpiresAt: newExpiry, CreatedAt: time.Now(),
	}
	return nil
}

func (s *MemTokens) RevokeAll(ctx context.Context, userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for hash, rt := range s.m.tokens {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			s.m.tokens[hash] = rt
		}
	}
	return nil
}
