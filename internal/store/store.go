// Package store holds the Postgres repositories plus an in-memory
// implementation used in tests and in database-less dev mode.
package store

import "github.com/jackc/pgx/v5/pgxpool"

type Store struct {
	pool *pgxpool.Pool

	users  *UserStore
	appts  *AppointmentStore
	tokens *RefreshTokenStore
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		users:  &UserStore{pool: pool},
		appts:  &AppointmentStore{pool: pool},
		tokens: &RefreshTokenStore{pool: pool},
	}
}

func (s *Store) Users() *UserStore                 { return s.users }
func (s *Store) Appointments() *AppointmentStore   { return s.appts }
func (s *Store) RefreshTokens() *RefreshTokenStore { return s.tokens }
