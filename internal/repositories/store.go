package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos is the set of repositories bound to one database handle, either the
// pool or a single transaction.
type Repos struct {
	Users *Users
	Notes *Notes
	Tags  *Tags
}

func newRepos(db *gorm.DB) Repos {
	return Repos{
		Users: &Users{db: db},
		Notes: &Notes{db: db},
		Tags:  &Tags{db: db},
	}
}

// Store is the unit-of-work entry point. Services read through Read and
// write through Transaction; nothing holds a package-level handle.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Read returns repositories running outside a transaction.
func (s *Store) Read(ctx context.Context) Repos {
	return newRepos(s.db.WithContext(ctx))
}

// Transaction runs fn inside one database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(r Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepos(tx))
	})
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
