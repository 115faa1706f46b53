package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"bus_info/internal/routefinder"
)

var (
	// ErrNotFound is returned for any lookup that matches no live record.
	ErrNotFound = errors.New("record not found")

	ErrUnknownStop        = errors.New("unknown stop code")
	ErrInvalidServiceDays = errors.New("service days must be a 7-bit value")
	ErrUnknownCategory    = errors.New("unknown organization category")
)

// Store is the gorm-backed catalog: stops, routes, their timetables, search history and users.
type Store struct {
	db       *gorm.DB
	readOpts *sql.TxOptions
}

type Option func(*Store)

// WithSnapshotReads runs journey searches in read-only repeatable-read transactions
// so every query of one search sees the same catalog. SQLite rejects these options.
func WithSnapshotReads() Option {
	return func(s *Store) {
		s.readOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadSession opens a transaction, hands fn a Catalog bound to it and always ends it:
// committed when fn succeeds, rolled back otherwise.
func (s *Store) ReadSession(ctx context.Context, fn func(routefinder.Catalog) error) error {
	var opts []*sql.TxOptions
	if s.readOpts != nil {
		opts = append(opts, s.readOpts)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Catalog{db: tx})
	}, opts...)
}

// Catalog returns a catalog reading outside of any session.
func (s *Store) Catalog() *Catalog {
	return &Catalog{db: s.db}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
