package pgx

import (
	"context"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Store reads assessment snapshots and reference tables from PostgreSQL and
// records generated report artifacts. It implements store.SnapshotStore,
// store.SnapshotWriter, store.ReportStore and reference.Source.
type Store struct {
	conn      pgxIConn
	chunkSize int
	now       func() time.Time
}

type StoreOption func(*Store)

// WithChunkSize bounds the rows written per transaction on import.
func WithChunkSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(conn pgxIConn, opts ...StoreOption) *Store {
	s := &Store{
		conn:      conn,
		chunkSize: 1000,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
