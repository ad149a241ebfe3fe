// Package sqlitekv persists collections in a single-file SQLite database,
// one row per logical key. The schema is a plain key-value table: collections
// are stored as whole JSON snapshots, so there is nothing relational to model.
package sqlitekv

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // database/sql driver

	"github.com/mustangstride/stride/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

type Store struct {
	db *sqlx.DB
}

var _ core.KeyValueStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema. The parent directory must exist.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite db")
	}
	// collection write-backs are whole-value upserts; one writer is plenty
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ensuring kv schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.GetContext(ctx, &val, `SELECT value FROM kv WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "loading %q", key)
	}
	return val, true, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return errors.Wrapf(err, "saving %q", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
