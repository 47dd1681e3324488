package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/xocoro/kxo"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// all pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// RunMigrations applies the embedded up migrations to the database at path.
// The migration connection is closed before returning.
func RunMigrations(path string) error {
	db, err := open(path)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return err
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	// Close also closes db.
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Save implements Store. All records of one call are written in a single
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, runID string, hs []kxo.History) error {
	if runID == "" {
		return ErrEmptyRunID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	const q = `INSERT INTO histories (run_id, slot, moves, length, notation, saved_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id, slot) DO UPDATE SET
    moves = excluded.moves,
    length = excluded.length,
    notation = excluded.notation,
    saved_at = excluded.saved_at`

	ts := now()
	for slot, h := range hs {
		if h.Empty() {
			continue
		}
		if _, err := tx.ExecContext(ctx, q, runID, slot, h.Moves[:], int64(h.Length), h.String(), ts); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert slot %d: %w", slot, err)
		}
	}
	return tx.Commit()
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, moves, length, saved_at FROM histories WHERE run_id = ? ORDER BY slot`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r      Record
			moves  []byte
			length int64
		)
		if err := rows.Scan(&r.Slot, &moves, &length, &r.SavedAt); err != nil {
			return nil, err
		}
		r.RunID = runID
		copy(r.History.Moves[:], moves)
		r.History.Length = uint64(length)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
