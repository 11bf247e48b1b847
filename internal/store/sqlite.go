package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"voxterrain/internal/voxel"
)

// SQLite keeps one row per chunk with the density compressed by zstd.
type SQLite struct {
	db    *sql.DB
	codec *codec
	once  sync.Once
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, codec: c}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			nx INTEGER NOT NULL,
			ny INTEGER NOT NULL,
			nz INTEGER NOT NULL,
			samples BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, coord voxel.Vec3i) (Record, error) {
	rec := Record{Coord: coord}
	var blob []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT nx, ny, nz, samples FROM chunks WHERE x = ? AND y = ? AND z = ?`,
		coord.X, coord.Y, coord.Z)
	err := row.Scan(&rec.Resolution.X, &rec.Resolution.Y, &rec.Resolution.Z, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("load chunk %v: %w", coord, err)
	}
	rec.Samples, err = s.codec.decode(blob, rec.Resolution.Add(voxel.Splat(1)).Volume())
	if err != nil {
		return rec, fmt.Errorf("load chunk %v: %w", coord, err)
	}
	return rec, nil
}

func (s *SQLite) SaveBatch(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (x, y, z, nx, ny, nz, samples, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(x, y, z) DO UPDATE SET
			nx = excluded.nx, ny = excluded.ny, nz = excluded.nz,
			samples = excluded.samples, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range recs {
		if want := r.Resolution.Add(voxel.Splat(1)).Volume(); len(r.Samples) != want {
			return fmt.Errorf("save chunk %v: %d samples, want %d", r.Coord, len(r.Samples), want)
		}
		_, err := stmt.ExecContext(ctx,
			r.Coord.X, r.Coord.Y, r.Coord.Z,
			r.Resolution.X, r.Resolution.Y, r.Resolution.Z,
			s.codec.encode(r.Samples), now)
		if err != nil {
			return fmt.Errorf("save chunk %v: %w", r.Coord, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored chunks.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	var err error
	s.once.Do(func() {
		s.codec.close()
		err = s.db.Close()
	})
	return err
}
