// Package sqlite archives projected sweeps in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sweeps (
  id           TEXT PRIMARY KEY,
  site         TEXT NOT NULL,
  product      TEXT NOT NULL,
  valid_time   BIGINT NOT NULL,
  lat          REAL,
  lon          REAL,
  radials      INTEGER,
  gates        INTEGER,
  min_lat      REAL,
  max_lat      REAL,
  min_lon      REAL,
  max_lon      REAL,
  payload      TEXT NOT NULL,
  processed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sweeps_site_time
  ON sweeps (site, valid_time);
`

const insertSweep = `
INSERT INTO sweeps (id, site, product, valid_time, lat, lon, radials, gates,
  min_lat, max_lat, min_lon, max_lon, payload, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

// Archive stores sweeps in the sweeps table.
// It implements pipeline.BatchLoader.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-process database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sweeps schema: %w", err)
	}
	return &Archive{db: db, logger: logger}, nil
}

// LoadBatch inserts a batch of sweeps in one transaction. Sweeps already
// archived under the same ID are left untouched.
func (a *Archive) LoadBatch(ctx context.Context, sweeps []domain.Sweep) error {
	if len(sweeps) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSweep)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range sweeps {
		s := &sweeps[i]
		payload, err := json.Marshal(s.Compact())
		if err != nil {
			return fmt.Errorf("serialize sweep %s: %w", s.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			s.ID, s.Site, s.Product.Code, s.ValidTime.UTC().Unix(),
			s.Latitude, s.Longitude, s.Grid.Radials, s.Grid.Gates,
			s.Bounds.MinLat, s.Bounds.MaxLat, s.Bounds.MinLon, s.Bounds.MaxLon,
			string(payload), s.ProcessedAt.UTC().Unix(),
		)
		if err != nil {
			return fmt.Errorf("archive sweep %s: %w", s.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	a.logger.Debug("sweeps archived", "inserted", inserted, "duplicates", len(sweeps)-inserted)
	return nil
}

// Get returns the archived form of the sweep with the given ID.
func (a *Archive) Get(ctx context.Context, id string) (domain.CompactSweep, error) {
	var payload string
	err := a.db.QueryRowContext(ctx, `SELECT payload FROM sweeps WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CompactSweep{}, fmt.Errorf("%s: %w", id, domain.ErrSweepNotFound)
	}
	if err != nil {
		return domain.CompactSweep{}, fmt.Errorf("query sweep %s: %w", id, err)
	}

	var out domain.CompactSweep
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return domain.CompactSweep{}, fmt.Errorf("decode sweep %s: %w", id, err)
	}
	return out, nil
}

// Latest returns the ID and valid time of the most recent sweep for a site.
func (a *Archive) Latest(ctx context.Context, site string) (string, time.Time, error) {
	var (
		id    string
		valid int64
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT id, valid_time FROM sweeps WHERE site = ? ORDER BY valid_time DESC LIMIT 1`,
		domain.NormalizeSite(site)).Scan(&id, &valid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, fmt.Errorf("site %s: %w", site, domain.ErrSweepNotFound)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("query latest sweep for %s: %w", site, err)
	}
	return id, time.Unix(valid, 0).UTC(), nil
}

// Each calls fn for every archived sweep in site and valid-time order,
// stopping at the first error.
func (a *Archive) Each(ctx context.Context, fn func(domain.CompactSweep) error) error {
	rows, err := a.db.QueryContext(ctx, `SELECT id, payload FROM sweeps ORDER BY site, valid_time`)
	if err != nil {
		return fmt.Errorf("list sweeps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return fmt.Errorf("scan sweep: %w", err)
		}
		var s domain.CompactSweep
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return fmt.Errorf("decode sweep %s: %w", id, err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of archived sweeps.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweeps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sweeps: %w", err)
	}
	return n, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
