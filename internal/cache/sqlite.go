package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig configures the durable cache backend.
type SQLiteConfig struct {
	// Path to the database file.
	Path string

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, ...).
	JournalMode string

	// BusyTimeout is the lock-acquisition timeout in milliseconds.
	BusyTimeout int
}

// DefaultSQLiteConfig returns the default backend configuration.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:        path,
		JournalMode: "WAL",
		BusyTimeout: 5000,
	}
}

// SQLiteBackend implements Backend on a local SQLite file. Timestamps are
// stored as Unix nanoseconds so FetchedAt comparisons keep full precision.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(cfg SQLiteConfig) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite backend: empty path")
	}
	if cfg.JournalMode == "" {
		cfg.JournalMode = "WAL"
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5000
	}

	dsn := fmt.Sprintf("%s?_journal_mode=%s&_busy_timeout=%d", cfg.Path, cfg.JournalMode, cfg.BusyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// The store serializes all access; a single connection avoids SQLITE_BUSY
	// from the driver's own pool.
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			source      TEXT    NOT NULL,
			kind        TEXT    NOT NULL,
			identity    TEXT    NOT NULL,
			record_date INTEGER NOT NULL,
			fetched_at  INTEGER NOT NULL,
			payload     BLOB    NOT NULL,
			PRIMARY KEY (source, kind, identity)
		);
		CREATE INDEX IF NOT EXISTS idx_records_date
			ON records (source, kind, record_date);
	`
	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Put(ctx context.Context, e Entry) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO records (source, kind, identity, record_date, fetched_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, kind, identity) DO UPDATE SET
			record_date = excluded.record_date,
			fetched_at  = excluded.fetched_at,
			payload     = excluded.payload`,
		e.Source, e.Kind, e.Identity, e.RecordDate.UnixNano(), e.FetchedAt.UnixNano(), e.Payload)
	return err
}

func (b *SQLiteBackend) Get(ctx context.Context, source, kind, identity string) (*Entry, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT record_date, fetched_at, payload FROM records
		WHERE source = ? AND kind = ? AND identity = ?`,
		source, kind, identity)

	var recordDate, fetchedAt int64
	var payload []byte
	if err := row.Scan(&recordDate, &fetchedAt, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &Entry{
		Source:     source,
		Kind:       kind,
		Identity:   identity,
		RecordDate: time.Unix(0, recordDate),
		FetchedAt:  time.Unix(0, fetchedAt),
		Payload:    payload,
	}, nil
}

func (b *SQLiteBackend) Range(ctx context.Context, source, kind string, from, to *time.Time) ([]Entry, error) {
	query := `
		SELECT identity, record_date, fetched_at, payload FROM records
		WHERE source = ? AND kind = ?`
	args := []any{source, kind}
	if from != nil {
		query += ` AND record_date >= ?`
		args = append(args, from.UnixNano())
	}
	if to != nil {
		query += ` AND record_date <= ?`
		args = append(args, to.UnixNano())
	}
	query += ` ORDER BY record_date ASC`

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var identity string
		var recordDate, fetchedAt int64
		var payload []byte
		if err := rows.Scan(&identity, &recordDate, &fetchedAt, &payload); err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Source:     source,
			Kind:       kind,
			Identity:   identity,
			RecordDate: time.Unix(0, recordDate),
			FetchedAt:  time.Unix(0, fetchedAt),
			Payload:    payload,
		})
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) Bounds(ctx context.Context, source, kind string) (*time.Time, *time.Time, error) {
	row := b.db.QueryRowContext(ctx, `
		SELECT MIN(record_date), MAX(record_date) FROM records
		WHERE source = ? AND kind = ?`,
		source, kind)

	var minDate, maxDate sql.NullInt64
	if err := row.Scan(&minDate, &maxDate); err != nil {
		return nil, nil, err
	}
	if !minDate.Valid || !maxDate.Valid {
		return nil, nil, nil
	}
	earliest := time.Unix(0, minDate.Int64)
	latest := time.Unix(0, maxDate.Int64)
	return &earliest, &latest, nil
}

func (b *SQLiteBackend) Count(ctx context.Context, source, kind string) (int, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE source = ? AND kind = ?`, source, kind)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, source, kind, identity string) (bool, error) {
	res, err := b.db.ExecContext(ctx,
		`DELETE FROM records WHERE source = ? AND kind = ? AND identity = ?`,
		source, kind, identity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *SQLiteBackend) DeleteAll(ctx context.Context, source, kind string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM records WHERE source = ? AND kind = ?`, source, kind)
	return err
}

func (b *SQLiteBackend) DeleteOlderThan(ctx context.Context, source, kind string, cutoff time.Time) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM records WHERE source = ? AND kind = ? AND record_date < ?`,
		source, kind, cutoff.UnixNano())
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
