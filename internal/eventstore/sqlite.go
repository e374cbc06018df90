package eventstore

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS transform_events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id    TEXT    NOT NULL,
	kind        TEXT    NOT NULL,
	document    TEXT    NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL,
	payload     BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transform_events_build ON transform_events(build_id, seq);
CREATE INDEX IF NOT EXISTS idx_transform_events_document ON transform_events(document, seq);
`

const selectColumns = "SELECT seq, build_id, kind, document, recorded_at, payload FROM transform_events"

// SQLiteStore is the Store backed by a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the ledger at dbPath. ":memory:" gives a
// private in-memory ledger.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.LedgerError("could not open ledger database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	// One connection: writes are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.LedgerError("failed to initialize ledger schema").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Append stores event. A zero timestamp is stamped with the current time.
func (s *SQLiteStore) Append(ctx context.Context, event Event) error {
	at := event.Timestamp()
	if at.IsZero() {
		at = time.Now()
	}
	payload := event.Payload()
	if payload == nil {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transform_events (build_id, kind, document, recorded_at, payload) VALUES (?, ?, ?, ?, ?)",
		event.BuildID(), event.Type(), event.Document(), at.UnixMilli(), payload,
	)
	if err != nil {
		return errors.LedgerError("failed to append event to ledger").
			WithCause(err).
			WithContext("build_id", event.BuildID()).
			WithContext("path", s.path).
			Build()
	}
	return nil
}

// GetByBuildID returns the events of one build in append order.
func (s *SQLiteStore) GetByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE build_id = ? ORDER BY seq", buildID)
}

// GetByDocument returns up to limit transform events of document, newest
// first. A limit <= 0 returns every event.
func (s *SQLiteStore) GetByDocument(ctx context.Context, document string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, selectColumns+" WHERE document = ? AND kind = ? ORDER BY seq DESC LIMIT ?",
		document, TypeDocumentTransformed, limit)
}

// ListBuilds returns one record per build, newest first.
func (s *SQLiteStore) ListBuilds(ctx context.Context) ([]BuildRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, MIN(recorded_at), COUNT(*) FROM transform_events GROUP BY build_id ORDER BY MIN(recorded_at) DESC, MIN(seq) DESC",
	)
	if err != nil {
		return nil, errors.LedgerError("failed to list builds").WithCause(err).Build()
	}
	defer func() { _ = rows.Close() }()

	var builds []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var startedMillis int64
		if err := rows.Scan(&rec.BuildID, &startedMillis, &rec.EventCount); err != nil {
			return nil, errors.LedgerError("failed to scan build rows").WithCause(err).Build()
		}
		rec.StartedAt = time.UnixMilli(startedMillis)
		builds = append(builds, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.LedgerError("failed to iterate build rows").WithCause(err).Build()
	}
	return builds, nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.LedgerError("failed to query events").WithCause(err).Build()
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var r Record
		var millis int64
		if err := rows.Scan(&r.Seq, &r.Build, &r.Kind, &r.Doc, &millis, &r.Data); err != nil {
			return nil, errors.LedgerError("failed to scan event rows").WithCause(err).Build()
		}
		r.At = time.UnixMilli(millis)
		events = append(events, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.LedgerError("failed to iterate event rows").WithCause(err).Build()
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
