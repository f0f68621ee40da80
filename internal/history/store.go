// Package history persists one record per build: its identity, timestamp,
// outcome, and the revision states recorded for each repository the build
// polled. Records are append-only and read back newest-first for baseline
// resolution. The recorded states are exhaustive for their build; baseline
// resolution relies on that invariant.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/storewatch/internal/store"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Build is one immutable build record.
type Build struct {
	Number    int64
	ID        string
	Timestamp time.Time
	Outcome   string
	States    []store.RevisionState
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (and if needed initializes) a build history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		number INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS revision_states (
		build_number INTEGER NOT NULL REFERENCES builds(number),
		position INTEGER NOT NULL,
		repository TEXT NOT NULL,
		state BLOB NOT NULL,
		PRIMARY KEY (build_number, position)
	);
	CREATE INDEX IF NOT EXISTS idx_states_repository ON revision_states(repository);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendBuild records a finished build and its revision states, returning the
// assigned build number. States keep their recording order.
func (s *Store) AppendBuild(ctx context.Context, id string, timestamp time.Time, outcome string, states []store.RevisionState) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO builds (id, timestamp, outcome) VALUES (?, ?, ?)",
		id, timestamp.Unix(), outcome,
	)
	if err != nil {
		return 0, fmt.Errorf("insert build: %w", err)
	}
	number, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("build number: %w", err)
	}

	for i, state := range states {
		payload, err := json.Marshal(state)
		if err != nil {
			return 0, fmt.Errorf("marshal revision state: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO revision_states (build_number, position, repository, state) VALUES (?, ?, ?, ?)",
			number, i, state.RepositoryName, payload,
		); err != nil {
			return 0, fmt.Errorf("insert revision state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit build: %w", err)
	}
	return number, nil
}

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT number, id, timestamp, outcome FROM builds ORDER BY number DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var ts int64
		if err := rows.Scan(&b.Number, &b.ID, &ts, &b.Outcome); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		b.Timestamp = time.Unix(ts, 0).UTC()
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}

	for i := range builds {
		states, err := s.loadStates(ctx, builds[i].Number)
		if err != nil {
			return nil, err
		}
		builds[i].States = states
	}
	return builds, nil
}

// LastBuild returns the most recent build, or nil when no build exists.
func (s *Store) LastBuild(ctx context.Context) (*Build, error) {
	builds, err := s.RecentBuilds(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, nil
	}
	return &builds[0], nil
}

// RecentRecords loads up to limit builds as baseline-resolver records,
// newest first.
func (s *Store) RecentRecords(ctx context.Context, limit int) ([]store.BuildRecord, error) {
	builds, err := s.RecentBuilds(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]store.BuildRecord, 0, len(builds))
	for _, b := range builds {
		records = append(records, store.BuildRecord{Number: b.Number, States: b.States})
	}
	return records, nil
}

func (s *Store) loadStates(ctx context.Context, buildNumber int64) ([]store.RevisionState, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT state FROM revision_states WHERE build_number = ? ORDER BY position",
		buildNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("query revision states: %w", err)
	}
	defer rows.Close()

	var states []store.RevisionState
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan revision state: %w", err)
		}
		var state store.RevisionState
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("unmarshal revision state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revision states: %w", err)
	}
	return states, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
