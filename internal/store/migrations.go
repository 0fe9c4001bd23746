package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "events: append-only log of internal state changes",
		SQL: `
CREATE TABLE events (
    id           INTEGER PRIMARY KEY,
    event_type   TEXT NOT NULL,
    entity_type  TEXT,
    entity_id    TEXT,
    payload      TEXT,
    coherence    REAL,
    session_id   INTEGER,
    created_at   INTEGER NOT NULL
);

CREATE INDEX idx_events_type    ON events(event_type);
CREATE INDEX idx_events_created ON events(created_at DESC);
CREATE INDEX idx_events_entity  ON events(entity_type, entity_id);
`,
	},
	{
		Version:     2,
		Description: "proactive_queue: entities waiting to be surfaced",
		SQL: `
CREATE TABLE proactive_queue (
    id           INTEGER PRIMARY KEY,
    entity_type  TEXT NOT NULL,
    entity_id    TEXT NOT NULL,
    reason       TEXT NOT NULL,
    priority     REAL NOT NULL DEFAULT 0.5,
    created_at   INTEGER NOT NULL,
    surfaced_at  INTEGER,
    dismissed    INTEGER NOT NULL DEFAULT 0,

    UNIQUE (entity_type, entity_id)
);

CREATE INDEX idx_queue_priority ON proactive_queue(priority DESC);
`,
	},
	{
		Version:     3,
		Description: "patterns: recurring observations across projects",
		SQL: `
CREATE TABLE patterns (
    id               INTEGER PRIMARY KEY,
    pattern_key      TEXT NOT NULL UNIQUE,
    title            TEXT NOT NULL,
    content          TEXT NOT NULL,
    projects         TEXT NOT NULL,
    occurrence_count INTEGER NOT NULL DEFAULT 1,
    first_seen       INTEGER NOT NULL,
    last_seen        INTEGER NOT NULL,
    promoted         INTEGER NOT NULL DEFAULT 0,
    promoted_ref     TEXT
);

CREATE INDEX idx_patterns_count ON patterns(occurrence_count DESC);
`,
	},
	{
		Version:     4,
		Description: "coherence_history: measurements with component signals",
		SQL: `
CREATE TABLE coherence_history (
    id              INTEGER PRIMARY KEY,
    value           REAL NOT NULL,

    -- Instantaneous signals
    clarity         REAL NOT NULL,
    growth          REAL NOT NULL,
    engagement      REAL NOT NULL,
    connection      REAL NOT NULL,
    energy          REAL NOT NULL,
    alignment       REAL NOT NULL,

    -- Developmental signals
    trajectory      REAL NOT NULL,
    stability       REAL NOT NULL,
    peak_ratio      REAL NOT NULL,

    -- Meta signals
    self_knowledge  REAL NOT NULL,
    wisdom_depth    REAL NOT NULL,
    integration     REAL NOT NULL,

    interpretation  TEXT,
    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_coherence_created ON coherence_history(created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
