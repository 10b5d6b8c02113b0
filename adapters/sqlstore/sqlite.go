package sqlstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open creates a SQLite database connection configured for workflow usage.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// modernc.org/sqlite serialises writers; a single connection avoids
	// SQLITE_BUSY churn under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// InitSchema creates the entity and transition tables.
func InitSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS workflow_entities (
    id          TEXT NOT NULL PRIMARY KEY,
    kind        TEXT NOT NULL,
    status      TEXT NOT NULL,
    priority    INTEGER NOT NULL,
    owner_id    TEXT NOT NULL,
    version     INTEGER NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_kind_status
    ON workflow_entities (kind, status);
CREATE INDEX IF NOT EXISTS idx_entities_owner
    ON workflow_entities (owner_id);

-- Append-only transition history. Rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS workflow_transitions (
    entity_id   TEXT NOT NULL,
    idx         INTEGER NOT NULL,
    from_status TEXT NOT NULL,
    to_status   TEXT NOT NULL,
    actor_id    TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    timestamp   TIMESTAMP NOT NULL,
    PRIMARY KEY (entity_id, idx),
    FOREIGN KEY (entity_id) REFERENCES workflow_entities(id)
);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}
