// Package sqlitestore is a pure-Go (no cgo) sqlite-backed implementation of
// the rule persisted layout described by the core (spec's external store):
// subject_type, subject_id, type, config, effect, priority, enabled.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// Config configures the sqlite-backed rule store.
type Config struct {
	// DSN is the sqlite connection string (e.g. a file path, or
	// "file::memory:?cache=shared" for a process-local store).
	DSN string

	// Table names the rules table. Defaults to "availability_rules".
	Table string
}

// Store persists rules keyed by (subject_type, subject_id) in sqlite.
type Store struct {
	db    *sql.DB
	table string
}

// Open opens (creating if necessary) the sqlite database at cfg.DSN and
// ensures the rules table exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	table := cfg.Table
	if table == "" {
		table = "availability_rules"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %q: %w", cfg.DSN, err)
	}
	// modernc.org/sqlite does not support concurrent writers on one
	// connection; a single connection avoids SQLITE_BUSY under our own
	// write load without needing a busy-timeout retry loop.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, table: table}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_type TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		type TEXT NOT NULL,
		config TEXT,
		effect TEXT NOT NULL CHECK (effect IN ('allow','deny')),
		priority INTEGER NOT NULL DEFAULT 0,
		enabled INTEGER NOT NULL DEFAULT 1,
		seq INTEGER NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlitestore: migrate: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_subject_idx ON %s (subject_type, subject_id)`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("sqlitestore: migrate index: %w", err)
	}
	return nil
}

// InsertRule appends a rule row for (subjectType, subjectID). seq controls
// insertion-order tie-breaking on read back.
func (s *Store) InsertRule(ctx context.Context, subjectType, subjectID string, rule availability.Rule) error {
	var configJSON any
	if rule.Config != nil {
		raw, err := json.Marshal(rule.Config)
		if err != nil {
			return fmt.Errorf("sqlitestore: marshal rule config: %w", err)
		}
		configJSON = string(raw)
	}

	query := fmt.Sprintf(`INSERT INTO %s (subject_type, subject_id, type, config, effect, priority, enabled, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, query,
		subjectType, subjectID, rule.Type, configJSON, string(rule.Effect), rule.Priority, boolToInt(rule.Enabled), rule.Seq)
	if err != nil {
		return fmt.Errorf("sqlitestore: insert rule: %w", err)
	}
	return nil
}

// LoadRules returns every rule persisted for (subjectType, subjectID),
// ordered by insertion sequence. The core's own ordering (priority
// ascending, enabled-only) is applied by the Subject that wraps these
// rows, not by the store.
func (s *Store) LoadRules(ctx context.Context, subjectType, subjectID string) ([]availability.Rule, error) {
	query := fmt.Sprintf(`SELECT type, config, effect, priority, enabled, seq FROM %s
		WHERE subject_type = ? AND subject_id = ? ORDER BY seq ASC`, s.table)
	rows, err := s.db.QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: load rules: %w", err)
	}
	defer rows.Close()

	var out []availability.Rule
	for rows.Next() {
		var (
			ruleType string
			config   sql.NullString
			effect   string
			priority int
			enabled  int
			seq      int
		)
		if err := rows.Scan(&ruleType, &config, &effect, &priority, &enabled, &seq); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan rule: %w", err)
		}

		var configMap map[string]any
		if config.Valid && config.String != "" {
			if err := json.Unmarshal([]byte(config.String), &configMap); err != nil {
				return nil, fmt.Errorf("sqlitestore: unmarshal rule config: %w", err)
			}
		}

		out = append(out, availability.Rule{
			Type:     ruleType,
			Config:   configMap,
			Effect:   availability.Effect(effect),
			Priority: priority,
			Enabled:  enabled != 0,
			Seq:      seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: iterate rules: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// ReplaceRules deletes every rule for (subjectType, subjectID) and inserts
// rules in its place, renumbering sequence by slice order. Runs in a
// transaction so readers never observe a partially replaced rule set.
func (s *Store) ReplaceRules(ctx context.Context, subjectType, subjectID string, rules []availability.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin replace: %w", err)
	}
	defer tx.Rollback()

	del := fmt.Sprintf(`DELETE FROM %s WHERE subject_type = ? AND subject_id = ?`, s.table)
	if _, err := tx.ExecContext(ctx, del, subjectType, subjectID); err != nil {
		return fmt.Errorf("sqlitestore: clear rules: %w", err)
	}

	ins := fmt.Sprintf(`INSERT INTO %s (subject_type, subject_id, type, config, effect, priority, enabled, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	for i, rule := range rules {
		var configJSON any
		if rule.Config != nil {
			raw, err := json.Marshal(rule.Config)
			if err != nil {
				return fmt.Errorf("sqlitestore: marshal rule config: %w", err)
			}
			configJSON = string(raw)
		}
		if _, err := tx.ExecContext(ctx, ins, subjectType, subjectID, rule.Type, configJSON, string(rule.Effect), rule.Priority, boolToInt(rule.Enabled), i); err != nil {
			return fmt.Errorf("sqlitestore: insert replacement rule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit replace: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
