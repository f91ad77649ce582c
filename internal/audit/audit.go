package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/policy"
)

// Event is one immutable row of the audit trail. Policy is nil when the
// pipeline failed before a policy decision existed.
type Event struct {
	ID         string           `json:"id"`
	TS         int64            `json:"ts"`
	UserID     string           `json:"user_id"`
	Role       string           `json:"role"`
	ActionName string           `json:"action_name"`
	Input      map[string]any   `json:"input"`
	Policy     *policy.Decision `json:"policy"`
	Result     *action.Result   `json:"result"`
}

// Record is what callers hand to Log. The store assigns id and timestamp.
type Record struct {
	UserID     string
	Role       string
	ActionName string
	Input      map[string]any
	Policy     *policy.Decision
	Result     action.Result
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	UserID     string
	ActionName string
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Store is a durable, append-only, queryable-by-id log of audit events.
// Writers are serialized so interleaved requests never corrupt or lose rows.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var expectedColumns = []string{
	"id", "ts", "user_id", "role", "action_name",
	"input_json", "policy_json", "result_json",
}

// Open opens (or creates) the audit database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the audit_log table. A pre-existing table with a
// different column layout is renamed aside, never altered or dropped, so old
// rows survive a layout change.
func (s *Store) ensureSchema() error {
	existing, err := s.tableColumns("audit_log")
	if err != nil {
		return err
	}

	if len(existing) > 0 && !hasColumns(existing, expectedColumns) {
		legacy := fmt.Sprintf("audit_log_legacy_%d", time.Now().UnixMilli())
		if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE audit_log RENAME TO %s", legacy)); err != nil {
			return fmt.Errorf("rename legacy audit table: %w", err)
		}
		slog.Warn("Audit table layout changed, preserved old data", "renamed_to", legacy)
	}

	_, err = s.db.Exec(`
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		action_name TEXT NOT NULL,
		input_json TEXT NOT NULL,
		policy_json TEXT,
		result_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_ts ON audit_log(ts);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action_name);
	`)
	if err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (s *Store) tableColumns(table string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func hasColumns(existing, expected []string) bool {
	set := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		set[c] = struct{}{}
	}
	for _, c := range expected {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}

// Log assigns a fresh id and timestamp, persists the event synchronously, and
// returns the assigned id. Rows are never mutated or deleted afterwards.
func (s *Store) Log(ctx context.Context, rec Record) (string, error) {
	if rec.Input == nil {
		rec.Input = map[string]any{}
	}
	inputJSON, err := marshalPayload(rec.Input)
	if err != nil {
		return "", fmt.Errorf("marshal audit input: %w", err)
	}
	resultJSON, err := marshalPayload(rec.Result)
	if err != nil {
		return "", fmt.Errorf("marshal audit result: %w", err)
	}

	var policyJSON sql.NullString
	if rec.Policy != nil {
		raw, err := json.Marshal(rec.Policy)
		if err != nil {
			return "", fmt.Errorf("marshal audit policy: %w", err)
		}
		policyJSON = sql.NullString{String: string(raw), Valid: true}
	}

	id := ulid.Make().String()
	ts := time.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, ts, user_id, role, action_name, input_json, policy_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ts, rec.UserID, rec.Role, rec.ActionName, inputJSON, policyJSON, resultJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert audit event: %w", err)
	}

	slog.Debug("Audit event written", "id", id, "action", rec.ActionName, "user", rec.UserID)
	return id, nil
}

// Get returns a single event by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ts, user_id, role, action_name, input_json, policy_json, result_json
		FROM audit_log WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]*Event, error) {
	query := `
		SELECT id, ts, user_id, role, action_name, input_json, policy_json, result_json
		FROM audit_log WHERE 1=1`
	var args []any

	if f.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.ActionName != "" {
		query += " AND action_name = ?"
		args = append(args, f.ActionName)
	}
	if !f.Since.IsZero() {
		query += " AND ts >= ?"
		args = append(args, f.Since.UnixMilli())
	}
	if !f.Until.IsZero() {
		query += " AND ts <= ?"
		args = append(args, f.Until.UnixMilli())
	}

	query += " ORDER BY ts DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event      Event
		inputJSON  string
		policyJSON sql.NullString
		resultJSON string
	)
	if err := row.Scan(
		&event.ID, &event.TS, &event.UserID, &event.Role, &event.ActionName,
		&inputJSON, &policyJSON, &resultJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(inputJSON), &event.Input); err != nil {
		return nil, fmt.Errorf("decode audit input: %w", err)
	}
	if policyJSON.Valid {
		event.Policy = &policy.Decision{}
		if err := json.Unmarshal([]byte(policyJSON.String), event.Policy); err != nil {
			return nil, fmt.Errorf("decode audit policy: %w", err)
		}
	}
	event.Result = &action.Result{}
	if err := json.Unmarshal([]byte(resultJSON), event.Result); err != nil {
		return nil, fmt.Errorf("decode audit result: %w", err)
	}
	return &event, nil
}

func marshalPayload(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
