// Package wetlab persists wet-lab measurement results in SQLite. Rows are
// uniquely identified by the composite key (experiment, sample, assay,
// condition, replicate); concurrent-safe upserts lean on the database's
// unique-constraint conflict handling rather than in-process locking.
package wetlab

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const tableName = "wetlab_results"

var updatableFields = map[string]struct{}{
	"measurement_value": {},
	"measurement_unit":  {},
	"operator":          {},
	"instrument":        {},
	"measured_at":       {},
	"notes":             {},
}

// Key is the five-field composite key identifying one result row.
type Key struct {
	ExperimentID string
	SampleID     string
	AssayName    string
	Condition    string
	Replicate    int
}

// Validate reports the first problem with the key, if any.
func (k Key) Validate() error {
	switch {
	case strings.TrimSpace(k.ExperimentID) == "":
		return fmt.Errorf("key missing experiment_id")
	case strings.TrimSpace(k.SampleID) == "":
		return fmt.Errorf("key missing sample_id")
	case strings.TrimSpace(k.AssayName) == "":
		return fmt.Errorf("key missing assay_name")
	case strings.TrimSpace(k.Condition) == "":
		return fmt.Errorf("key missing condition")
	}
	return nil
}

// Record is one measurement to upsert. Operator, Instrument and Notes are
// optional and stored as NULL when nil.
type Record struct {
	Key
	MeasurementValue float64
	MeasurementUnit  string
	Operator         *string
	Instrument       *string
	MeasuredAt       string
	Notes            *string
}

func (r Record) validate() error {
	if err := r.Key.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.MeasurementUnit) == "" {
		return fmt.Errorf("record missing measurement_unit")
	}
	if strings.TrimSpace(r.MeasuredAt) == "" {
		return fmt.Errorf("record missing measured_at")
	}
	return nil
}

// StoredRecord is a row read back from the store.
type StoredRecord struct {
	ResultID int64
	Record
	CreatedAt string
	UpdatedAt string
}

// UpsertOutcome accounts for a batch upsert. Failures holds one message
// per rejected record, indexed from 1 in input order.
type UpsertOutcome struct {
	Attempted int
	Upserted  int
	Failures  []string
}

// QueryFilter narrows a query. Zero-valued fields are ignored; Replicate
// uses a pointer so replicate 0 remains filterable. MeasuredAtFrom/To
// bound the measured_at column inclusively.
type QueryFilter struct {
	ExperimentID    string
	SampleID        string
	AssayName       string
	Condition       string
	Replicate       *int
	MeasurementUnit string
	Operator        string
	Instrument      string
	MeasuredAtFrom  string
	MeasuredAtTo    string
}

// QueryResult carries matched rows plus the total match count before the
// limit was applied.
type QueryResult struct {
	Total int64
	Rows  []StoredRecord
}

// Store is a SQLite-backed wetlab results store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// results schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	if dir := filepath.Dir(resolved); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	store := &Store{db: db, path: resolved}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the resolved database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			result_id INTEGER PRIMARY KEY AUTOINCREMENT,
			experiment_id TEXT NOT NULL,
			sample_id TEXT NOT NULL,
			assay_name TEXT NOT NULL,
			condition TEXT NOT NULL,
			replicate INTEGER NOT NULL,
			measurement_value REAL NOT NULL,
			measurement_unit TEXT NOT NULL,
			operator TEXT,
			instrument TEXT,
			measured_at TEXT NOT NULL,
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (experiment_id, sample_id, assay_name, condition, replicate)
		)`, tableName)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	for _, column := range []string{"experiment_id", "sample_id", "assay_name", "measured_at"} {
		index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", tableName, column, tableName, column)
		if _, err := s.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("create index on %s: %w", column, err)
		}
	}

	return nil
}

// Upsert inserts or updates records by composite key inside one
// transaction. Invalid records are skipped and reported in the outcome;
// the valid remainder still commits.
func (s *Store) Upsert(ctx context.Context, records []Record) (UpsertOutcome, error) {
	outcome := UpsertOutcome{Attempted: len(records)}
	if len(records) == 0 {
		return outcome, fmt.Errorf("records must be a non-empty list")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return outcome, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (
			experiment_id, sample_id, assay_name, condition, replicate,
			measurement_value, measurement_unit, operator, instrument, measured_at, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(experiment_id, sample_id, assay_name, condition, replicate)
		DO UPDATE SET
			measurement_value = excluded.measurement_value,
			measurement_unit = excluded.measurement_unit,
			operator = excluded.operator,
			instrument = excluded.instrument,
			measured_at = excluded.measured_at,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP`, tableName)

	for idx, record := range records {
		if err := record.validate(); err != nil {
			outcome.Failures = append(outcome.Failures, fmt.Sprintf("record %d: %v", idx+1, err))
			continue
		}

		_, err := tx.ExecContext(ctx, upsert,
			strings.TrimSpace(record.ExperimentID),
			strings.TrimSpace(record.SampleID),
			strings.TrimSpace(record.AssayName),
			strings.TrimSpace(record.Condition),
			record.Replicate,
			record.MeasurementValue,
			strings.TrimSpace(record.MeasurementUnit),
			record.Operator,
			record.Instrument,
			strings.TrimSpace(record.MeasuredAt),
			record.Notes,
		)
		if err != nil {
			outcome.Failures = append(outcome.Failures, fmt.Sprintf("record %d: %v", idx+1, err))
			continue
		}
		outcome.Upserted++
	}

	if err := tx.Commit(); err != nil {
		return outcome, fmt.Errorf("commit transaction: %w", err)
	}

	return outcome, nil
}

// Update modifies one row selected by key. Only whitelisted fields may be
// updated; the row's updated_at is refreshed. Returns the number of rows
// affected.
func (s *Store) Update(ctx context.Context, key Key, updates map[string]any) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, fmt.Errorf("updates must be a non-empty map")
	}

	setClauses := make([]string, 0, len(updates)+1)
	values := make([]any, 0, len(updates)+6)
	for field, value := range updates {
		if _, ok := updatableFields[field]; !ok {
			return 0, fmt.Errorf("unsupported update field %q", field)
		}
		setClauses = append(setClauses, field+" = ?")
		values = append(values, value)
	}
	setClauses = append(setClauses, "updated_at = ?")
	values = append(values, time.Now().UTC().Format("2006-01-02T15:04:05"))

	values = append(values,
		strings.TrimSpace(key.ExperimentID),
		strings.TrimSpace(key.SampleID),
		strings.TrimSpace(key.AssayName),
		strings.TrimSpace(key.Condition),
		key.Replicate,
	)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE experiment_id = ? AND sample_id = ? AND assay_name = ? AND condition = ? AND replicate = ?",
		tableName, strings.Join(setClauses, ", "),
	)

	result, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, fmt.Errorf("update row: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes one row selected by key. Returns the number of rows
// deleted.
func (s *Store) Delete(ctx context.Context, key Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE experiment_id = ? AND sample_id = ? AND assay_name = ? AND condition = ? AND replicate = ?",
		tableName,
	)
	result, err := s.db.ExecContext(ctx, query,
		strings.TrimSpace(key.ExperimentID),
		strings.TrimSpace(key.SampleID),
		strings.TrimSpace(key.AssayName),
		strings.TrimSpace(key.Condition),
		key.Replicate,
	)
	if err != nil {
		return 0, fmt.Errorf("delete row: %w", err)
	}
	return result.RowsAffected()
}

// Query returns rows matching the filter, newest measurements first,
// capped at limit (minimum 1), plus the total match count.
func (s *Store) Query(ctx context.Context, filter QueryFilter, limit int) (QueryResult, error) {
	if limit < 1 {
		limit = 1
	}

	conditions, values := filter.clauses()
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var result QueryResult
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", tableName, where)
	if err := s.db.QueryRowContext(ctx, countQuery, values...).Scan(&result.Total); err != nil {
		return QueryResult{}, fmt.Errorf("count rows: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT result_id, experiment_id, sample_id, assay_name, condition, replicate, measurement_value, measurement_unit, operator, instrument, measured_at, notes, created_at, updated_at FROM %s %s ORDER BY measured_at DESC, result_id DESC LIMIT ?",
		tableName, where,
	)
	rows, err := s.db.QueryContext(ctx, query, append(values, limit)...)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row StoredRecord
		var operator, instrument, notes sql.NullString
		if err := rows.Scan(
			&row.ResultID,
			&row.ExperimentID,
			&row.SampleID,
			&row.AssayName,
			&row.Condition,
			&row.Replicate,
			&row.MeasurementValue,
			&row.MeasurementUnit,
			&operator,
			&instrument,
			&row.MeasuredAt,
			&notes,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return QueryResult{}, fmt.Errorf("scan row: %w", err)
		}
		row.Operator = nullableString(operator)
		row.Instrument = nullableString(instrument)
		row.Notes = nullableString(notes)
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func (f QueryFilter) clauses() ([]string, []any) {
	var conditions []string
	var values []any

	equals := []struct {
		column string
		value  string
	}{
		{"experiment_id", f.ExperimentID},
		{"sample_id", f.SampleID},
		{"assay_name", f.AssayName},
		{"condition", f.Condition},
		{"measurement_unit", f.MeasurementUnit},
		{"operator", f.Operator},
		{"instrument", f.Instrument},
	}
	for _, eq := range equals {
		if eq.value != "" {
			conditions = append(conditions, eq.column+" = ?")
			values = append(values, eq.value)
		}
	}

	if f.Replicate != nil {
		conditions = append(conditions, "replicate = ?")
		values = append(values, *f.Replicate)
	}
	if f.MeasuredAtFrom != "" {
		conditions = append(conditions, "measured_at >= ?")
		values = append(values, f.MeasuredAtFrom)
	}
	if f.MeasuredAtTo != "" {
		conditions = append(conditions, "measured_at <= ?")
		values = append(values, f.MeasuredAtTo)
	}

	return conditions, values
}
