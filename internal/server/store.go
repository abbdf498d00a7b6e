package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/manav03panchal/timesheet/internal/server/migrations"
)

// Record is one stored document.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Store keeps backup documents per employee in sqlite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// RunMigrations brings the schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenStore opens the sqlite database at dsn and migrates it.
// ":memory:" gives a private in-memory database.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type table struct {
	name   string
	idCol  string
	extras bool
}

var (
	timesheetsTable = table{name: "timesheets", idCol: "id", extras: true}
	billingTable    = table{name: "billing_managers", idCol: "id"}
	settingsTable   = table{name: "user_settings", idCol: "type"}
)

// upsert writes every record in one transaction, overwriting by id.
func (s *Store) upsert(ctx context.Context, t table, employee string, records []Record, entryDates []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var query string
	if t.extras {
		query = fmt.Sprintf(`INSERT INTO %s (employee_id, %s, entry_date, data, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (employee_id, %s) DO UPDATE SET
				entry_date = excluded.entry_date, data = excluded.data, updated_at = excluded.updated_at`,
			t.name, t.idCol, t.idCol)
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (employee_id, %s, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (employee_id, %s) DO UPDATE SET
				data = excluded.data, updated_at = excluded.updated_at`,
			t.name, t.idCol, t.idCol)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now().UTC()
	for i, r := range records {
		if t.extras {
			_, err = stmt.ExecContext(ctx, employee, r.ID, entryDates[i], string(r.Data), now)
		} else {
			_, err = stmt.ExecContext(ctx, employee, r.ID, string(r.Data), now)
		}
		if err != nil {
			return fmt.Errorf("upsert %s %s: %w", t.name, r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) list(ctx context.Context, t table, employee string) ([]json.RawMessage, error) {
	order := t.idCol
	if t.extras {
		order = "entry_date, " + t.idCol
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE employee_id = ? ORDER BY %s`, t.name, order), employee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

// PutTimesheets upserts time entries for employee. entryDates runs
// parallel to records.
func (s *Store) PutTimesheets(ctx context.Context, employee string, records []Record, entryDates []string) error {
	return s.upsert(ctx, timesheetsTable, employee, records, entryDates)
}

// PutBilling upserts billing managers for employee.
func (s *Store) PutBilling(ctx context.Context, employee string, records []Record) error {
	return s.upsert(ctx, billingTable, employee, records, nil)
}

// PutSettings upserts settings for employee, keyed by type.
func (s *Store) PutSettings(ctx context.Context, employee string, records []Record) error {
	return s.upsert(ctx, settingsTable, employee, records, nil)
}

// Timesheets returns employee's entries, oldest entry date first.
func (s *Store) Timesheets(ctx context.Context, employee string) ([]json.RawMessage, error) {
	return s.list(ctx, timesheetsTable, employee)
}

// Billing returns employee's billing managers.
func (s *Store) Billing(ctx context.Context, employee string) ([]json.RawMessage, error) {
	return s.list(ctx, billingTable, employee)
}

// Settings returns employee's settings.
func (s *Store) Settings(ctx context.Context, employee string) ([]json.RawMessage, error) {
	return s.list(ctx, settingsTable, employee)
}
