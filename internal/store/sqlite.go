package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

// SQLite keeps salary rows in a local database file.
type SQLite struct {
	db     *sql.DB
	path   string
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLite opens (and creates if needed) the database file and its schema.
func NewSQLite(ctx context.Context, cfg Config, log *zap.Logger) (*SQLite, error) {
	cfg = cfg.withDefaults()

	path := strings.TrimPrefix(cfg.URL, "sqlite://")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLite{
		db:     db,
		path:   path,
		table:  quoteIdent(cfg.Table),
		logger: log,
		now:    time.Now,
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Migrate creates the salary table when it does not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employer TEXT NOT NULL,
		job_title TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		salary INTEGER NOT NULL CHECK (salary >= 0),
		year INTEGER NOT NULL,
		source TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[2]s_salary ON %[1]s(salary DESC);`, s.table, strings.Trim(s.table, `"`))

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Insert stores the records in a single transaction.
func (s *SQLite) Insert(ctx context.Context, records []salary.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (employer, job_title, city, salary, year, source) VALUES (?, ?, ?, ?, ?, ?)", s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for idx, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Employer, r.JobTitle, r.City, r.Salary, r.Year, r.Source.String()); err != nil {
			return fmt.Errorf("insert record %d: %w", idx, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Search(ctx context.Context, q salary.Query) ([]salary.Record, error) {
	query := fmt.Sprintf(`SELECT employer, job_title, city, salary, year, source
	FROM %s
	WHERE (? = '' OR instr(lower(employer), lower(?)) > 0)
	  AND (? = '' OR instr(lower(job_title), lower(?)) > 0)
	ORDER BY salary DESC, id ASC
	LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, query, q.Company, q.Company, q.Role, q.Role, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query salaries: %w", err)
	}
	defer rows.Close()

	return scanRows(rows, s.now(), s.logger)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
