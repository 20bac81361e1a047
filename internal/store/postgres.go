package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 20 * time.Minute
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Postgres queries the salary table directly over a Postgres connection.
type Postgres struct {
	db     *sql.DB
	query  string
	logger *zap.Logger
	now    func() time.Time
}

// NewPostgres opens a connection pool. The access key is used as the database
// password unless the DSN already carries one.
func NewPostgres(ctx context.Context, cfg Config, log *zap.Logger) (*Postgres, error) {
	cfg = cfg.withDefaults()

	dsn, err := postgresDSN(cfg.URL, cfg.Key)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return &Postgres{
		db:     db,
		query:  postgresQuery(cfg.Table),
		logger: log,
		now:    time.Now,
	}, nil
}

func postgresDSN(raw, key string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse postgres dsn: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("postgres dsn must start with postgres://, got %q", u.Scheme)
	}
	if key != "" && u.User != nil {
		if _, ok := u.User.Password(); !ok {
			u.User = url.UserPassword(u.User.Username(), key)
		}
	}
	return u.String(), nil
}

func postgresQuery(table string) string {
	return fmt.Sprintf(`SELECT employer, job_title, COALESCE(city, ''), salary, year, source
FROM %s
WHERE employer ILIKE $1 ESCAPE '\' AND job_title ILIKE $2 ESCAPE '\'
ORDER BY salary DESC, employer, job_title, city, year DESC
LIMIT $3`, pq.QuoteIdentifier(table))
}

// likePattern turns a term into a substring pattern; an empty term matches everything.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (p *Postgres) Search(ctx context.Context, q salary.Query) ([]salary.Record, error) {
	rows, err := p.db.QueryContext(ctx, p.query, likePattern(q.Company), likePattern(q.Role), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query salaries: %w", err)
	}
	defer rows.Close()

	return scanRows(rows, p.now(), p.logger)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func scanRows(rows *sql.Rows, now time.Time, logger *zap.Logger) ([]salary.Record, error) {
	var result []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Employer, &r.JobTitle, &r.City, &r.Salary, &r.Year, &r.Source); err != nil {
			return nil, fmt.Errorf("scan salary row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate salary rows: %w", err)
	}

	return toRecords(result, now, logger), nil
}
