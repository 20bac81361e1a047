package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/filtering"
	"github.com/spigell/salary-spy/internal/logger"
	"github.com/spigell/salary-spy/internal/salary"
)

const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultTable   = "salary_data"
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrConfigurationMissing means a required credential was not supplied.
	ErrConfigurationMissing = errors.New("salary store is not configured")
	// ErrUnavailable means the store could not be set up.
	ErrUnavailable = errors.New("salary store is unavailable")
	// ErrQueryFailed covers every failure of a single search attempt.
	ErrQueryFailed = errors.New("salary store query failed")
)

// Config describes the salary store connection.
type Config struct {
	Driver  string
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
	Limit   int
}

func (c Config) withDefaults() Config {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverREST
	}
	c.URL = strings.TrimSpace(c.URL)
	c.Key = strings.TrimSpace(c.Key)
	if c.Table = strings.TrimSpace(c.Table); c.Table == "" {
		c.Table = DefaultTable
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Limit <= 0 {
		c.Limit = salary.DefaultLimit
	}
	return c
}

// RequiresKey reports whether the driver needs an access key besides the URL.
func (c Config) RequiresKey() bool {
	return c.Driver != DriverSQLite
}

// Backend runs a filtered, salary-ordered, limited query against one kind of store.
type Backend interface {
	Search(ctx context.Context, q salary.Query) ([]salary.Record, error)
	Close() error
}

// Status enumerates the outcomes of a search attempt.
type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusQueryFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusQueryFailed:
		return "query_failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the typed result of Gateway.Search.
type Outcome struct {
	Status  Status
	Records []salary.Record
	// Reason is set for StatusUnavailable and StatusQueryFailed.
	Reason error
}

// Gateway is the process-wide handle to the salary store. It is created once
// at startup and is safe for concurrent use afterwards.
type Gateway struct {
	cfg     Config
	backend Backend
	reason  error
	logger  *zap.Logger
	now     func() time.Time
}

// Open sets up the configured backend. It never fails: when credentials are
// missing or the backend cannot be created the gateway is returned in the
// unavailable state and every search reports StatusUnavailable.
func Open(ctx context.Context, cfg Config, log *zap.Logger) *Gateway {
	cfg = cfg.withDefaults()
	g := &Gateway{
		cfg:    cfg,
		logger: logger.WithStoreFields(log, cfg.Driver, cfg.Table),
		now:    time.Now,
	}

	if cfg.URL == "" {
		g.reason = fmt.Errorf("%w: store url is missing", ErrConfigurationMissing)
	} else if cfg.RequiresKey() && cfg.Key == "" {
		g.reason = fmt.Errorf("%w: store key is missing", ErrConfigurationMissing)
	}
	if g.reason != nil {
		g.logger.Info("salary store disabled", zap.Error(g.reason))
		return g
	}

	backend, err := newBackend(ctx, cfg, g.logger)
	if err != nil {
		g.reason = fmt.Errorf("%w: %w", ErrUnavailable, err)
		g.logger.Warn("salary store setup failed", zap.Error(err))
		return g
	}

	g.backend = backend
	g.logger.Debug("salary store ready")
	return g
}

// NewGateway wraps an already constructed backend.
func NewGateway(cfg Config, backend Backend, log *zap.Logger) *Gateway {
	cfg = cfg.withDefaults()
	g := &Gateway{
		cfg:     cfg,
		backend: backend,
		logger:  logger.WithStoreFields(log, cfg.Driver, cfg.Table),
		now:     time.Now,
	}
	if backend == nil {
		g.reason = fmt.Errorf("%w: no backend", ErrUnavailable)
	}
	return g
}

func newBackend(ctx context.Context, cfg Config, log *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case DriverREST:
		return NewREST(cfg, log)
	case DriverPostgres:
		return NewPostgres(ctx, cfg, log)
	case DriverSQLite:
		return NewSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// Available reports whether searches reach a backend.
func (g *Gateway) Available() bool {
	return g != nil && g.backend != nil
}

// Reason explains why the gateway is unavailable.
func (g *Gateway) Reason() error {
	if g == nil {
		return fmt.Errorf("%w: no gateway", ErrUnavailable)
	}
	return g.reason
}

// Driver returns the configured driver name.
func (g *Gateway) Driver() string {
	if g == nil {
		return ""
	}
	return g.cfg.Driver
}

// Backend exposes the underlying backend, nil when unavailable.
func (g *Gateway) Backend() Backend {
	if g == nil {
		return nil
	}
	return g.backend
}

// Close releases the backend resources.
func (g *Gateway) Close() error {
	if !g.Available() {
		return nil
	}
	return g.backend.Close()
}

// Search runs a single bounded attempt. Failures never escape as errors or
// panics; they are reported through the Outcome status.
func (g *Gateway) Search(ctx context.Context, q salary.Query) (out Outcome) {
	if !g.Available() {
		return Outcome{Status: StatusUnavailable, Reason: g.Reason()}
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("salary store panicked", zap.Any("panic", r))
			out = Outcome{Status: StatusQueryFailed, Reason: fmt.Errorf("%w: %v", ErrQueryFailed, r)}
		}
	}()

	limit := q.Limit
	if limit <= 0 || limit > g.cfg.Limit {
		limit = g.cfg.Limit
	}
	q.Limit = limit

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	started := g.now()
	records, err := g.backend.Search(ctx, q)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", g.cfg.Timeout, err)
		}
		g.logger.Warn("salary store query failed",
			zap.String("company", q.Company),
			zap.String("role", q.Role),
			zap.Error(err),
		)
		return Outcome{Status: StatusQueryFailed, Reason: fmt.Errorf("%w: %w", ErrQueryFailed, err)}
	}

	matched := filtering.MatchWithLogger(g.logger, records, q.Company, q.Role, limit)

	g.logger.Debug("salary store query finished",
		zap.String("company", q.Company),
		zap.String("role", q.Role),
		zap.Int("rows", len(records)),
		zap.Int("matched", len(matched)),
		zap.Duration("took", g.now().Sub(started)),
	)

	return Outcome{Status: StatusOK, Records: matched}
}
