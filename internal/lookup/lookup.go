package lookup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
	"github.com/spigell/salary-spy/internal/store"
)

// Searcher is the part of the store gateway a lookup needs.
type Searcher interface {
	Search(ctx context.Context, q salary.Query) store.Outcome
}

// Result is everything presented for one lookup.
type Result struct {
	Query    salary.Query   `json:"query"`
	Decision Decision       `json:"decision"`
	Summary  salary.Summary `json:"summary"`
	Anchor   string         `json:"anchor"`
}

// Service runs lookups against a shared gateway.
type Service struct {
	gateway Searcher
	logger  *zap.Logger
	now     func() time.Time
}

func New(gateway Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gateway, logger: logger, now: time.Now}
}

// Lookup makes one gateway attempt and always produces a result. The only
// error is salary.ErrEmptyInput, which means a decision came back without
// records.
func (s *Service) Lookup(ctx context.Context, company, role string) (*Result, error) {
	q := salary.NewQuery(company, role)

	out := store.Outcome{Status: store.StatusUnavailable}
	if s.gateway != nil {
		out = s.gateway.Search(ctx, q)
	}

	decision := Decide(q, out, s.now())

	fields := []zap.Field{
		zap.String("company", q.Company),
		zap.String("role", q.Role),
		zap.Stringer("state", decision.State),
		zap.Int("records", len(decision.Records)),
	}
	if out.Reason != nil {
		fields = append(fields, zap.NamedError("reason", out.Reason))
	}
	s.logger.Info("salary lookup", fields...)

	summary, err := salary.Aggregate(decision.Records)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", decision.State, err)
	}

	return &Result{
		Query:    q,
		Decision: decision,
		Summary:  summary,
		Anchor:   summary.Anchor(),
	}, nil
}
